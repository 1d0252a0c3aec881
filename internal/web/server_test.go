package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/b-balajis/rms-backend/internal/config"
	"github.com/b-balajis/rms-backend/internal/core"
)

type fakeDepartments struct{}

func (fakeDepartments) ListAll(ctx context.Context) ([]core.DepartmentInfo, error) {
	return []core.DepartmentInfo{{Name: "Computer Science", Code: "CS"}}, nil
}

type fakeCurriculum struct {
	subjects []core.CurriculumSubject
}

func (f fakeCurriculum) Find(ctx context.Context, regulation, semester string) ([]core.CurriculumSubject, error) {
	out := []core.CurriculumSubject{}
	for _, sub := range f.subjects {
		if sub.AcademicRegulation == regulation && sub.Semester == semester {
			out = append(out, sub)
		}
	}
	return out, nil
}

type fakeStudents struct {
	records map[string]core.StudentRecord
}

func (f *fakeStudents) RollNumbers(ctx context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(f.records))
	for roll := range f.records {
		set[roll] = struct{}{}
	}
	return set, nil
}

func (f *fakeStudents) ByRollNumbers(ctx context.Context, rolls []string) (map[string]core.StudentRecord, error) {
	out := map[string]core.StudentRecord{}
	for _, roll := range rolls {
		if rec, ok := f.records[roll]; ok {
			out[roll] = rec
		}
	}
	return out, nil
}

func (f *fakeStudents) BulkApply(ctx context.Context, ops []core.WriteOp) (core.BulkResult, error) {
	var res core.BulkResult
	for _, op := range ops {
		if op.Insert != nil {
			f.records[op.Insert.RollNumber] = *op.Insert
			res.Inserted++
		}
		if op.Update != nil {
			rec := f.records[op.Update.RollNumber]
			rec.Semesters = op.Update.Semesters
			rec.CGPA = op.Update.CGPA
			rec.Percentage = op.Update.Percentage
			f.records[op.Update.RollNumber] = rec
			res.Modified++
		}
	}
	return res, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
		},
		Academic: config.AcademicConfig{EmailDomain: "@college.edu.in", LateralSemester: "2-1"},
		Rate:     config.RateLimitConfig{Enabled: false},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func testServer() (*Server, *fakeStudents) {
	students := &fakeStudents{records: map[string]core.StudentRecord{}}
	curriculum := fakeCurriculum{subjects: []core.CurriculumSubject{
		{Code: "CS101", Name: "Programming", Credits: 4, DepartmentCode: "CS", AcademicRegulation: "R20", Semester: "1-1"},
	}}
	engine := core.NewEngine(fakeDepartments{}, curriculum, students, core.Options{})
	return NewServer(engine, nil, testConfig()), students
}

func multipartSheet(t *testing.T, csvData string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "results.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(csvData)); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestCreateRecordsUpload(t *testing.T) {
	srv, students := testServer()

	csvData := "regdno,name,tc,tg,sgpa,e1,i1,t1,cr1,gp1\n" +
		"Y20ACS001,Anand,20,160,8,80,20,100,4,8\n"
	body, contentType := multipartSheet(t, csvData, map[string]string{
		"semester":   "1-1",
		"regulation": "R20",
		"batch":      "2020",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/faculty/upload/create-records", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report core.BatchReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.CreatedCount != 1 || report.Inserted != 1 {
		t.Errorf("created = %d, inserted = %d, want 1/1", report.CreatedCount, report.Inserted)
	}

	student, ok := students.records["Y20ACS001"]
	if !ok {
		t.Fatal("student not persisted")
	}
	if student.Email != "Y20ACS001@college.edu.in" {
		t.Errorf("email = %q", student.Email)
	}
}

func TestCreateRecordsMissingFile(t *testing.T) {
	srv, _ := testServer()

	req := httptest.NewRequest(http.MethodPost, "/api/faculty/upload/create-records",
		strings.NewReader("semester=1-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "VAL003" {
		t.Errorf("code = %q, want VAL003", resp.Code)
	}
}

func TestCreateRecordsMissingSemester(t *testing.T) {
	srv, _ := testServer()

	body, contentType := multipartSheet(t, "regdno,name,tc\nY20ACS001,Anand,20\n",
		map[string]string{"regulation": "R20"})

	req := httptest.NewRequest(http.MethodPost, "/api/faculty/upload/create-records", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRecordsEmptySheet(t *testing.T) {
	srv, _ := testServer()

	body, contentType := multipartSheet(t, "regdno,name,tc\n",
		map[string]string{"semester": "1-1", "regulation": "R20"})

	req := httptest.NewRequest(http.MethodPost, "/api/faculty/upload/create-records", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "FILE005" {
		t.Errorf("code = %q, want FILE005", resp.Code)
	}
}

func TestUpdateRecordsMethodIsPatch(t *testing.T) {
	srv, _ := testServer()

	// POST on a PATCH route must not match
	req := httptest.NewRequest(http.MethodPost, "/api/faculty/upload/update-records", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestGetAllStudentsRequiresBatch(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/faculty/get-all-students", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestParseSubjectRowsMixedValidity(t *testing.T) {
	rows := []core.Row{
		{"subname": "Orphan", "credits": "4", "deptcode": "CS", "regulation": "R20", "semester": "1-1"},
		{"subcode": "CS101", "subname": "Programming I", "credits": "4", "deptcode": "CS", "regulation": "R20", "semester": "1-1"},
		{"subcode": "CS102", "credits": "3", "deptcode": "CS", "regulation": "R20", "semester": "1-1"},
	}

	subjects, issues := parseSubjectRows(rows)

	// One valid row survives; the invalid rows are reported, not fatal
	if len(subjects) != 1 || subjects[0].Code != "CS101" {
		t.Fatalf("subjects = %+v, want only CS101", subjects)
	}
	if len(issues) != 2 {
		t.Fatalf("issues = %+v, want 2", issues)
	}
	if issues[0].Code != "N/A" || !strings.Contains(issues[0].Reason, "code") {
		t.Errorf("missing-code issue = %+v", issues[0])
	}
	if issues[1].Code != "CS102" || !strings.Contains(issues[1].Reason, "name") {
		t.Errorf("missing-name issue = %+v", issues[1])
	}
}

func TestUploadSubjectsInvalidRowsReported(t *testing.T) {
	srv, _ := testServer()

	// Row 1 has no subject code, row 2 no name: both dropped with reasons,
	// and the upload still succeeds as a partial result.
	csvData := "subcode,subname,credits,deptcode,regulation,semester\n" +
		",Orphan,4,CS,R20,1-1\n" +
		"CS102,,3,CS,R20,1-1\n"
	body, contentType := multipartSheet(t, csvData, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/subjects/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalRows int               `json:"totalRows"`
		Inserted  int64             `json:"inserted"`
		Errors    []subjectRowIssue `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalRows != 2 || resp.Inserted != 0 {
		t.Errorf("totalRows = %d, inserted = %d, want 2/0", resp.TotalRows, resp.Inserted)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("errors = %+v, want 2 per-row reasons", resp.Errors)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within window should be denied")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other IPs should have their own bucket")
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"VAL003", http.StatusBadRequest},
		{"FILE005", http.StatusBadRequest},
		{"DB001", http.StatusConflict},
		{"DB003", http.StatusNotFound},
		{"DB004", http.StatusServiceUnavailable},
		{"UPL002", http.StatusTooManyRequests},
		{"ERR000", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusForCode(tt.code); got != tt.want {
			t.Errorf("statusForCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
