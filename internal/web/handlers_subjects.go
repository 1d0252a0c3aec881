package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b-balajis/rms-backend/internal/core"
	"github.com/b-balajis/rms-backend/internal/logging"
)

// Curriculum sheet column names. Headers are lower-cased by the sheet
// parser, so these match case-insensitively.
const (
	colSubjectName = "subname"
	colCredits     = "credits"
	colDeptCode    = "deptcode"
	colRegulation  = "regulation"
	colSemester    = "semester"
)

// handleListSubjects lists curriculum subjects, narrowed to one examination
// cycle when regulation and semester are given.
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	regulation := r.URL.Query().Get("regulation")
	semester := r.URL.Query().Get("semester")

	var (
		subjects []core.CurriculumSubject
		err      error
	)
	if regulation != "" && semester != "" {
		subjects, err = s.store.Subjects.Find(r.Context(), regulation, semester)
	} else {
		subjects, err = s.store.Subjects.All(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

// handleCreateSubject inserts a single curriculum subject from a JSON body.
func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var sub core.CurriculumSubject
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.respondError(w, r, errors.New("a valid JSON subject body is required"), 0)
		return
	}

	if err := validateSubject(sub); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if err := s.store.Subjects.Create(r.Context(), sub); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// handleUpdateSubject replaces a subject's details by code.
func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	var sub core.CurriculumSubject
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.respondError(w, r, errors.New("a valid JSON subject body is required"), 0)
		return
	}
	// The URL code wins over whatever the body carries
	sub.Code = chi.URLParam(r, "code")

	if err := validateSubject(sub); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if err := s.store.Subjects.Update(r.Context(), sub); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// handleDeleteSubject removes a subject by code.
func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.store.Subjects.Delete(r.Context(), code); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// subjectRowIssue is a dropped curriculum row and why it was dropped.
type subjectRowIssue struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// handleUploadSubjects bulk-upserts a curriculum sheet. Rows that already
// exist (by subject code) are updated in place. Like result ingestion, a
// malformed row drops only that row: the valid subset is still applied and
// the dropped rows come back with per-row reasons.
func (s *Server) handleUploadSubjects(w http.ResponseWriter, r *http.Request) {
	rows, _, err := s.readSheet(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	subjects, issues := parseSubjectRows(rows)

	var inserted, updated int64
	if len(subjects) > 0 {
		inserted, updated, err = s.store.Subjects.UpsertBulk(r.Context(), subjects)
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}
	}

	logging.FromContext(r.Context()).Info("curriculum sheet applied",
		"total_rows", len(rows),
		"inserted", inserted,
		"updated", updated,
		"dropped", len(issues),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"totalRows": len(rows),
		"inserted":  inserted,
		"updated":   updated,
		"errors":    issues,
	})
}

// parseSubjectRows converts sheet rows into curriculum subjects, collecting
// an issue per invalid row instead of failing the batch.
func parseSubjectRows(rows []core.Row) ([]core.CurriculumSubject, []subjectRowIssue) {
	subjects := make([]core.CurriculumSubject, 0, len(rows))
	issues := []subjectRowIssue{}
	for _, row := range rows {
		sub := core.CurriculumSubject{
			Code:               core.CellString(row[core.ColSubjectCode]),
			Name:               core.CellString(row[colSubjectName]),
			Credits:            core.ParseNumber(row[colCredits]),
			DepartmentCode:     core.CellString(row[colDeptCode]),
			AcademicRegulation: core.CellString(row[colRegulation]),
			Semester:           core.CellString(row[colSemester]),
		}
		if err := validateSubject(sub); err != nil {
			code := sub.Code
			if code == "" {
				code = "N/A"
			}
			issues = append(issues, subjectRowIssue{Code: code, Reason: err.Error()})
			continue
		}
		subjects = append(subjects, sub)
	}
	return subjects, issues
}

// validateSubject rejects subjects missing the fields the positional
// column mapping depends on.
func validateSubject(sub core.CurriculumSubject) error {
	switch {
	case sub.Code == "":
		return errors.New("subject code is required")
	case sub.Name == "":
		return errors.New("subject name is required")
	case sub.AcademicRegulation == "":
		return errors.New("academic regulation is required")
	case sub.Semester == "":
		return errors.New("semester is required")
	}
	return nil
}
