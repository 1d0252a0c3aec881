package core

import (
	"context"
	"time"
)

// Row is a parsed spreadsheet row: column name (lower-cased header) to raw
// cell value. Cells may arrive as strings (CSV, xlsx) or numbers (JSON);
// ParseNumber makes both safe for arithmetic.
type Row map[string]any

// Recognized column names in result sheets. Per-subject columns are indexed
// by curriculum position: e1/i1/t1/cr1/gp1 for the first subject in
// curriculum order, e2/... for the second, and so on.
const (
	ColRollNumber   = "regdno"
	ColName         = "name"
	ColTotalCredits = "tc"
	ColTotalGrade   = "tg"
	ColSGPA         = "sgpa"
	ColSubjectCode  = "subcode"

	colExternalPrefix = "e"
	colInternalPrefix = "i"
	colTotalPrefix    = "t"
	colCreditsPrefix  = "cr"
	colGradePrefix    = "gp"
)

// Entry types for a student's admission path.
const (
	EntryRegular = "Regular"
	EntryLateral = "Lateral"
)

// Sentinels used when reference data cannot be resolved. Rows degrade to
// these rather than failing (see BatchReport for the reporting side).
const (
	UnknownDepartment    = "Unknown Department"
	InvalidBatchSentinel = "Invalid Registration Number"
)

// SubjectRecord is one subject's result within a semester. GradePoints == 0
// marks an active backlog in that subject.
type SubjectRecord struct {
	SubjectName   string  `json:"subjectName"`
	SubjectCode   string  `json:"subjectCode"`
	ExternalMarks float64 `json:"externalMarks"`
	InternalMarks float64 `json:"internalMarks"`
	TotalMarks    float64 `json:"totalMarks"`
	Credits       float64 `json:"credits"`
	GradePoints   float64 `json:"gradePoints"`
}

// SemesterRecord is one examination cycle for a student. A student never has
// two SemesterRecords with the same Semester label; the engine enforces this
// before appending.
type SemesterRecord struct {
	Semester       string          `json:"semester"`
	Subjects       []SubjectRecord `json:"subjects"`
	TotalCredits   float64         `json:"totalCredits"`
	TotalGrade     float64         `json:"totalGrade"`
	SGPA           float64         `json:"sgpa"`
	ActiveBacklogs int             `json:"activeBacklogs"`
	TotalBacklogs  int             `json:"totalBacklogs"`
}

// StudentRecord is the longitudinal per-student record. RollNumber is the
// durable external identity; Email is derived from it. Aggregate fields are
// recomputed from the full semester list on every ingestion that touches the
// student, never patched incrementally.
type StudentRecord struct {
	RollNumber        string           `json:"rollNumber"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Department        string           `json:"department"`
	Batch             string           `json:"batch"`
	EntryType         string           `json:"type"`
	Semesters         []SemesterRecord `json:"semesters"`
	CGPA              float64          `json:"cgpa"`
	Percentage        float64          `json:"percentage"`
	AllActiveBacklogs int              `json:"allActiveBacklogs"`
	AllBacklogs       int              `json:"allBacklogs"`
}

// CurriculumSubject is reference data from the curriculum catalog, read-only
// to this package. Catalog queries return subjects in a stable order; that
// order is the positional contract binding indexed mark columns to subjects.
type CurriculumSubject struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Credits            float64 `json:"credits"`
	DepartmentCode     string  `json:"departmentCode"`
	AcademicRegulation string  `json:"academicRegulation"`
	Semester           string  `json:"semester"`
}

// DepartmentInfo is reference data from the department catalog.
type DepartmentInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// DepartmentCatalog lists the known departments.
type DepartmentCatalog interface {
	ListAll(ctx context.Context) ([]DepartmentInfo, error)
}

// CurriculumCatalog looks up the expected subject list for an examination
// cycle. The returned slice order is significant and must be stable across
// calls (the store orders by subject code).
type CurriculumCatalog interface {
	Find(ctx context.Context, regulation, semester string) ([]CurriculumSubject, error)
}

// StudentUpdate is the persistence instruction for one existing student:
// the full replacement semester list plus recomputed aggregate fields.
type StudentUpdate struct {
	RollNumber        string
	Semesters         []SemesterRecord
	CGPA              float64
	Percentage        float64
	AllActiveBacklogs int
	AllBacklogs       int
}

// WriteOp is a single entry in a bulk write: exactly one of Insert or Update
// is set.
type WriteOp struct {
	Insert *StudentRecord
	Update *StudentUpdate
}

// BulkResult reports what the store actually applied.
type BulkResult struct {
	Inserted int64
	Modified int64
}

// StudentStore is the persistent student record store. BulkApply is called
// at most once per batch operation; each op is independent (no cross-student
// transaction is assumed).
type StudentStore interface {
	RollNumbers(ctx context.Context) (map[string]struct{}, error)
	ByRollNumbers(ctx context.Context, rolls []string) (map[string]StudentRecord, error)
	BulkApply(ctx context.Context, ops []WriteOp) (BulkResult, error)
}

// BatchParams identifies the examination cycle a result sheet belongs to.
type BatchParams struct {
	Semester   string `json:"semester"`
	Regulation string `json:"regulation"`
	Batch      string `json:"batch"`
}

// RowIssue is a dropped row and why it was dropped.
type RowIssue struct {
	RollNumber string `json:"rollNumber"`
	Reason     string `json:"reason"`
}

// BatchReport is the aggregate outcome of one ingestion batch. Callers use
// it to present partial success: created/updated counts plus the full lists
// of dropped rows with per-row reasons.
type BatchReport struct {
	BatchID              string        `json:"batchId"`
	TotalRows            int           `json:"totalRows"`
	CreatedCount         int           `json:"createdCount"`
	UpdatedCount         int           `json:"updatedCount"`
	LateralCreatedCount  int           `json:"lateralCreatedCount,omitempty"`
	DuplicateRollNumbers []string      `json:"duplicateRollNumbers"`
	SkippedEntries       []RowIssue    `json:"skippedEntries"`
	MissedEntries        []RowIssue    `json:"missedEntries"`
	Inserted             int64         `json:"inserted"`
	Modified             int64         `json:"modified"`
	Duration             time.Duration `json:"-"`
}

func (r *BatchReport) miss(roll, reason string) {
	if roll == "" {
		roll = "N/A"
	}
	r.MissedEntries = append(r.MissedEntries, RowIssue{RollNumber: roll, Reason: reason})
}

func (r *BatchReport) skip(roll, reason string) {
	r.SkippedEntries = append(r.SkippedEntries, RowIssue{RollNumber: roll, Reason: reason})
}

func (r *BatchReport) duplicate(roll string) {
	r.DuplicateRollNumbers = append(r.DuplicateRollNumbers, roll)
}
