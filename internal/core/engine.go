package core

// engine.go holds the reconciliation engine and the row-level helpers shared
// by its three ingestion flows (create, update, supply-marks correction).
// Each flow follows the same two-phase shape: fetch reference data once,
// decide every row in memory, then commit the accumulated write batch in a
// single bulk operation.

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults for engine options. The email domain is institution-specific and
// normally comes from configuration.
const (
	DefaultEmailDomain = "@college.edu.in"

	// DefaultLateralSemester is the intake cycle for lateral-entry
	// students: they skip the first year and appear first in semester 2-1.
	DefaultLateralSemester = "2-1"
)

// Row drop reasons surfaced in BatchReport entries.
const (
	ReasonInvalidRow       = "missing roll number, name or total credits"
	ReasonDuplicate        = "duplicate roll number in this upload"
	ReasonAlreadyProcessed = "semester already recorded"
	ReasonNotFound         = "student not found"
)

// Engine reconciles result-sheet rows against the student record store.
type Engine struct {
	departments DepartmentCatalog
	curriculum  CurriculumCatalog
	students    StudentStore

	emailDomain     string
	lateralSemester string
	logger          *slog.Logger
}

// Options configures institution-specific constants of the engine. Zero
// values fall back to the defaults above.
type Options struct {
	// EmailDomain is the institutional email suffix appended to roll
	// numbers, including the leading '@'.
	EmailDomain string

	// LateralSemester is the semester label at which lateral-entry students
	// may be auto-created during an update batch.
	LateralSemester string

	Logger *slog.Logger
}

// NewEngine creates a reconciliation engine over the given catalogs and
// student store.
func NewEngine(departments DepartmentCatalog, curriculum CurriculumCatalog, students StudentStore, opts Options) *Engine {
	if opts.EmailDomain == "" {
		opts.EmailDomain = DefaultEmailDomain
	}
	if opts.LateralSemester == "" {
		opts.LateralSemester = DefaultLateralSemester
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		departments:     departments,
		curriculum:      curriculum,
		students:        students,
		emailDomain:     opts.EmailDomain,
		lateralSemester: opts.LateralSemester,
		logger:          opts.Logger,
	}
}

// newReport starts a BatchReport with a fresh batch ID. The slices are
// allocated up front so an empty report serializes as [] rather than null.
func newReport(totalRows int) *BatchReport {
	return &BatchReport{
		BatchID:              uuid.New().String(),
		TotalRows:            totalRows,
		DuplicateRollNumbers: []string{},
		SkippedEntries:       []RowIssue{},
		MissedEntries:        []RowIssue{},
	}
}

// finishReport stamps the store result and duration onto a report.
func finishReport(report *BatchReport, res BulkResult, start time.Time) {
	report.Inserted = res.Inserted
	report.Modified = res.Modified
	report.Duration = time.Since(start)
}

// buildSubjectRecords maps a row's indexed mark columns onto the curriculum
// subject list. Position in the curriculum order decides which columns feed
// which subject: subject i (0-based) reads e{i+1}, i{i+1}, t{i+1}, cr{i+1}
// and gp{i+1}.
func buildSubjectRecords(row Row, subjects []CurriculumSubject) []SubjectRecord {
	records := make([]SubjectRecord, 0, len(subjects))
	for i, subject := range subjects {
		n := strconv.Itoa(i + 1)
		records = append(records, SubjectRecord{
			SubjectName:   subject.Name,
			SubjectCode:   subject.Code,
			ExternalMarks: ParseNumber(row[colExternalPrefix+n]),
			InternalMarks: ParseNumber(row[colInternalPrefix+n]),
			TotalMarks:    ParseNumber(row[colTotalPrefix+n]),
			Credits:       ParseNumber(row[colCreditsPrefix+n]),
			GradePoints:   ParseNumber(row[colGradePrefix+n]),
		})
	}
	return records
}

// hasSemester reports whether a student already has a semester with the
// given label.
func hasSemester(student StudentRecord, label string) bool {
	for _, sem := range student.Semesters {
		if sem.Semester == label {
			return true
		}
	}
	return false
}

// validateParams rejects batch parameters no flow can work without.
func validateParams(params BatchParams) error {
	if params.Semester == "" {
		return fmt.Errorf("semester is required")
	}
	if params.Regulation == "" {
		return fmt.Errorf("regulation is required")
	}
	return nil
}
