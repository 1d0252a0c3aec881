package core

// metrics.go computes derived academic metrics.
//
// Per-semester aggregates (total credits, total grade, SGPA) are normally
// taken from the sheet's own aggregate columns rather than re-derived from
// the subject list; the institution's published numbers win. The one
// exception is the supply-marks correction flow, which edits subject-level
// marks and therefore recomputes the semester from its subjects.

import "math"

// Named constants behind the metric formulas. Regulation changes are a
// one-place edit here.
const (
	// PercentageMultiplier converts CGPA to percentage in the linear mode.
	PercentageMultiplier = 9.5

	// PercentageShiftOffset and PercentageShiftMultiplier convert CGPA to
	// percentage in the shifted mode used by initial ingestion.
	PercentageShiftOffset     = 0.5
	PercentageShiftMultiplier = 10
)

// PercentageMode selects how a CGPA is converted to a percentage. The two
// formulas are not equivalent; both exist in the institution's practice and
// are kept as distinct, explicitly selected strategies.
type PercentageMode int

const (
	// PercentageFromCgpaLinear is percentage = cgpa * 9.5. Used by the
	// update and supply-marks flows.
	PercentageFromCgpaLinear PercentageMode = iota

	// PercentageFromCgpaShifted is percentage = (cgpa - 0.5) * 10. Used by
	// the initial ingestion flow.
	PercentageFromCgpaShifted
)

// Percentage converts a CGPA under the selected mode, rounded to 2 decimals.
func (m PercentageMode) Percentage(cgpa float64) float64 {
	switch m {
	case PercentageFromCgpaShifted:
		return round2((cgpa - PercentageShiftOffset) * PercentageShiftMultiplier)
	default:
		return round2(cgpa * PercentageMultiplier)
	}
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildSemester assembles a SemesterRecord from subject records and the
// sheet's own aggregate columns. Backlog counts are derived from the subject
// list: a subject with zero grade points is an active backlog. There is no
// separate historical-backlog tracking per semester; cleared backlogs show
// up as updated subject entries in later ingestions.
func buildSemester(label string, subjects []SubjectRecord, totalCredits, totalGrade, sgpa float64) SemesterRecord {
	sem := SemesterRecord{
		Semester:     label,
		Subjects:     subjects,
		TotalCredits: totalCredits,
		TotalGrade:   totalGrade,
		SGPA:         sgpa,
	}
	sem.ActiveBacklogs = countBacklogs(subjects)
	sem.TotalBacklogs = sem.ActiveBacklogs
	return sem
}

// recomputeSemester re-derives a semester's aggregates from its subject list
// after a subject-level marks correction. SGPA is credit-weighted over the
// cleared subjects only, divided by the semester's full credit load, rounded
// to 2 decimals.
func recomputeSemester(sem *SemesterRecord) {
	var gradeSum, creditSum float64
	for _, s := range sem.Subjects {
		creditSum += s.Credits
		if s.GradePoints > 0 {
			gradeSum += s.Credits * s.GradePoints
		}
	}

	sem.TotalGrade = gradeSum
	if creditSum > 0 {
		sem.SGPA = round2(gradeSum / creditSum)
	} else {
		sem.SGPA = 0
	}
	sem.ActiveBacklogs = countBacklogs(sem.Subjects)
	sem.TotalBacklogs = sem.ActiveBacklogs
}

func countBacklogs(subjects []SubjectRecord) int {
	n := 0
	for _, s := range subjects {
		if s.GradePoints == 0 {
			n++
		}
	}
	return n
}

// aggregate is the recomputed student-level view of a semester history.
type aggregate struct {
	CGPA              float64
	Percentage        float64
	AllActiveBacklogs int
	AllBacklogs       int
}

// computeAggregate recomputes a student's cumulative metrics from the full
// semester list. CGPA is the plain arithmetic mean of semester SGPAs,
// rounded to 2 decimals; semesters are deliberately not weighted by credit
// load. Backlog totals are straight sums.
func computeAggregate(semesters []SemesterRecord, mode PercentageMode) aggregate {
	var agg aggregate
	if len(semesters) == 0 {
		return agg
	}

	var sgpaSum float64
	for _, sem := range semesters {
		sgpaSum += sem.SGPA
		agg.AllActiveBacklogs += sem.ActiveBacklogs
		agg.AllBacklogs += sem.TotalBacklogs
	}

	agg.CGPA = round2(sgpaSum / float64(len(semesters)))
	agg.Percentage = mode.Percentage(agg.CGPA)
	return agg
}

// applyAggregate recomputes and writes the aggregate fields of a student.
func applyAggregate(student *StudentRecord, mode PercentageMode) {
	agg := computeAggregate(student.Semesters, mode)
	student.CGPA = agg.CGPA
	student.Percentage = agg.Percentage
	student.AllActiveBacklogs = agg.AllActiveBacklogs
	student.AllBacklogs = agg.AllBacklogs
}
