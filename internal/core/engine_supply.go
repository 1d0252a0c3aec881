package core

// engine_supply.go is the supply-marks correction flow: post-hoc fixes to
// specific subject marks inside an already-recorded semester, typically
// after supplementary examinations clear a backlog.
//
// Unlike ingestion, this flow trusts subject-level truth over the sheet's
// aggregate columns: the corrected semester's SGPA and total grade are
// re-derived from its subject list.

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// UpdateSupplyMarks applies subject-level mark corrections. Each row names a
// student (regdno), a subject (subcode) and replacement marks; the target
// semester comes from params. A lookup miss at any granularity drops only
// that row, with the specific reason reported.
func (e *Engine) UpdateSupplyMarks(ctx context.Context, params BatchParams, rows []Row) (*BatchReport, error) {
	start := time.Now()
	if params.Semester == "" {
		return nil, fmt.Errorf("semester is required")
	}

	students, err := e.fetchStudents(ctx, rows)
	if err != nil {
		return nil, err
	}

	report := newReport(len(rows))
	// Corrections touch students, not rows, one-to-one: several rows may
	// correct different subjects of the same student, so the write for a
	// student is queued once after all rows are applied.
	touched := make(map[string]struct{})

	for _, row := range rows {
		roll := CellString(row[ColRollNumber])
		code := CellString(row[ColSubjectCode])

		if roll == "" || code == "" {
			report.miss(roll, "missing roll number or subject code")
			continue
		}

		student, ok := students[roll]
		if !ok {
			report.miss(roll, ReasonNotFound)
			continue
		}

		semIdx := -1
		for i := range student.Semesters {
			if student.Semesters[i].Semester == params.Semester {
				semIdx = i
				break
			}
		}
		if semIdx < 0 {
			report.miss(roll, fmt.Sprintf("semester %s not recorded", params.Semester))
			continue
		}

		sem := &student.Semesters[semIdx]
		subIdx := -1
		for i := range sem.Subjects {
			if strings.TrimSpace(sem.Subjects[i].SubjectCode) == code {
				subIdx = i
				break
			}
		}
		if subIdx < 0 {
			report.miss(roll, fmt.Sprintf("subject %s not found in semester %s", code, params.Semester))
			continue
		}

		sub := &sem.Subjects[subIdx]
		sub.ExternalMarks = ParseNumber(row[colExternalPrefix])
		sub.InternalMarks = ParseNumber(row[colInternalPrefix])
		sub.TotalMarks = ParseNumber(row[colTotalPrefix])
		sub.GradePoints = ParseNumber(row[colGradePrefix])

		recomputeSemester(sem)
		applyAggregate(&student, PercentageFromCgpaLinear)

		students[roll] = student
		touched[roll] = struct{}{}
		report.UpdatedCount++
	}

	var batch writeBatch
	for roll := range touched {
		student := students[roll]
		batch.update(StudentUpdate{
			RollNumber:        student.RollNumber,
			Semesters:         student.Semesters,
			CGPA:              student.CGPA,
			Percentage:        student.Percentage,
			AllActiveBacklogs: student.AllActiveBacklogs,
			AllBacklogs:       student.AllBacklogs,
		})
	}

	res, err := batch.apply(ctx, e.students)
	if err != nil {
		return nil, err
	}
	finishReport(report, res, start)

	e.logger.Info("supply marks batch processed",
		"batch_id", report.BatchID,
		"semester", params.Semester,
		"rows", report.TotalRows,
		"write_ops", batch.len(),
		"corrections", report.UpdatedCount,
		"students", len(touched),
		"missed", len(report.MissedEntries),
	)
	return report, nil
}
