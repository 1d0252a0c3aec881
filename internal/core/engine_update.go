package core

// engine_update.go is the subsequent-semester flow: result sheets for
// students that already have records. Appends one SemesterRecord per row and
// recomputes the student's cumulative metrics over the full history.

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// UpdateRecords processes a result sheet for an existing cohort. A student
// that already has the target semester on record is skipped, never
// overwritten. Lateral-entry roll numbers with no record yet are
// auto-created when the sheet is for the lateral intake semester; any other
// unknown roll number is reported as not found.
func (e *Engine) UpdateRecords(ctx context.Context, params BatchParams, rows []Row) (*BatchReport, error) {
	start := time.Now()
	if err := validateParams(params); err != nil {
		return nil, err
	}

	ref, err := loadReference(ctx, e.departments, e.curriculum, params)
	if err != nil {
		return nil, err
	}

	students, err := e.fetchStudents(ctx, rows)
	if err != nil {
		return nil, err
	}

	report := newReport(len(rows))
	var batch writeBatch

	for _, row := range rows {
		roll := CellString(row[ColRollNumber])
		totalCredits := ParseNumber(row[ColTotalCredits])

		if roll == "" || totalCredits == 0 {
			report.miss(roll, ReasonInvalidRow)
			continue
		}

		student, found := students[roll]
		created := false
		if !found {
			if !e.isLateralIntake(roll, params.Semester) {
				report.miss(roll, ReasonNotFound)
				continue
			}
			student = e.newLateralStudent(roll, row, ref)
			created = true
		}

		if hasSemester(student, params.Semester) {
			report.skip(roll, ReasonAlreadyProcessed)
			continue
		}

		_, subjects := ref.resolve(DecodeRegistration(roll).DepartmentCode)
		sem := buildSemester(
			params.Semester,
			buildSubjectRecords(row, subjects),
			totalCredits,
			ParseNumber(row[ColTotalGrade]),
			ParseNumber(row[ColSGPA]),
		)

		student.Semesters = append(student.Semesters, sem)
		applyAggregate(&student, PercentageFromCgpaLinear)

		if created {
			batch.insert(student)
			report.LateralCreatedCount++
		} else {
			batch.update(StudentUpdate{
				RollNumber:        student.RollNumber,
				Semesters:         student.Semesters,
				CGPA:              student.CGPA,
				Percentage:        student.Percentage,
				AllActiveBacklogs: student.AllActiveBacklogs,
				AllBacklogs:       student.AllBacklogs,
			})
			report.UpdatedCount++
		}

		// Keep the in-memory view current so a second row for the same
		// student in this sheet hits the already-processed guard.
		students[roll] = student
	}

	res, err := batch.apply(ctx, e.students)
	if err != nil {
		return nil, err
	}
	finishReport(report, res, start)

	e.logger.Info("update batch processed",
		"batch_id", report.BatchID,
		"semester", params.Semester,
		"rows", report.TotalRows,
		"write_ops", batch.len(),
		"updated", report.UpdatedCount,
		"lateral_created", report.LateralCreatedCount,
		"skipped", len(report.SkippedEntries),
		"missed", len(report.MissedEntries),
	)
	return report, nil
}

// fetchStudents pre-fetches every student referenced by the sheet in one
// store query.
func (e *Engine) fetchStudents(ctx context.Context, rows []Row) (map[string]StudentRecord, error) {
	rolls := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		roll := CellString(row[ColRollNumber])
		if roll == "" {
			continue
		}
		if _, ok := seen[roll]; ok {
			continue
		}
		seen[roll] = struct{}{}
		rolls = append(rolls, roll)
	}

	students, err := e.students.ByRollNumbers(ctx, rolls)
	if err != nil {
		return nil, fmt.Errorf("fetch students by roll numbers: %w", err)
	}
	return students, nil
}

// isLateralIntake reports whether an unknown roll number qualifies for
// lateral-entry auto-creation in this batch.
func (e *Engine) isLateralIntake(roll, semester string) bool {
	return strings.HasPrefix(roll, "L") && semester == e.lateralSemester
}

// newLateralStudent synthesizes a record for a lateral-entry student seen
// for the first time. Batch and department come from the registration
// number; the semester history starts empty and is filled by the caller.
func (e *Engine) newLateralStudent(roll string, row Row, ref *referenceData) StudentRecord {
	reg := DecodeRegistration(roll)
	deptName, _ := ref.resolve(reg.DepartmentCode)

	return StudentRecord{
		RollNumber: roll,
		Name:       CellString(row[ColName]),
		Email:      DeriveEmail(roll, e.emailDomain),
		Department: deptName,
		Batch:      reg.Batch,
		EntryType:  EntryLateral,
		Semesters:  []SemesterRecord{},
	}
}
