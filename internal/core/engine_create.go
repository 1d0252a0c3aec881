package core

// engine_create.go is the initial ingestion flow: the first result sheet for
// a cohort, producing brand-new student records with exactly one semester.

import (
	"context"
	"fmt"
	"time"
)

// CreateRecords processes an initial result sheet. Each valid row becomes a
// new StudentRecord; rows whose roll number already exists (in the store or
// earlier in the same sheet) are dropped as duplicates, never merged. The
// batch label from params is recorded as the cohort batch; entry type comes
// from the registration number.
func (e *Engine) CreateRecords(ctx context.Context, params BatchParams, rows []Row) (*BatchReport, error) {
	start := time.Now()
	if err := validateParams(params); err != nil {
		return nil, err
	}

	ref, err := loadReference(ctx, e.departments, e.curriculum, params)
	if err != nil {
		return nil, err
	}

	existing, err := e.students.RollNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch existing roll numbers: %w", err)
	}

	report := newReport(len(rows))
	var batch writeBatch

	for _, row := range rows {
		roll := CellString(row[ColRollNumber])
		name := CellString(row[ColName])
		totalCredits := ParseNumber(row[ColTotalCredits])

		if roll == "" || name == "" || totalCredits == 0 {
			report.miss(roll, ReasonInvalidRow)
			continue
		}

		if _, ok := existing[roll]; ok {
			report.duplicate(roll)
			report.skip(roll, ReasonDuplicate)
			continue
		}

		reg := DecodeRegistration(roll)
		deptName, subjects := ref.resolve(reg.DepartmentCode)

		sem := buildSemester(
			params.Semester,
			buildSubjectRecords(row, subjects),
			totalCredits,
			ParseNumber(row[ColTotalGrade]),
			ParseNumber(row[ColSGPA]),
		)

		student := StudentRecord{
			RollNumber: roll,
			Name:       name,
			Email:      DeriveEmail(roll, e.emailDomain),
			Department: deptName,
			Batch:      params.Batch,
			EntryType:  reg.EntryType,
			Semesters:  []SemesterRecord{sem},
		}
		applyAggregate(&student, PercentageFromCgpaShifted)

		batch.insert(student)
		// Suppress later duplicates of the same roll number in this sheet.
		existing[roll] = struct{}{}
		report.CreatedCount++
	}

	res, err := batch.apply(ctx, e.students)
	if err != nil {
		return nil, err
	}
	finishReport(report, res, start)

	e.logger.Info("create batch processed",
		"batch_id", report.BatchID,
		"semester", params.Semester,
		"rows", report.TotalRows,
		"write_ops", batch.len(),
		"created", report.CreatedCount,
		"duplicates", len(report.DuplicateRollNumbers),
		"missed", len(report.MissedEntries),
	)
	return report, nil
}
