package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/b-balajis/rms-backend/internal/core"
)

// Students implements core.StudentStore over the students table.
type Students struct {
	db DBTX
}

const studentColumns = `roll_number, name, email, department, batch, entry_type,
	semesters, cgpa, percentage, all_active_backlogs, all_backlogs`

// RollNumbers returns the set of all stored roll numbers. Fetched once per
// initial-ingestion batch for duplicate detection.
func (s *Students) RollNumbers(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, `SELECT roll_number FROM students`)
	if err != nil {
		return nil, fmt.Errorf("select roll numbers: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var roll string
		if err := rows.Scan(&roll); err != nil {
			return nil, fmt.Errorf("scan roll number: %w", err)
		}
		set[roll] = struct{}{}
	}
	return set, rows.Err()
}

// ByRollNumbers returns the students matching the given roll numbers, keyed
// by roll number. Missing rolls are simply absent from the map.
func (s *Students) ByRollNumbers(ctx context.Context, rolls []string) (map[string]core.StudentRecord, error) {
	if len(rolls) == 0 {
		return map[string]core.StudentRecord{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE roll_number = ANY($1)`, rolls)
	if err != nil {
		return nil, fmt.Errorf("select students by roll numbers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.StudentRecord, len(rolls))
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out[student.RollNumber] = student
	}
	return out, rows.Err()
}

// ByBatch lists all students of an admission batch.
func (s *Students) ByBatch(ctx context.Context, batch string) ([]core.StudentRecord, error) {
	return s.list(ctx, `SELECT `+studentColumns+` FROM students WHERE batch = $1 ORDER BY roll_number`, batch)
}

// ByDepartmentAndBatch lists the students of one department in one batch.
func (s *Students) ByDepartmentAndBatch(ctx context.Context, department, batch string) ([]core.StudentRecord, error) {
	return s.list(ctx,
		`SELECT `+studentColumns+` FROM students WHERE department = $1 AND batch = $2 ORDER BY roll_number`,
		department, batch)
}

func (s *Students) list(ctx context.Context, query string, args ...any) ([]core.StudentRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer rows.Close()

	students := []core.StudentRecord{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func scanStudent(row pgx.Row) (core.StudentRecord, error) {
	var student core.StudentRecord
	var semesters []byte
	err := row.Scan(
		&student.RollNumber, &student.Name, &student.Email,
		&student.Department, &student.Batch, &student.EntryType,
		&semesters, &student.CGPA, &student.Percentage,
		&student.AllActiveBacklogs, &student.AllBacklogs,
	)
	if err != nil {
		return core.StudentRecord{}, fmt.Errorf("scan student: %w", err)
	}
	if err := json.Unmarshal(semesters, &student.Semesters); err != nil {
		return core.StudentRecord{}, fmt.Errorf("decode semesters for %s: %w", student.RollNumber, err)
	}
	return student, nil
}

// BulkApply submits all write ops in a single pgx batch: one network round
// trip for the whole ingestion. Each op is an independent statement; there
// is no cross-student transaction.
func (s *Students) BulkApply(ctx context.Context, ops []core.WriteOp) (core.BulkResult, error) {
	if len(ops) == 0 {
		return core.BulkResult{}, nil
	}

	batch := &pgx.Batch{}
	for _, op := range ops {
		switch {
		case op.Insert != nil:
			semesters, err := json.Marshal(op.Insert.Semesters)
			if err != nil {
				return core.BulkResult{}, fmt.Errorf("encode semesters for %s: %w", op.Insert.RollNumber, err)
			}
			batch.Queue(
				`INSERT INTO students (`+studentColumns+`)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				op.Insert.RollNumber, op.Insert.Name, op.Insert.Email,
				op.Insert.Department, op.Insert.Batch, op.Insert.EntryType,
				semesters, op.Insert.CGPA, op.Insert.Percentage,
				op.Insert.AllActiveBacklogs, op.Insert.AllBacklogs,
			)

		case op.Update != nil:
			semesters, err := json.Marshal(op.Update.Semesters)
			if err != nil {
				return core.BulkResult{}, fmt.Errorf("encode semesters for %s: %w", op.Update.RollNumber, err)
			}
			batch.Queue(
				`UPDATE students
				 SET semesters = $2, cgpa = $3, percentage = $4,
				     all_active_backlogs = $5, all_backlogs = $6, updated_at = now()
				 WHERE roll_number = $1`,
				op.Update.RollNumber, semesters, op.Update.CGPA, op.Update.Percentage,
				op.Update.AllActiveBacklogs, op.Update.AllBacklogs,
			)
		}
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	var res core.BulkResult
	for _, op := range ops {
		tag, err := results.Exec()
		if err != nil {
			return core.BulkResult{}, fmt.Errorf("bulk write: %w", err)
		}
		if op.Insert != nil {
			res.Inserted += tag.RowsAffected()
		} else {
			res.Modified += tag.RowsAffected()
		}
	}
	return res, nil
}
