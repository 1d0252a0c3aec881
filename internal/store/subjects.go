package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/b-balajis/rms-backend/internal/core"
)

// Subjects implements core.CurriculumCatalog over the subjects table and
// carries the catalog maintenance operations (bulk upload, listing).
type Subjects struct {
	db DBTX
}

const subjectColumns = `code, name, credits, department_code, academic_regulation, semester`

// Find returns the curriculum subjects for a regulation and semester,
// ordered by subject code. That ordering is the positional contract the
// reconciliation engine maps indexed mark columns with; it must stay stable
// across calls.
func (s *Subjects) Find(ctx context.Context, regulation, semester string) ([]core.CurriculumSubject, error) {
	return s.list(ctx,
		`SELECT `+subjectColumns+` FROM subjects
		 WHERE academic_regulation = $1 AND semester = $2
		 ORDER BY code`,
		regulation, semester)
}

// All lists the entire curriculum catalog.
func (s *Subjects) All(ctx context.Context) ([]core.CurriculumSubject, error) {
	return s.list(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY academic_regulation, semester, code`)
}

func (s *Subjects) list(ctx context.Context, query string, args ...any) ([]core.CurriculumSubject, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select subjects: %w", err)
	}
	defer rows.Close()

	subjects := []core.CurriculumSubject{}
	for rows.Next() {
		var sub core.CurriculumSubject
		if err := rows.Scan(&sub.Code, &sub.Name, &sub.Credits,
			&sub.DepartmentCode, &sub.AcademicRegulation, &sub.Semester); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// Create inserts one subject. Fails on an existing code.
func (s *Subjects) Create(ctx context.Context, sub core.CurriculumSubject) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO subjects (`+subjectColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.Code, sub.Name, sub.Credits, sub.DepartmentCode, sub.AcademicRegulation, sub.Semester)
	if err != nil {
		return fmt.Errorf("insert subject %s: %w", sub.Code, err)
	}
	return nil
}

// Update replaces a subject's details by code.
func (s *Subjects) Update(ctx context.Context, sub core.CurriculumSubject) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE subjects
		 SET name = $2, credits = $3, department_code = $4,
		     academic_regulation = $5, semester = $6, updated_at = now()
		 WHERE code = $1`,
		sub.Code, sub.Name, sub.Credits, sub.DepartmentCode, sub.AcademicRegulation, sub.Semester)
	if err != nil {
		return fmt.Errorf("update subject %s: %w", sub.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s not found", sub.Code)
	}
	return nil
}

// Delete removes a subject by code.
func (s *Subjects) Delete(ctx context.Context, code string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM subjects WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete subject %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s not found", code)
	}
	return nil
}

// UpsertBulk writes a curriculum sheet in one pgx batch, creating new
// subject codes and updating existing ones. Returns inserted and updated
// counts for the upload report.
func (s *Subjects) UpsertBulk(ctx context.Context, subjects []core.CurriculumSubject) (inserted, updated int64, err error) {
	if len(subjects) == 0 {
		return 0, 0, nil
	}

	batch := &pgx.Batch{}
	for _, sub := range subjects {
		batch.Queue(
			`INSERT INTO subjects (`+subjectColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (code) DO UPDATE
			 SET name = EXCLUDED.name, credits = EXCLUDED.credits,
			     department_code = EXCLUDED.department_code,
			     academic_regulation = EXCLUDED.academic_regulation,
			     semester = EXCLUDED.semester, updated_at = now()
			 RETURNING (xmax = 0) AS is_insert`,
			sub.Code, sub.Name, sub.Credits, sub.DepartmentCode, sub.AcademicRegulation, sub.Semester)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range subjects {
		var isInsert bool
		if err := results.QueryRow().Scan(&isInsert); err != nil {
			return 0, 0, fmt.Errorf("upsert subject: %w", err)
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, nil
}
