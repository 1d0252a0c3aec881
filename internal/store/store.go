// Package store implements the persistence layer against PostgreSQL using
// pgx. It provides the DepartmentCatalog, CurriculumCatalog and StudentStore
// implementations consumed by internal/core, plus the catalog maintenance
// operations exposed by the web layer.
//
// Student semester histories are stored as a JSONB column: the history is
// always read and written whole (full-list replacement on update), so a
// document column keeps the bulk-write path to one statement per student.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

// Store bundles the per-table accessors over one connection pool.
type Store struct {
	Students    *Students
	Subjects    *Subjects
	Departments *Departments

	db DBTX
}

// New creates a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Students:    &Students{db: pool},
		Subjects:    &Subjects{db: pool},
		Departments: &Departments{db: pool},
		db:          pool,
	}
}

// Migrate creates the schema if it does not exist. Idempotent; runs at
// startup.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS departments (
			code        TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			code                TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			credits             DOUBLE PRECISION NOT NULL,
			department_code     TEXT NOT NULL,
			academic_regulation TEXT NOT NULL,
			semester            TEXT NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS subjects_cycle_idx
			ON subjects (academic_regulation, semester, department_code)`,
		`CREATE TABLE IF NOT EXISTS students (
			roll_number         TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			email               TEXT NOT NULL UNIQUE,
			department          TEXT NOT NULL,
			batch               TEXT NOT NULL,
			entry_type          TEXT NOT NULL,
			semesters           JSONB NOT NULL DEFAULT '[]',
			cgpa                DOUBLE PRECISION NOT NULL DEFAULT 0,
			percentage          DOUBLE PRECISION NOT NULL DEFAULT 0,
			all_active_backlogs INTEGER NOT NULL DEFAULT 0,
			all_backlogs        INTEGER NOT NULL DEFAULT 0,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS students_dept_batch_idx
			ON students (department, batch)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
