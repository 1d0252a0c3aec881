package store

import (
	"context"
	"fmt"

	"github.com/b-balajis/rms-backend/internal/core"
)

// Departments implements core.DepartmentCatalog over the departments table.
type Departments struct {
	db DBTX
}

// Department is a catalog row including the free-text description the core
// does not need.
type Department struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ListAll returns all departments as core reference data.
func (d *Departments) ListAll(ctx context.Context) ([]core.DepartmentInfo, error) {
	rows, err := d.db.Query(ctx, `SELECT name, code FROM departments ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("select departments: %w", err)
	}
	defer rows.Close()

	departments := []core.DepartmentInfo{}
	for rows.Next() {
		var dept core.DepartmentInfo
		if err := rows.Scan(&dept.Name, &dept.Code); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

// ListDetailed returns all departments with descriptions for the admin API.
func (d *Departments) ListDetailed(ctx context.Context) ([]Department, error) {
	rows, err := d.db.Query(ctx, `SELECT name, code, description FROM departments ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("select departments: %w", err)
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.Name, &dept.Code, &dept.Description); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

// Create inserts a department.
func (d *Departments) Create(ctx context.Context, dept Department) error {
	_, err := d.db.Exec(ctx,
		`INSERT INTO departments (name, code, description) VALUES ($1, $2, $3)`,
		dept.Name, dept.Code, dept.Description)
	if err != nil {
		return fmt.Errorf("insert department %s: %w", dept.Code, err)
	}
	return nil
}

// Update replaces a department's name and description by code.
func (d *Departments) Update(ctx context.Context, dept Department) error {
	tag, err := d.db.Exec(ctx,
		`UPDATE departments SET name = $2, description = $3 WHERE code = $1`,
		dept.Code, dept.Name, dept.Description)
	if err != nil {
		return fmt.Errorf("update department %s: %w", dept.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("department %s not found", dept.Code)
	}
	return nil
}

// Delete removes a department by code.
func (d *Departments) Delete(ctx context.Context, code string) error {
	tag, err := d.db.Exec(ctx, `DELETE FROM departments WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete department %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("department %s not found", code)
	}
	return nil
}
