package core

// curriculum.go resolves reference data for one ingestion batch.
//
// Both catalogs are fetched exactly once per batch operation, not per row,
// so store round trips stay constant no matter how many rows a sheet has.

import (
	"context"
	"fmt"
	"strings"
)

// referenceData is the pre-fetched reference snapshot an ingestion batch
// works from: department code -> name, and the curriculum subject list for
// the batch's regulation and semester.
type referenceData struct {
	departments map[string]string
	subjects    []CurriculumSubject
}

// loadReference fetches departments and the curriculum for the given cycle.
// The regulation string is upper-cased before lookup; sheets are not
// consistent about casing.
func loadReference(ctx context.Context, departments DepartmentCatalog, curriculum CurriculumCatalog, params BatchParams) (*referenceData, error) {
	depts, err := departments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	subjects, err := curriculum.Find(ctx, strings.ToUpper(params.Regulation), params.Semester)
	if err != nil {
		return nil, fmt.Errorf("find curriculum subjects: %w", err)
	}

	ref := &referenceData{
		departments: make(map[string]string, len(depts)),
		subjects:    subjects,
	}
	for _, d := range depts {
		ref.departments[d.Code] = d.Name
	}
	return ref, nil
}

// resolve returns the department name and the ordered subject list for a
// department code. The slice order follows the catalog's stable ordering;
// position i maps to the row columns e{i+1}, i{i+1}, t{i+1}, cr{i+1},
// gp{i+1}. An unknown or empty code degrades to UnknownDepartment and an
// empty subject list instead of failing the row.
func (r *referenceData) resolve(deptCode string) (string, []CurriculumSubject) {
	if deptCode == "" {
		return UnknownDepartment, nil
	}

	var subjects []CurriculumSubject
	for _, s := range r.subjects {
		if s.DepartmentCode == deptCode {
			subjects = append(subjects, s)
		}
	}

	name, ok := r.departments[deptCode]
	if !ok {
		name = UnknownDepartment
	}
	return name, subjects
}
