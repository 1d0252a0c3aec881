package core

import (
	"context"
	"testing"
)

func TestLoadReferenceUpperCasesRegulation(t *testing.T) {
	departments := &fakeDepartments{list: []DepartmentInfo{{Name: "Computer Science", Code: "CS"}}}
	curriculum := &fakeCurriculum{subjects: []CurriculumSubject{
		{Code: "CS101", DepartmentCode: "CS", AcademicRegulation: "R20", Semester: "1-1"},
	}}

	ref, err := loadReference(context.Background(), departments, curriculum, BatchParams{Semester: "1-1", Regulation: "r20"})
	if err != nil {
		t.Fatalf("loadReference: %v", err)
	}
	if len(ref.subjects) != 1 {
		t.Errorf("lowercase regulation should still match, got %d subjects", len(ref.subjects))
	}
}

func TestResolvePreservesCatalogOrder(t *testing.T) {
	ref := &referenceData{
		departments: map[string]string{"CS": "Computer Science"},
		subjects: []CurriculumSubject{
			{Code: "CS201", DepartmentCode: "CS"},
			{Code: "IT201", DepartmentCode: "IT"},
			{Code: "CS202", DepartmentCode: "CS"},
			{Code: "CS203", DepartmentCode: "CS"},
		},
	}

	name, subjects := ref.resolve("CS")
	if name != "Computer Science" {
		t.Errorf("name = %q", name)
	}
	want := []string{"CS201", "CS202", "CS203"}
	if len(subjects) != len(want) {
		t.Fatalf("subjects = %d, want %d", len(subjects), len(want))
	}
	for i, code := range want {
		if subjects[i].Code != code {
			t.Errorf("subjects[%d] = %q, want %q (order is the positional contract)", i, subjects[i].Code, code)
		}
	}
}

func TestResolveUnknownDepartment(t *testing.T) {
	ref := &referenceData{departments: map[string]string{"CS": "Computer Science"}}

	tests := []struct {
		name string
		code string
	}{
		{name: "empty code", code: ""},
		{name: "code not in catalog", code: "ZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, subjects := ref.resolve(tt.code)
			if name != UnknownDepartment {
				t.Errorf("name = %q, want %q", name, UnknownDepartment)
			}
			if len(subjects) != 0 {
				t.Errorf("subjects = %d, want none", len(subjects))
			}
		})
	}
}
