package core

import "testing"

func TestPercentageModes(t *testing.T) {
	tests := []struct {
		name string
		mode PercentageMode
		cgpa float64
		want float64
	}{
		{name: "linear", mode: PercentageFromCgpaLinear, cgpa: 8, want: 76},
		{name: "linear rounds", mode: PercentageFromCgpaLinear, cgpa: 7.33, want: 69.64},
		{name: "shifted", mode: PercentageFromCgpaShifted, cgpa: 8, want: 75},
		{name: "shifted rounds", mode: PercentageFromCgpaShifted, cgpa: 7.333, want: 68.33},
		{name: "modes diverge on the same cgpa", mode: PercentageFromCgpaShifted, cgpa: 9, want: 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Percentage(tt.cgpa); got != tt.want {
				t.Errorf("mode %v Percentage(%v) = %v, want %v", tt.mode, tt.cgpa, got, tt.want)
			}
		})
	}
}

func TestBuildSemesterBacklogs(t *testing.T) {
	subjects := []SubjectRecord{
		{SubjectCode: "CS101", Credits: 4, GradePoints: 8},
		{SubjectCode: "CS102", Credits: 3, GradePoints: 0},
		{SubjectCode: "CS103", Credits: 3, GradePoints: 0},
	}

	sem := buildSemester("1-1", subjects, 10, 62, 6.2)

	if sem.ActiveBacklogs != 2 {
		t.Errorf("ActiveBacklogs = %d, want 2", sem.ActiveBacklogs)
	}
	if sem.TotalBacklogs != 2 {
		t.Errorf("TotalBacklogs = %d, want 2", sem.TotalBacklogs)
	}
	// Sheet aggregates are taken as-is, not re-derived
	if sem.TotalCredits != 10 || sem.TotalGrade != 62 || sem.SGPA != 6.2 {
		t.Errorf("aggregates changed: %+v", sem)
	}
}

func TestRecomputeSemester(t *testing.T) {
	sem := SemesterRecord{
		Semester: "2-1",
		Subjects: []SubjectRecord{
			{SubjectCode: "CS201", Credits: 4, GradePoints: 9},
			{SubjectCode: "CS202", Credits: 3, GradePoints: 8},
			{SubjectCode: "CS203", Credits: 3, GradePoints: 0},
		},
	}

	recomputeSemester(&sem)

	// (4*9 + 3*8) / (4+3+3) = 60/10
	if sem.SGPA != 6 {
		t.Errorf("SGPA = %v, want 6", sem.SGPA)
	}
	if sem.TotalGrade != 60 {
		t.Errorf("TotalGrade = %v, want 60", sem.TotalGrade)
	}
	if sem.ActiveBacklogs != 1 {
		t.Errorf("ActiveBacklogs = %d, want 1", sem.ActiveBacklogs)
	}
}

func TestRecomputeSemesterNoCredits(t *testing.T) {
	sem := SemesterRecord{Semester: "1-1"}
	recomputeSemester(&sem)
	if sem.SGPA != 0 {
		t.Errorf("SGPA = %v, want 0 for empty subject list", sem.SGPA)
	}
}

func TestComputeAggregate(t *testing.T) {
	semesters := []SemesterRecord{
		{SGPA: 8.0, ActiveBacklogs: 0, TotalBacklogs: 0},
		{SGPA: 7.5, ActiveBacklogs: 2, TotalBacklogs: 2},
		{SGPA: 9.0, ActiveBacklogs: 1, TotalBacklogs: 1},
	}

	agg := computeAggregate(semesters, PercentageFromCgpaLinear)

	// mean(8.0, 7.5, 9.0) = 8.17 rounded
	if agg.CGPA != 8.17 {
		t.Errorf("CGPA = %v, want 8.17", agg.CGPA)
	}
	if agg.Percentage != round2(8.17*PercentageMultiplier) {
		t.Errorf("Percentage = %v, want %v", agg.Percentage, round2(8.17*PercentageMultiplier))
	}
	if agg.AllActiveBacklogs != 3 {
		t.Errorf("AllActiveBacklogs = %d, want 3", agg.AllActiveBacklogs)
	}
	if agg.AllBacklogs != 3 {
		t.Errorf("AllBacklogs = %d, want 3", agg.AllBacklogs)
	}
}

func TestComputeAggregateEmpty(t *testing.T) {
	agg := computeAggregate(nil, PercentageFromCgpaLinear)
	if agg.CGPA != 0 || agg.Percentage != 0 || agg.AllBacklogs != 0 {
		t.Errorf("empty history should aggregate to zero, got %+v", agg)
	}
}
