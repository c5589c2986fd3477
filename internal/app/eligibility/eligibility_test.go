package eligibility

import (
	"math"
	"reflect"
	"testing"

	"github.com/placementcell/pipeline/internal/app/models"
)

func baseJob() *models.Job {
	return &models.Job{
		MaxDeadBacklogs: 0,
		MaxLiveBacklogs: 1,
		MinCGPI:         7,
		BranchesAllowed: []string{"Computer Engineering", "IT"},
	}
}

func baseStudent() *models.Student {
	return &models.Student{
		Department:     "IT",
		PassingYear:    2025,
		SemesterGrades: []string{"8", "7.5", "", "abc", "8.5"},
	}
}

func TestAverageCGPI(t *testing.T) {
	cases := []struct {
		name   string
		grades []string
		want   float64
	}{
		{"ignores blanks and junk", []string{"8", "", "x", "6"}, 7},
		{"no valid grades", []string{"", "n/a"}, 0},
		{"nil", nil, 0},
		{"all eight", []string{"1", "2", "3", "4", "5", "6", "7", "8"}, 4.5},
		{"whitespace trimmed", []string{" 9 ", "7"}, 8},
		{"NaN ignored", []string{"NaN", "6"}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AverageCGPI(tc.grades); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("AverageCGPI(%v) = %v, want %v", tc.grades, got, tc.want)
			}
		})
	}
}

func TestEvaluateEligible(t *testing.T) {
	res := Evaluate(baseJob(), baseStudent())
	if !res.Eligible || len(res.Reasons) != 0 {
		t.Fatalf("expected eligible, got %+v", res)
	}
}

func TestEvaluateReportsEveryFailure(t *testing.T) {
	job := baseJob()
	job.PassingYears = []int{2024}
	student := &models.Student{
		Department:     "Mechanical",
		PassingYear:    2025,
		DeadBacklogs:   1,
		LiveBacklogs:   2,
		SemesterGrades: []string{"5"},
	}

	res := Evaluate(job, student)
	want := []string{
		"Too many dead KTs (allowed: 0)",
		"Too many live KTs (allowed: 1)",
		"CGPI too low (required: 7)",
		"Branch not allowed",
		"Passing year not allowed",
	}
	if res.Eligible {
		t.Fatal("expected ineligible")
	}
	if !reflect.DeepEqual(res.Reasons, want) {
		t.Fatalf("reasons = %v, want %v", res.Reasons, want)
	}
}

func TestEvaluateBranchIsExactMatch(t *testing.T) {
	student := baseStudent()
	student.Department = "it"
	if res := Evaluate(baseJob(), student); res.Eligible {
		t.Fatal("branch comparison must be case sensitive")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	job, student := baseJob(), baseStudent()
	first := Evaluate(job, student)
	for i := 0; i < 10; i++ {
		if got := Evaluate(job, student); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestRaisingMinCGPIIsMonotonic(t *testing.T) {
	students := []*models.Student{
		{Department: "IT", SemesterGrades: []string{"6"}},
		{Department: "IT", SemesterGrades: []string{"7", "8"}},
		{Department: "IT", SemesterGrades: []string{"9.5"}},
		{Department: "IT"},
	}
	job := baseJob()
	for _, s := range students {
		wasEligible := true
		for min := 0.0; min <= 10; min += 0.5 {
			job.MinCGPI = min
			eligible := Evaluate(job, s).Eligible
			if eligible && !wasEligible {
				t.Fatalf("student %v became eligible again at minCGPI %v", s.SemesterGrades, min)
			}
			wasEligible = eligible
		}
	}
}
