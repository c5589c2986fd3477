// Package eligibility decides whether a student meets a job's academic thresholds.
package eligibility

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/placementcell/pipeline/internal/app/models"
)

// Result lists every rule the student failed; Eligible is true when there are none.
type Result struct {
	Eligible bool     `json:"isEligible"`
	Reasons  []string `json:"ineligibilityReasons"`
}

// Evaluate checks every rule without short-circuiting. It has no side effects
// and is safe for concurrent use.
func Evaluate(job *models.Job, student *models.Student) Result {
	reasons := []string{}

	if student.DeadBacklogs > job.MaxDeadBacklogs {
		reasons = append(reasons, fmt.Sprintf("Too many dead KTs (allowed: %d)", job.MaxDeadBacklogs))
	}
	if student.LiveBacklogs > job.MaxLiveBacklogs {
		reasons = append(reasons, fmt.Sprintf("Too many live KTs (allowed: %d)", job.MaxLiveBacklogs))
	}
	if AverageCGPI(student.SemesterGrades) < job.MinCGPI {
		reasons = append(reasons, fmt.Sprintf("CGPI too low (required: %s)", strconv.FormatFloat(job.MinCGPI, 'f', -1, 64)))
	}
	if !slices.Contains(job.BranchesAllowed, student.Department) {
		reasons = append(reasons, "Branch not allowed")
	}
	// An empty list places no restriction on passing year.
	if len(job.PassingYears) > 0 && !slices.Contains(job.PassingYears, student.PassingYear) {
		reasons = append(reasons, "Passing year not allowed")
	}

	return Result{Eligible: len(reasons) == 0, Reasons: reasons}
}

// AverageCGPI averages the semester grades that parse as numbers, ignoring
// blank and non-numeric entries. It is 0 when no grade is usable.
func AverageCGPI(grades []string) float64 {
	var sum float64
	var n int
	for _, g := range grades {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		v, err := strconv.ParseFloat(g, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
