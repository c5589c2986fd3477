package models

import "time"

// Job defines a posting, stored in the 'jobs' table. (CompanyID, Title,
// Location, PostedDate) identifies a job for idempotent creation.
type Job struct {
	ID                int64     `json:"id" db:"id"`
	CompanyID         int64     `json:"companyId" db:"company_id"`
	Title             string    `json:"title" db:"title"`
	JobType           string    `json:"jobType" db:"job_type"`
	Location          string    `json:"location" db:"location"`
	Salary            float64   `json:"salary" db:"salary"`
	Description       string    `json:"description" db:"description"`
	Requirements      []string  `json:"requirements" db:"requirements"`
	Timing            string    `json:"timing" db:"timing"`
	PostedDate        time.Time `json:"postedDate" db:"posted_date"`
	MaxDeadBacklogs   int       `json:"maxDeadBacklogs" db:"max_dead_backlogs"`
	MaxLiveBacklogs   int       `json:"maxLiveBacklogs" db:"max_live_backlogs"`
	MinCGPI           float64   `json:"minCgpi" db:"min_cgpi"`
	YearsOfExperience int       `json:"yearsOfExperience" db:"years_of_experience"`
	BranchesAllowed   []string  `json:"branchesAllowed" db:"branches_allowed"`
	PassingYears      []int     `json:"passingYears" db:"passing_years"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// JobLinkResult is the outcome of creating a job and fanning it out to colleges.
type JobLinkResult struct {
	Job            *Job
	JobCreated     bool
	LinkedColleges []int64
	AlreadyLinked  []int64
}
