package dto

import (
	"github.com/placementcell/pipeline/internal/app/eligibility"
	"github.com/placementcell/pipeline/internal/app/models"
)

// CreateJobRequest represents the request to post a job and link it to colleges.
// Zero is a meaningful value for the backlog limits and CGPI floor, hence the pointers.
type CreateJobRequest struct {
	Title             string   `json:"title" binding:"required"`
	JobType           string   `json:"jobType" binding:"required"`
	Location          string   `json:"location" binding:"required"`
	Salary            *float64 `json:"salary" binding:"required,gte=0"`
	Description       string   `json:"description" binding:"required"`
	Requirements      []string `json:"requirements"`
	Timing            string   `json:"timing" binding:"required"`
	PostedDate        string   `json:"postedDate" binding:"required,datetime=2006-01-02"`
	MaxDeadBacklogs   *int     `json:"maxDeadBacklogs" binding:"required,gte=0"`
	MaxLiveBacklogs   *int     `json:"maxLiveBacklogs" binding:"required,gte=0"`
	MinCGPI           *float64 `json:"minCgpi" binding:"required,gte=0,lte=10"`
	YearsOfExperience int      `json:"yearsOfExperience" binding:"gte=0"`
	BranchesAllowed   []string `json:"branchesAllowed" binding:"required,min=1"`
	PassingYears      []int    `json:"passingYears"`
	CollegeIDs        []int64  `json:"collegeIds" binding:"required,min=1,dive,gt=0"`
}

// CreateJobResponse reports which colleges were newly linked
type CreateJobResponse struct {
	Job            *models.Job `json:"job"`
	Linked         bool        `json:"linked"`
	LinkedColleges []int64     `json:"linkedColleges"`
	AlreadyLinked  []int64     `json:"alreadyLinked"`
}

// ManageLinkageRequest is a college approver's decision on one linkage
type ManageLinkageRequest struct {
	LinkageID int64  `json:"linkageId" binding:"required,gt=0"`
	Action    string `json:"action" binding:"required"`
}

// LinkageResponse is a linkage after a status change, with its job
type LinkageResponse struct {
	Link *models.CollegeJobLink `json:"link"`
	Job  *models.Job            `json:"job"`
}

// CompanyJobsRequest selects the company whose jobs to list
type CompanyJobsRequest struct {
	CompanyID int64 `json:"companyId" binding:"required,gt=0"`
}

// StudentJob is an approved job as seen by one student
type StudentJob struct {
	models.LinkedJob
	eligibility.Result
}
