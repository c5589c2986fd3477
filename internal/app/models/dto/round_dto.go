package dto

import "github.com/placementcell/pipeline/internal/app/models"

// CreateRoundRequest appends a round to a job's ladder
type CreateRoundRequest struct {
	JobID     int64  `json:"jobId" binding:"required,gt=0"`
	RoundType string `json:"roundType" binding:"required"`
}

// ApplyRequest enrolls the calling student in a job's first round
type ApplyRequest struct {
	JobID int64 `json:"jobId" binding:"required,gt=0"`
}

// PromoteRequest moves a student from a round to the next one
type PromoteRequest struct {
	RoundID   int64 `json:"roundId" binding:"required,gt=0"`
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
}

// JobRoundsRequest selects the job whose ladder to list
type JobRoundsRequest struct {
	JobID int64 `json:"jobId" binding:"required,gt=0"`
}

// PromoteResponse describes a completed promotion
type PromoteResponse struct {
	From       *models.Round      `json:"from"`
	To         *models.Round      `json:"to"`
	Enrollment *models.Enrollment `json:"enrollment"`
}

// RoundStudentsResponse lists the students currently sitting in a round
type RoundStudentsResponse struct {
	Round       *models.Round       `json:"round"`
	Enrollments []models.Enrollment `json:"enrollments"`
}
