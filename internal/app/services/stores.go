package services

import (
	"context"

	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/repositories"
)

// The store interfaces below are the slices of the repositories each service
// needs. The Postgres repositories satisfy them; tests substitute fakes.

// JobStore persists jobs and their college fan-out
type JobStore interface {
	CreateWithLinks(ctx context.Context, job *models.Job, collegeIDs []int64) (*models.JobLinkResult, error)
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.Job, error)
}

// LinkageStore persists college_job_links
type LinkageStore interface {
	GetByID(ctx context.Context, id int64) (*models.CollegeJobLink, error)
	UpdateStatus(ctx context.Context, id int64, status models.LinkStatus) (*models.CollegeJobLink, error)
	List(ctx context.Context, filter repositories.LinkageFilter) ([]models.LinkedJob, error)
}

// RoundStore persists round ladders
type RoundStore interface {
	Append(ctx context.Context, jobID int64, roundType string) (*models.Round, error)
	GetByID(ctx context.Context, id int64) (*models.Round, error)
	GetByNumber(ctx context.Context, jobID int64, number int) (*models.Round, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.Round, error)
}

// EnrollmentStore persists each student's current rung
type EnrollmentStore interface {
	Create(ctx context.Context, jobID, studentID, roundID int64) (*models.Enrollment, error)
	GetByJobAndStudent(ctx context.Context, jobID, studentID int64) (*models.Enrollment, error)
	Advance(ctx context.Context, jobID, studentID, fromRoundID, toRoundID int64) (*models.Enrollment, error)
	ListByRound(ctx context.Context, roundID int64) ([]models.Enrollment, error)
}

// OfferStore persists the offer ledger
type OfferStore interface {
	CreateCapped(ctx context.Context, offer *models.Offer, limit int) (*models.Offer, error)
	CountByStudent(ctx context.Context, studentID int64) (int, error)
	GetByJobAndStudent(ctx context.Context, jobID, studentID int64) (*models.Offer, error)
	GetByID(ctx context.Context, id int64) (*models.Offer, error)
	UpdateStatus(ctx context.Context, id int64, status models.OfferStatus) (*models.Offer, error)
	ListByJob(ctx context.Context, jobID int64, status models.OfferStatus) ([]models.Offer, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Offer, error)
}

// ProfileStore reads the externally owned profile tables
type ProfileStore interface {
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
}
