package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/eligibility"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/repositories"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

const postedDateLayout = "2006-01-02"

// JobService defines the interface for job registry operations
type JobService interface {
	CreateJob(ctx context.Context, uid string, req *dto.CreateJobRequest) (*dto.CreateJobResponse, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	ListCompanyJobs(ctx context.Context, companyID int64) ([]models.Job, error)
	ListJobsForStudent(ctx context.Context, uid string) ([]dto.StudentJob, error)
}

// jobServiceImpl implements JobService
type jobServiceImpl struct {
	jobs         JobStore
	links        LinkageStore
	profiles     ProfileStore
	cache        *cache.Cache
	authzService *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobs JobStore,
	links LinkageStore,
	profiles ProfileStore,
	responseCache *cache.Cache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) JobService {
	return &jobServiceImpl{
		jobs:         jobs,
		links:        links,
		profiles:     profiles,
		cache:        responseCache,
		authzService: authzService,
		logger:       logger.With().Str("service", "job").Logger(),
	}
}

// CreateJob posts a job, reusing an identical posting when one exists, and
// links it to every requested college as pending.
func (s *jobServiceImpl) CreateJob(ctx context.Context, uid string, req *dto.CreateJobRequest) (*dto.CreateJobResponse, error) {
	company, err := s.authzService.RequireCompany(ctx, uid)
	if err != nil {
		return nil, err
	}

	postedDate, err := time.Parse(postedDateLayout, strings.TrimSpace(req.PostedDate))
	if err != nil {
		return nil, apperrors.NewBadRequestError("postedDate must be formatted as YYYY-MM-DD")
	}

	job := &models.Job{
		CompanyID:         company.ID,
		Title:             strings.TrimSpace(req.Title),
		JobType:           req.JobType,
		Location:          strings.TrimSpace(req.Location),
		Salary:            *req.Salary,
		Description:       req.Description,
		Requirements:      nonNil(req.Requirements),
		Timing:            req.Timing,
		PostedDate:        postedDate,
		MaxDeadBacklogs:   *req.MaxDeadBacklogs,
		MaxLiveBacklogs:   *req.MaxLiveBacklogs,
		MinCGPI:           *req.MinCGPI,
		YearsOfExperience: req.YearsOfExperience,
		BranchesAllowed:   req.BranchesAllowed,
		PassingYears:      nonNil(req.PassingYears),
	}

	result, err := s.jobs.CreateWithLinks(ctx, job, uniqueIDs(req.CollegeIDs))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrResourceNotFound):
			return nil, err
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			s.logger.Warn().Int64("companyId", company.ID).Str("title", job.Title).Msg("Job already linked to every requested college")
			return nil, apperrors.NewConflictError("job already linked to all selected colleges")
		}
		s.logger.Error().Err(err).Int64("companyId", company.ID).Msg("Failed to create job")
		return nil, fmt.Errorf("error creating job: %w", err)
	}

	s.cache.Invalidate(ctx, JobCreatedInvalidation(company.ID, result.LinkedColleges)...)

	s.logger.Info().
		Int64("jobId", result.Job.ID).
		Bool("created", result.JobCreated).
		Ints64("linked", result.LinkedColleges).
		Msg("Job posted")

	return &dto.CreateJobResponse{
		Job:            result.Job,
		Linked:         len(result.LinkedColleges) > 0,
		LinkedColleges: nonNil(result.LinkedColleges),
		AlreadyLinked:  nonNil(result.AlreadyLinked),
	}, nil
}

// GetJob retrieves a job by ID
func (s *jobServiceImpl) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("job not found")
		}
		return nil, fmt.Errorf("error getting job: %w", err)
	}
	return job, nil
}

// ListCompanyJobs retrieves every job a company has posted
func (s *jobServiceImpl) ListCompanyJobs(ctx context.Context, companyID int64) ([]models.Job, error) {
	if _, err := s.profiles.GetCompany(ctx, companyID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("company not found")
		}
		return nil, fmt.Errorf("error getting company: %w", err)
	}

	jobs, err := s.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing company jobs: %w", err)
	}
	return jobs, nil
}

// ListJobsForStudent lists the jobs approved at the student's college, each
// annotated with the student's eligibility.
func (s *jobServiceImpl) ListJobsForStudent(ctx context.Context, uid string) ([]dto.StudentJob, error) {
	student, err := s.authzService.RequireStudent(ctx, uid)
	if err != nil {
		return nil, err
	}

	key := cache.CollegeJobsKey(student.CollegeID, string(models.LinkStatusApproved))
	approved, err := cache.Remember(ctx, s.cache, key, func(ctx context.Context) ([]models.LinkedJob, error) {
		return s.links.List(ctx, repositories.LinkageFilter{
			CollegeID: student.CollegeID,
			Status:    models.LinkStatusApproved,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error listing approved jobs: %w", err)
	}

	out := make([]dto.StudentJob, 0, len(approved))
	for _, lj := range approved {
		out = append(out, dto.StudentJob{
			LinkedJob: lj,
			Result:    eligibility.Evaluate(&lj.Job, student),
		})
	}
	return out, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
