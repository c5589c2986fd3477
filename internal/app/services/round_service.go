package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/eligibility"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/repositories"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

// RoundService defines the interface for round ladders and enrollment
type RoundService interface {
	CreateRound(ctx context.Context, uid string, req *dto.CreateRoundRequest) (*models.Round, error)
	Apply(ctx context.Context, uid string, req *dto.ApplyRequest) (*models.Enrollment, error)
	Promote(ctx context.Context, uid string, req *dto.PromoteRequest) (*dto.PromoteResponse, error)
	ListRounds(ctx context.Context, jobID int64) ([]models.Round, error)
	ListRoundStudents(ctx context.Context, uid string, roundID int64) (*dto.RoundStudentsResponse, error)
}

// roundServiceImpl implements RoundService
type roundServiceImpl struct {
	jobs         JobStore
	links        LinkageStore
	rounds       RoundStore
	enrollments  EnrollmentStore
	cache        *cache.Cache
	authzService *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewRoundService creates a new RoundService
func NewRoundService(
	jobs JobStore,
	links LinkageStore,
	rounds RoundStore,
	enrollments EnrollmentStore,
	responseCache *cache.Cache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) RoundService {
	return &roundServiceImpl{
		jobs:         jobs,
		links:        links,
		rounds:       rounds,
		enrollments:  enrollments,
		cache:        responseCache,
		authzService: authzService,
		logger:       logger.With().Str("service", "round").Logger(),
	}
}

// CreateRound appends a round to one of the caller's jobs
func (s *roundServiceImpl) CreateRound(ctx context.Context, uid string, req *dto.CreateRoundRequest) (*models.Round, error) {
	_, job, err := s.authzService.RequireJobOwner(ctx, uid, req.JobID)
	if err != nil {
		return nil, err
	}

	roundType := strings.TrimSpace(req.RoundType)
	if roundType == "" {
		return nil, apperrors.NewValidationError("roundType is required", []string{"roundType"})
	}

	round, err := s.rounds.Append(ctx, job.ID, roundType)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("job not found")
		}
		s.logger.Error().Err(err).Int64("jobId", job.ID).Msg("Failed to append round")
		return nil, fmt.Errorf("error creating round: %w", err)
	}

	s.cache.Invalidate(ctx, RoundCreatedInvalidation(job.ID)...)

	s.logger.Info().Int64("jobId", job.ID).Int("roundNumber", round.RoundNumber).Msg("Round created")
	return round, nil
}

// Apply enrolls the calling student in round 1 of a job approved at their
// college, provided they meet its eligibility criteria.
func (s *roundServiceImpl) Apply(ctx context.Context, uid string, req *dto.ApplyRequest) (*models.Enrollment, error) {
	student, err := s.authzService.RequireStudent(ctx, uid)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("job not found")
		}
		return nil, fmt.Errorf("error getting job: %w", err)
	}

	if _, err := s.enrollments.GetByJobAndStudent(ctx, job.ID, student.ID); err == nil {
		return nil, apperrors.NewConflictError("student has already applied")
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error checking enrollment: %w", err)
	}

	first, err := s.rounds.GetByNumber(ctx, job.ID, 1)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewConflictError("job has no rounds configured")
		}
		return nil, fmt.Errorf("error getting first round: %w", err)
	}

	approved, err := s.links.List(ctx, repositories.LinkageFilter{
		JobID:     job.ID,
		CollegeID: student.CollegeID,
		Status:    models.LinkStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("error checking job approval: %w", err)
	}
	if len(approved) == 0 {
		return nil, apperrors.NewForbiddenError("job is not open to students of your college")
	}

	if result := eligibility.Evaluate(job, student); !result.Eligible {
		s.logger.Warn().Int64("jobId", job.ID).Int64("studentId", student.ID).Strs("reasons", result.Reasons).Msg("Ineligible application refused")
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrPermissionDenied,
			Message: "student is not eligible for this job",
			Details: map[string]interface{}{"ineligibilityReasons": result.Reasons},
		}
	}

	enrollment, err := s.enrollments.Create(ctx, job.ID, student.ID, first.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, apperrors.NewConflictError("student has already applied")
		}
		s.logger.Error().Err(err).Int64("jobId", job.ID).Int64("studentId", student.ID).Msg("Failed to enroll student")
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	s.logger.Info().Int64("jobId", job.ID).Int64("studentId", student.ID).Msg("Student applied")
	return enrollment, nil
}

// Promote moves a student from roundID to the next round of the same job.
func (s *roundServiceImpl) Promote(ctx context.Context, uid string, req *dto.PromoteRequest) (*dto.PromoteResponse, error) {
	current, err := s.rounds.GetByID(ctx, req.RoundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("round not found")
		}
		return nil, fmt.Errorf("error getting round: %w", err)
	}

	if _, _, err := s.authzService.RequireJobOwner(ctx, uid, current.JobID); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.GetByJobAndStudent(ctx, current.JobID, req.StudentID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}
	if enrollment == nil || enrollment.RoundID != current.ID {
		return nil, apperrors.NewConflictError("student is not part of this round")
	}

	if !current.IsNextRound {
		return nil, apperrors.NewConflictError("this is the last round, promote via offer instead")
	}

	next, err := s.rounds.GetByNumber(ctx, current.JobID, current.RoundNumber+1)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Int64("jobId", current.JobID).Int("roundNumber", current.RoundNumber).Msg("Round ladder has a gap")
			return nil, apperrors.NewConflictError("next round not found")
		}
		return nil, fmt.Errorf("error getting next round: %w", err)
	}

	advanced, err := s.enrollments.Advance(ctx, current.JobID, req.StudentID, current.ID, next.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaleEnrollment) {
			s.logger.Warn().Int64("roundId", current.ID).Int64("studentId", req.StudentID).Msg("Lost promotion race")
			return nil, apperrors.NewConflictError("student is not part of this round")
		}
		return nil, fmt.Errorf("error advancing enrollment: %w", err)
	}

	s.logger.Info().
		Int64("jobId", current.JobID).
		Int64("studentId", req.StudentID).
		Int("from", current.RoundNumber).
		Int("to", next.RoundNumber).
		Msg("Student promoted")

	return &dto.PromoteResponse{From: current, To: next, Enrollment: advanced}, nil
}

// ListRounds lists a job's ladder in order
func (s *roundServiceImpl) ListRounds(ctx context.Context, jobID int64) ([]models.Round, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("job not found")
		}
		return nil, fmt.Errorf("error getting job: %w", err)
	}

	return cache.Remember(ctx, s.cache, cache.JobRoundsKey(jobID), func(ctx context.Context) ([]models.Round, error) {
		return s.rounds.ListByJob(ctx, jobID)
	})
}

// ListRoundStudents lists the students currently in a round of one of the caller's jobs
func (s *roundServiceImpl) ListRoundStudents(ctx context.Context, uid string, roundID int64) (*dto.RoundStudentsResponse, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("round not found")
		}
		return nil, fmt.Errorf("error getting round: %w", err)
	}

	if _, _, err := s.authzService.RequireJobOwner(ctx, uid, round.JobID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing round students: %w", err)
	}
	return &dto.RoundStudentsResponse{Round: round, Enrollments: enrollments}, nil
}
