package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/logger"
)

// ActorResolver maps a token uid to the profile it belongs to.
type ActorResolver interface {
	ResolveActor(ctx context.Context, uid string) (*models.Actor, error)
}

// JobLookup loads jobs for ownership checks.
type JobLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Job, error)
}

// AuthorizationService handles role and ownership checks
type AuthorizationService struct {
	actors ActorResolver
	jobs   JobLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(actors ActorResolver, jobs JobLookup) *AuthorizationService {
	return &AuthorizationService{actors: actors, jobs: jobs}
}

// Resolve returns the caller's actor record.
func (s *AuthorizationService) Resolve(ctx context.Context, uid string) (*models.Actor, error) {
	actor, err := s.actors.ResolveActor(ctx, uid)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownActor) {
			return nil, apperrors.NewForbiddenError("no company, college or student profile is registered for this account")
		}
		logger.Error().Err(err).Str("uid", uid).Msg("Error resolving actor")
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

// RequireCompany returns the caller's company or a Forbidden error.
func (s *AuthorizationService) RequireCompany(ctx context.Context, uid string) (*models.Company, error) {
	actor, err := s.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleCompany || actor.Company == nil {
		return nil, apperrors.NewForbiddenError("only companies can perform this action")
	}
	return actor.Company, nil
}

// RequireStudent returns the caller's student record or a Forbidden error.
func (s *AuthorizationService) RequireStudent(ctx context.Context, uid string) (*models.Student, error) {
	actor, err := s.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleStudent || actor.Student == nil {
		return nil, apperrors.NewForbiddenError("only students can perform this action")
	}
	return actor.Student, nil
}

// RequireCollegeStaff returns the caller's college staff record.
func (s *AuthorizationService) RequireCollegeStaff(ctx context.Context, uid string) (*models.CollegeStaff, error) {
	actor, err := s.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleCollege || actor.Staff == nil {
		return nil, apperrors.NewForbiddenError("only college staff can perform this action")
	}
	return actor.Staff, nil
}

// RequireCollegeApprover checks the caller may approve job linkages for collegeID.
func (s *AuthorizationService) RequireCollegeApprover(ctx context.Context, uid string, collegeID int64) (*models.CollegeStaff, error) {
	staff, err := s.RequireCollegeStaff(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !staff.Role.CanApproveJobs() {
		return nil, apperrors.NewForbiddenError("only a college TPO or admin can manage job requests")
	}
	if staff.CollegeID != collegeID {
		return nil, apperrors.NewForbiddenError("this job request belongs to another college")
	}
	return staff, nil
}

// RequireJobOwner checks the caller is the company that posted jobID.
func (s *AuthorizationService) RequireJobOwner(ctx context.Context, uid string, jobID int64) (*models.Company, *models.Job, error) {
	company, err := s.RequireCompany(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, apperrors.NewResourceNotFoundError("job not found")
		}
		return nil, nil, fmt.Errorf("failed to load job: %w", err)
	}

	if job.CompanyID != company.ID {
		return nil, nil, apperrors.NewForbiddenError("job belongs to another company")
	}
	return company, job, nil
}
