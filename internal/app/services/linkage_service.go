package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/repositories"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

// LinkageService defines the interface for the college approval workflow
type LinkageService interface {
	SetStatus(ctx context.Context, uid string, req *dto.ManageLinkageRequest) (*dto.LinkageResponse, error)
	ListForCollege(ctx context.Context, uid string, status string) ([]models.LinkedJob, error)
	ListForCompany(ctx context.Context, uid string, status models.LinkStatus) ([]models.LinkedJob, error)
	ListCompanyJobsAtCollege(ctx context.Context, uid string, companyID int64) ([]models.LinkedJob, error)
}

// linkageServiceImpl implements LinkageService
type linkageServiceImpl struct {
	links        LinkageStore
	jobs         JobStore
	cache        *cache.Cache
	authzService *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewLinkageService creates a new LinkageService
func NewLinkageService(
	links LinkageStore,
	jobs JobStore,
	responseCache *cache.Cache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) LinkageService {
	return &linkageServiceImpl{
		links:        links,
		jobs:         jobs,
		cache:        responseCache,
		authzService: authzService,
		logger:       logger.With().Str("service", "linkage").Logger(),
	}
}

// SetStatus approves or rejects a job at the approver's college. The status
// is overwritten unconditionally, so a decision can be reversed.
func (s *linkageServiceImpl) SetStatus(ctx context.Context, uid string, req *dto.ManageLinkageRequest) (*dto.LinkageResponse, error) {
	link, err := s.links.GetByID(ctx, req.LinkageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("job request not found")
		}
		return nil, fmt.Errorf("error getting linkage: %w", err)
	}

	staff, err := s.authzService.RequireCollegeApprover(ctx, uid, link.CollegeID)
	if err != nil {
		return nil, err
	}

	status, ok := models.ParseLinkAction(req.Action)
	if !ok {
		return nil, apperrors.NewBadRequestError("action must be approve or reject")
	}

	updated, err := s.links.UpdateStatus(ctx, link.ID, status)
	if err != nil {
		s.logger.Error().Err(err).Int64("linkageId", link.ID).Msg("Failed to update linkage status")
		return nil, fmt.Errorf("error updating linkage status: %w", err)
	}

	job, err := s.jobs.GetByID(ctx, updated.JobID)
	if err != nil {
		return nil, fmt.Errorf("error getting linked job: %w", err)
	}

	s.cache.Invalidate(ctx, LinkageStatusInvalidation(job.CompanyID, updated.CollegeID)...)

	s.logger.Info().
		Int64("linkageId", updated.ID).
		Int64("staffId", staff.ID).
		Str("from", string(link.Status)).
		Str("to", string(updated.Status)).
		Msg("Linkage status changed")

	return &dto.LinkageResponse{Link: updated, Job: job}, nil
}

// ListForCollege lists the linkages of the caller's college. An empty status
// or "all" lists every state.
func (s *linkageServiceImpl) ListForCollege(ctx context.Context, uid string, status string) ([]models.LinkedJob, error) {
	staff, err := s.authzService.RequireCollegeStaff(ctx, uid)
	if err != nil {
		return nil, err
	}

	filter, ok := models.ParseLinkStatus(status)
	if !ok {
		return nil, apperrors.NewBadRequestError("status must be one of pending, approved, rejected or all")
	}

	keyStatus := string(filter)
	if filter == "" {
		keyStatus = "all"
	}

	return cache.Remember(ctx, s.cache, cache.CollegeJobsKey(staff.CollegeID, keyStatus), func(ctx context.Context) ([]models.LinkedJob, error) {
		return s.links.List(ctx, repositories.LinkageFilter{CollegeID: staff.CollegeID, Status: filter})
	})
}

// ListForCompany lists the caller's linkages in one state across all colleges.
func (s *linkageServiceImpl) ListForCompany(ctx context.Context, uid string, status models.LinkStatus) ([]models.LinkedJob, error) {
	company, err := s.authzService.RequireCompany(ctx, uid)
	if err != nil {
		return nil, err
	}

	return cache.Remember(ctx, s.cache, cache.CompanyLinkagesKey(company.ID, string(status)), func(ctx context.Context) ([]models.LinkedJob, error) {
		return s.links.List(ctx, repositories.LinkageFilter{CompanyID: company.ID, Status: status})
	})
}

// ListCompanyJobsAtCollege lists one company's linkages at the caller's college.
func (s *linkageServiceImpl) ListCompanyJobsAtCollege(ctx context.Context, uid string, companyID int64) ([]models.LinkedJob, error) {
	staff, err := s.authzService.RequireCollegeStaff(ctx, uid)
	if err != nil {
		return nil, err
	}

	return cache.Remember(ctx, s.cache, cache.CompanyJobsKey(companyID, staff.CollegeID), func(ctx context.Context) ([]models.LinkedJob, error) {
		return s.links.List(ctx, repositories.LinkageFilter{CompanyID: companyID, CollegeID: staff.CollegeID})
	})
}
