package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

// OfferService defines the interface for the offer ledger
type OfferService interface {
	CreateOffer(ctx context.Context, uid string, req *dto.CreateOfferRequest) (*models.Offer, error)
	SetOfferStatus(ctx context.Context, uid string, req *dto.OfferStatusRequest) (*models.Offer, error)
	ListOffersByJob(ctx context.Context, uid string, jobID int64, status models.OfferStatus) ([]models.Offer, error)
	ListStudentOffers(ctx context.Context, uid string, studentID int64) ([]models.Offer, error)
	GetOffer(ctx context.Context, uid string, offerID int64) (*models.Offer, error)
}

// offerServiceImpl implements OfferService
type offerServiceImpl struct {
	offers       OfferStore
	rounds       RoundStore
	enrollments  EnrollmentStore
	profiles     ProfileStore
	cache        *cache.Cache
	authzService *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewOfferService creates a new OfferService
func NewOfferService(
	offers OfferStore,
	rounds RoundStore,
	enrollments EnrollmentStore,
	profiles ProfileStore,
	responseCache *cache.Cache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) OfferService {
	return &offerServiceImpl{
		offers:       offers,
		rounds:       rounds,
		enrollments:  enrollments,
		profiles:     profiles,
		cache:        responseCache,
		authzService: authzService,
		logger:       logger.With().Str("service", "offer").Logger(),
	}
}

// CreateOffer issues an offer for one of the caller's jobs. The checks here
// give precise messages; CreateCapped re-checks the cap under a per-student
// lock and is the one that counts.
func (s *offerServiceImpl) CreateOffer(ctx context.Context, uid string, req *dto.CreateOfferRequest) (*models.Offer, error) {
	company, job, err := s.authzService.RequireJobOwner(ctx, uid, req.JobID)
	if err != nil {
		return nil, err
	}

	student, err := s.profiles.GetStudent(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	count, err := s.offers.CountByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting offers: %w", err)
	}
	if count >= models.MaxOffersPerStudent {
		return nil, apperrors.NewConflictError("offer limit reached")
	}

	if _, err := s.offers.GetByJobAndStudent(ctx, job.ID, student.ID); err == nil {
		return nil, apperrors.NewConflictError("offer already exists")
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error checking existing offer: %w", err)
	}

	if err := s.requireFinalRound(ctx, job.ID, student.ID); err != nil {
		return nil, err
	}

	offer, err := s.offers.CreateCapped(ctx, &models.Offer{
		JobID:       job.ID,
		StudentID:   student.ID,
		Package:     job.Salary,
		CompanyName: company.Name,
	}, models.MaxOffersPerStudent)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOfferLimitReached):
			s.logger.Warn().Int64("studentId", student.ID).Msg("Offer cap reached under lock")
			return nil, apperrors.NewConflictError("offer limit reached")
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			return nil, apperrors.NewConflictError("offer already exists")
		}
		s.logger.Error().Err(err).Int64("jobId", job.ID).Int64("studentId", student.ID).Msg("Failed to create offer")
		return nil, fmt.Errorf("error creating offer: %w", err)
	}

	s.cache.Invalidate(ctx, OfferCreatedInvalidation(offer)...)

	s.logger.Info().
		Int64("offerId", offer.ID).
		Int64("jobId", offer.JobID).
		Int64("studentId", offer.StudentID).
		Int("offerNumber", offer.OfferNumber).
		Msg("Offer created")
	return offer, nil
}

// requireFinalRound checks the student sits in the job's terminal round.
// Jobs without a ladder accept offers directly.
func (s *offerServiceImpl) requireFinalRound(ctx context.Context, jobID, studentID int64) error {
	rounds, err := s.rounds.ListByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("error listing rounds: %w", err)
	}
	if len(rounds) == 0 {
		return nil
	}

	enrollment, err := s.enrollments.GetByJobAndStudent(ctx, jobID, studentID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("error getting enrollment: %w", err)
	}
	if enrollment != nil {
		for _, round := range rounds {
			if round.ID == enrollment.RoundID && round.IsTerminal {
				return nil
			}
		}
	}
	return apperrors.NewConflictError("student has not completed the interview rounds")
}

// SetOfferStatus records the owning student's response to an offer
func (s *offerServiceImpl) SetOfferStatus(ctx context.Context, uid string, req *dto.OfferStatusRequest) (*models.Offer, error) {
	student, err := s.authzService.RequireStudent(ctx, uid)
	if err != nil {
		return nil, err
	}

	status := models.OfferStatus(req.Status)
	if !status.Valid() {
		return nil, apperrors.NewBadRequestError("status must be one of offered, accepted or rejected")
	}

	offer, err := s.offers.GetByID(ctx, req.OfferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("offer not found")
		}
		return nil, fmt.Errorf("error getting offer: %w", err)
	}
	if offer.StudentID != student.ID {
		return nil, apperrors.NewForbiddenError("offer belongs to another student")
	}

	updated, err := s.offers.UpdateStatus(ctx, offer.ID, status)
	if err != nil {
		s.logger.Error().Err(err).Int64("offerId", offer.ID).Msg("Failed to update offer status")
		return nil, fmt.Errorf("error updating offer status: %w", err)
	}

	s.cache.Invalidate(ctx, OfferStatusInvalidation(updated)...)

	s.logger.Info().Int64("offerId", updated.ID).Str("status", string(updated.Status)).Msg("Offer status changed")
	return updated, nil
}

// ListOffersByJob lists one of the caller's jobs' offers in a given status
func (s *offerServiceImpl) ListOffersByJob(ctx context.Context, uid string, jobID int64, status models.OfferStatus) ([]models.Offer, error) {
	if _, _, err := s.authzService.RequireJobOwner(ctx, uid, jobID); err != nil {
		return nil, err
	}

	return cache.Remember(ctx, s.cache, cache.JobOffersKey(jobID, string(status)), func(ctx context.Context) ([]models.Offer, error) {
		return s.offers.ListByJob(ctx, jobID, status)
	})
}

// ListStudentOffers lists a student's offers. Students only see their own;
// a studentID of 0 means the caller.
func (s *offerServiceImpl) ListStudentOffers(ctx context.Context, uid string, studentID int64) ([]models.Offer, error) {
	actor, err := s.authzService.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleStudent:
		if studentID == 0 {
			studentID = actor.Student.ID
		}
		if studentID != actor.Student.ID {
			return nil, apperrors.NewForbiddenError("students can only view their own offers")
		}
	case models.RoleCompany:
		if studentID == 0 {
			return nil, apperrors.NewValidationError("studentId is required", []string{"studentId"})
		}
		if _, err := s.profiles.GetStudent(ctx, studentID); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, apperrors.NewResourceNotFoundError("student not found")
			}
			return nil, fmt.Errorf("error getting student: %w", err)
		}
	default:
		return nil, apperrors.NewForbiddenError("only students and companies can view offers")
	}

	return cache.Remember(ctx, s.cache, cache.StudentOffersKey(studentID), func(ctx context.Context) ([]models.Offer, error) {
		return s.offers.ListByStudent(ctx, studentID)
	})
}

// GetOffer retrieves an offer by ID. Students may only read their own.
func (s *offerServiceImpl) GetOffer(ctx context.Context, uid string, offerID int64) (*models.Offer, error) {
	actor, err := s.authzService.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}

	offer, err := cache.Remember(ctx, s.cache, cache.OfferKey(offerID), func(ctx context.Context) (*models.Offer, error) {
		return s.offers.GetByID(ctx, offerID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("offer not found")
		}
		return nil, fmt.Errorf("error getting offer: %w", err)
	}

	if actor.Role == models.RoleStudent && offer.StudentID != actor.Student.ID {
		return nil, apperrors.NewForbiddenError("offer belongs to another student")
	}
	return offer, nil
}
