// Package services holds the recruitment pipeline's business rules. Each
// service authorizes the caller by token uid, delegates persistence to a
// store interface and evicts its declared cache keys after every write.
package services

import (
	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/repositories"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

// Services holds all the service instances
type Services struct {
	JobService     JobService
	LinkageService LinkageService
	RoundService   RoundService
	OfferService   OfferService
}

// NewServices wires every service onto the Postgres repositories
func NewServices(repos *repositories.Repositories, responseCache *cache.Cache, authzService *auth.AuthorizationService, logger zerolog.Logger) *Services {
	return &Services{
		JobService: NewJobService(repos.JobRepository, repos.LinkageRepository, repos.ActorRepository,
			responseCache, authzService, logger),
		LinkageService: NewLinkageService(repos.LinkageRepository, repos.JobRepository,
			responseCache, authzService, logger),
		RoundService: NewRoundService(repos.JobRepository, repos.LinkageRepository, repos.RoundRepository,
			repos.EnrollmentRepository, responseCache, authzService, logger),
		OfferService: NewOfferService(repos.OfferRepository, repos.RoundRepository, repos.EnrollmentRepository,
			repos.ActorRepository, responseCache, authzService, logger),
	}
}
