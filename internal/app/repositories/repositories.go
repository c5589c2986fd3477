package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/placementcell/pipeline/internal/db"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	ActorRepository      *ActorRepository
	JobRepository        *JobRepository
	LinkageRepository    *LinkageRepository
	RoundRepository      *RoundRepository
	EnrollmentRepository *EnrollmentRepository
	OfferRepository      *OfferRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		ActorRepository:      NewActorRepository(database),
		JobRepository:        NewJobRepository(database),
		LinkageRepository:    NewLinkageRepository(database),
		RoundRepository:      NewRoundRepository(database),
		EnrollmentRepository: NewEnrollmentRepository(database),
		OfferRepository:      NewOfferRepository(database),
	}
}
