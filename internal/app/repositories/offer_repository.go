package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/db"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/dberrors"
)

const offerColumns = "id, job_id, student_id, package, company_name, status, offer_number, created_at, updated_at"

// OfferRepository handles database operations for offers
type OfferRepository struct {
	db *db.PostgresDB
}

// NewOfferRepository creates a new OfferRepository
func NewOfferRepository(database *db.PostgresDB) *OfferRepository {
	return &OfferRepository{db: database}
}

func scanOffer(row pgx.Row) (*models.Offer, error) {
	o := &models.Offer{}
	err := row.Scan(&o.ID, &o.JobID, &o.StudentID, &o.Package, &o.CompanyName,
		&o.Status, &o.OfferNumber, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateCapped inserts offer unless the student already holds limit offers
// (apperrors.ErrOfferLimitReached) or already has one for the job
// (apperrors.ErrResourceAlreadyExists). The per-student advisory lock
// serializes concurrent creations; the unique constraints back it up.
func (r *OfferRepository) CreateCapped(ctx context.Context, offer *models.Offer, limit int) (*models.Offer, error) {
	var created *models.Offer

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, offer.StudentID); err != nil {
			return fmt.Errorf("failed to lock student offers: %w", err)
		}

		var count int
		var hasForJob bool
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*), COALESCE(BOOL_OR(job_id = $2), FALSE)
			FROM offers WHERE student_id = $1`, offer.StudentID, offer.JobID).Scan(&count, &hasForJob)
		if err != nil {
			return fmt.Errorf("failed to count offers: %w", err)
		}
		if count >= limit {
			return apperrors.ErrOfferLimitReached
		}
		if hasForJob {
			return apperrors.ErrResourceAlreadyExists
		}

		sql, args, err := psql.Insert("offers").
			Columns("job_id", "student_id", "package", "company_name", "status", "offer_number").
			Values(offer.JobID, offer.StudentID, offer.Package, offer.CompanyName, models.OfferStatusOffered, count+1).
			Suffix("RETURNING " + offerColumns).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build offer insert: %w", err)
		}

		created, err = scanOffer(tx.QueryRow(ctx, sql, args...))
		switch {
		case dberrors.IsDuplicateConstraintError(err, "offers_job_student_key"):
			return apperrors.ErrResourceAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "offers_student_number_key"):
			return apperrors.ErrOfferLimitReached
		case err != nil:
			return fmt.Errorf("failed to insert offer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CountByStudent counts a student's offers in any status.
func (r *OfferRepository) CountByStudent(ctx context.Context, studentID int64) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE student_id = $1`, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting offers: %w", err)
	}
	return count, nil
}

// GetByJobAndStudent retrieves the offer for a (job, student) pair.
func (r *OfferRepository) GetByJobAndStudent(ctx context.Context, jobID, studentID int64) (*models.Offer, error) {
	return r.getOne(ctx, squirrel.Eq{"job_id": jobID, "student_id": studentID})
}

// GetByID retrieves an offer by ID
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *OfferRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Offer, error) {
	sql, args, err := psql.Select(offerColumns).From("offers").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build offer query: %w", err)
	}
	o, err := scanOffer(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving offer: %w", err)
	}
	return o, nil
}

// UpdateStatus overwrites an offer's status and returns the updated row.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id int64, status models.OfferStatus) (*models.Offer, error) {
	sql, args, err := psql.Update("offers").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + offerColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build offer update: %w", err)
	}
	o, err := scanOffer(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error updating offer status: %w", err)
	}
	return o, nil
}

// ListByJob retrieves a job's offers, optionally filtered by status.
func (r *OfferRepository) ListByJob(ctx context.Context, jobID int64, status models.OfferStatus) ([]models.Offer, error) {
	q := psql.Select(offerColumns).From("offers").Where(squirrel.Eq{"job_id": jobID}).OrderBy("id")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	return r.list(ctx, q)
}

// ListByStudent retrieves a student's offers.
func (r *OfferRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Offer, error) {
	return r.list(ctx, psql.Select(offerColumns).From("offers").Where(squirrel.Eq{"student_id": studentID}).OrderBy("offer_number"))
}

func (r *OfferRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.Offer, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build offer list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying offers: %w", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}
