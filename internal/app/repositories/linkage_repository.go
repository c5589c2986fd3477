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
)

// LinkageRepository handles database operations for college_job_links
type LinkageRepository struct {
	db *db.PostgresDB
}

// NewLinkageRepository creates a new LinkageRepository
func NewLinkageRepository(database *db.PostgresDB) *LinkageRepository {
	return &LinkageRepository{db: database}
}

// LinkageFilter narrows linkage listings. Zero values mean "any".
type LinkageFilter struct {
	JobID     int64
	CollegeID int64
	CompanyID int64
	Status    models.LinkStatus
}

// GetByID retrieves a linkage by ID
func (r *LinkageRepository) GetByID(ctx context.Context, id int64) (*models.CollegeJobLink, error) {
	link := &models.CollegeJobLink{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, job_id, college_id, status, created_at, updated_at
		FROM college_job_links
		WHERE id = $1`, id).
		Scan(&link.ID, &link.JobID, &link.CollegeID, &link.Status, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving linkage: %w", err)
	}
	return link, nil
}

// UpdateStatus overwrites a linkage's status and returns the updated row.
func (r *LinkageRepository) UpdateStatus(ctx context.Context, id int64, status models.LinkStatus) (*models.CollegeJobLink, error) {
	sql, args, err := psql.Update("college_job_links").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, job_id, college_id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build linkage update: %w", err)
	}

	link := &models.CollegeJobLink{}
	err = r.db.Pool.QueryRow(ctx, sql, args...).
		Scan(&link.ID, &link.JobID, &link.CollegeID, &link.Status, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error updating linkage status: %w", err)
	}
	return link, nil
}

// List returns linkages joined with their job, company and college.
func (r *LinkageRepository) List(ctx context.Context, filter LinkageFilter) ([]models.LinkedJob, error) {
	cols := append([]string{
		"l.id", "l.job_id", "l.college_id", "l.status", "l.created_at", "l.updated_at",
		"c.name", "col.name",
	}, jobColumns...)

	q := psql.Select(cols...).
		From("college_job_links l").
		Join("jobs j ON j.id = l.job_id").
		Join("companies c ON c.id = j.company_id").
		Join("colleges col ON col.id = l.college_id").
		OrderBy("l.created_at DESC", "l.id DESC")

	if filter.JobID > 0 {
		q = q.Where(squirrel.Eq{"l.job_id": filter.JobID})
	}
	if filter.CollegeID > 0 {
		q = q.Where(squirrel.Eq{"l.college_id": filter.CollegeID})
	}
	if filter.CompanyID > 0 {
		q = q.Where(squirrel.Eq{"j.company_id": filter.CompanyID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"l.status": filter.Status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build linkage list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying linkages: %w", err)
	}
	defer rows.Close()

	out := []models.LinkedJob{}
	for rows.Next() {
		var lj models.LinkedJob
		targets := append([]interface{}{
			&lj.Link.ID, &lj.Link.JobID, &lj.Link.CollegeID, &lj.Link.Status, &lj.Link.CreatedAt, &lj.Link.UpdatedAt,
			&lj.CompanyName, &lj.CollegeName,
		}, jobScanTargets(&lj.Job)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("error scanning linkage: %w", err)
		}
		out = append(out, lj)
	}
	return out, rows.Err()
}
