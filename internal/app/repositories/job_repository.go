package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/db"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
)

var jobColumns = []string{
	"j.id", "j.company_id", "j.title", "j.job_type", "j.location", "j.salary", "j.description",
	"j.requirements", "j.timing", "j.posted_date", "j.max_dead_backlogs", "j.max_live_backlogs",
	"j.min_cgpi", "j.years_of_experience", "j.branches_allowed", "j.passing_years",
	"j.created_at", "j.updated_at",
}

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *db.PostgresDB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(database *db.PostgresDB) *JobRepository {
	return &JobRepository{db: database}
}

func jobScanTargets(job *models.Job) []interface{} {
	return []interface{}{
		&job.ID, &job.CompanyID, &job.Title, &job.JobType, &job.Location, &job.Salary, &job.Description,
		&job.Requirements, &job.Timing, &job.PostedDate, &job.MaxDeadBacklogs, &job.MaxLiveBacklogs,
		&job.MinCGPI, &job.YearsOfExperience, &job.BranchesAllowed, &job.PassingYears,
		&job.CreatedAt, &job.UpdatedAt,
	}
}

// CreateWithLinks upserts the job on its identity key and links it to every
// college in collegeIDs that is not linked yet, in one transaction. Existing
// jobs are reused unchanged. When the job already existed and every college
// was linked, the transaction rolls back with apperrors.ErrResourceAlreadyExists.
func (r *JobRepository) CreateWithLinks(ctx context.Context, job *models.Job, collegeIDs []int64) (*models.JobLinkResult, error) {
	result := &models.JobLinkResult{}

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		missing, err := missingColleges(ctx, tx, collegeIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("college(s) not found: %v", missing))
		}

		sql, args, err := psql.Insert("jobs AS j").
			Columns("company_id", "title", "job_type", "location", "salary", "description", "requirements",
				"timing", "posted_date", "max_dead_backlogs", "max_live_backlogs", "min_cgpi",
				"years_of_experience", "branches_allowed", "passing_years").
			Values(job.CompanyID, job.Title, job.JobType, job.Location, job.Salary, job.Description, job.Requirements,
				job.Timing, job.PostedDate, job.MaxDeadBacklogs, job.MaxLiveBacklogs, job.MinCGPI,
				job.YearsOfExperience, job.BranchesAllowed, job.PassingYears).
			// The no-op update makes RETURNING yield the existing row; xmax = 0 only for a fresh insert.
			Suffix("ON CONFLICT ON CONSTRAINT jobs_identity_key DO UPDATE SET updated_at = j.updated_at RETURNING " +
				strings.Join(jobColumns, ", ") + ", (j.xmax = 0)").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build job upsert: %w", err)
		}

		stored := &models.Job{}
		if err := tx.QueryRow(ctx, sql, args...).Scan(append(jobScanTargets(stored), &result.JobCreated)...); err != nil {
			return fmt.Errorf("failed to upsert job: %w", err)
		}
		result.Job = stored

		for _, collegeID := range collegeIDs {
			var linkID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO college_job_links (job_id, college_id, status)
				VALUES ($1, $2, $3)
				ON CONFLICT ON CONSTRAINT college_job_links_job_college_key DO NOTHING
				RETURNING id`, stored.ID, collegeID, models.LinkStatusPending).Scan(&linkID)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				result.AlreadyLinked = append(result.AlreadyLinked, collegeID)
			case err != nil:
				return fmt.Errorf("failed to link job %d to college %d: %w", stored.ID, collegeID, err)
			default:
				result.LinkedColleges = append(result.LinkedColleges, collegeID)
			}
		}
		if !result.JobCreated && len(result.LinkedColleges) == 0 {
			return apperrors.ErrResourceAlreadyExists
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func missingColleges(ctx context.Context, tx pgx.Tx, collegeIDs []int64) ([]int64, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM colleges WHERE id = ANY($1)`, collegeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up colleges: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to read colleges: %w", err)
	}

	seen := make(map[int64]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []int64
	for _, id := range collegeIDs {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	sql, args, err := psql.Select(jobColumns...).From("jobs j").Where("j.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job query: %w", err)
	}

	job := &models.Job{}
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(jobScanTargets(job)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving job: %w", err)
	}
	return job, nil
}

// ListByCompany retrieves every job a company has posted, newest first.
func (r *JobRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.Job, error) {
	sql, args, err := psql.Select(jobColumns...).From("jobs j").
		Where("j.company_id = ?", companyID).
		OrderBy("j.posted_date DESC", "j.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job list query: %w", err)
	}
	return r.queryJobs(ctx, sql, args...)
}

func (r *JobRepository) queryJobs(ctx context.Context, sql string, args ...interface{}) ([]models.Job, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(jobScanTargets(&job)...); err != nil {
			return nil, fmt.Errorf("error scanning job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
