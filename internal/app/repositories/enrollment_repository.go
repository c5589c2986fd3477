package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/db"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/dberrors"
)

const enrollmentColumns = "id, job_id, student_id, round_id, created_at, updated_at"

// EnrollmentRepository handles database operations for round_enrollments
type EnrollmentRepository struct {
	db *db.PostgresDB
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(database *db.PostgresDB) *EnrollmentRepository {
	return &EnrollmentRepository{db: database}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	if err := row.Scan(&e.ID, &e.JobID, &e.StudentID, &e.RoundID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts an enrollment. A second enrollment for the same (job, student)
// fails with apperrors.ErrResourceAlreadyExists.
func (r *EnrollmentRepository) Create(ctx context.Context, jobID, studentID, roundID int64) (*models.Enrollment, error) {
	sql, args, err := psql.Insert("round_enrollments").
		Columns("job_id", "student_id", "round_id").
		Values(jobID, studentID, roundID).
		Suffix("RETURNING " + enrollmentColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment insert: %w", err)
	}

	e, err := scanEnrollment(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "round_enrollments_job_student_key") {
			return nil, apperrors.ErrResourceAlreadyExists
		}
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}
	return e, nil
}

// GetByJobAndStudent retrieves the student's current rung in a job's ladder.
func (r *EnrollmentRepository) GetByJobAndStudent(ctx context.Context, jobID, studentID int64) (*models.Enrollment, error) {
	e, err := scanEnrollment(r.db.Pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM round_enrollments WHERE job_id = $1 AND student_id = $2`,
		jobID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return e, nil
}

// Advance moves the enrollment from one round to another in a single
// conditional update. If the student is no longer at fromRoundID the update
// matches nothing and apperrors.ErrStaleEnrollment is returned.
func (r *EnrollmentRepository) Advance(ctx context.Context, jobID, studentID, fromRoundID, toRoundID int64) (*models.Enrollment, error) {
	e, err := scanEnrollment(r.db.Pool.QueryRow(ctx, `
		UPDATE round_enrollments
		SET round_id = $4, updated_at = NOW()
		WHERE job_id = $1 AND student_id = $2 AND round_id = $3
		RETURNING `+enrollmentColumns,
		jobID, studentID, fromRoundID, toRoundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStaleEnrollment
		}
		return nil, fmt.Errorf("error advancing enrollment: %w", err)
	}
	return e, nil
}

// ListByRound retrieves the students currently sitting in a round.
func (r *EnrollmentRepository) ListByRound(ctx context.Context, roundID int64) ([]models.Enrollment, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+enrollmentColumns+` FROM round_enrollments WHERE round_id = $1 ORDER BY student_id`, roundID)
	if err != nil {
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	out := []models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
