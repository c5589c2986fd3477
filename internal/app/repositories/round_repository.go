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

const roundColumns = "id, job_id, round_number, round_type, is_next_round, is_terminal, created_at"

// RoundRepository handles database operations for rounds
type RoundRepository struct {
	db *db.PostgresDB
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(database *db.PostgresDB) *RoundRepository {
	return &RoundRepository{db: database}
}

func scanRound(row pgx.Row) (*models.Round, error) {
	round := &models.Round{}
	err := row.Scan(&round.ID, &round.JobID, &round.RoundNumber, &round.RoundType,
		&round.IsNextRound, &round.IsTerminal, &round.CreatedAt)
	if err != nil {
		return nil, err
	}
	return round, nil
}

// Append adds the next round to a job's ladder. The job row is locked for the
// duration so concurrent appends serialize; the previous top round loses its
// terminal flag and becomes promotable.
func (r *RoundRepository) Append(ctx context.Context, jobID int64, roundType string) (*models.Round, error) {
	var created *models.Round

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var lockedID int64
		if err := tx.QueryRow(ctx, `SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, jobID).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrResourceNotFound
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}

		var top int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(round_number), 0) FROM rounds WHERE job_id = $1`, jobID).Scan(&top); err != nil {
			return fmt.Errorf("failed to read round ladder: %w", err)
		}

		// Clear the old terminal flag first; the partial unique index allows one per job.
		if top > 0 {
			_, err := tx.Exec(ctx, `
				UPDATE rounds SET is_next_round = TRUE, is_terminal = FALSE
				WHERE job_id = $1 AND round_number = $2`, jobID, top)
			if err != nil {
				return fmt.Errorf("failed to open previous round: %w", err)
			}
		}

		sql, args, err := psql.Insert("rounds").
			Columns("job_id", "round_number", "round_type", "is_next_round", "is_terminal").
			Values(jobID, top+1, roundType, false, true).
			Suffix("RETURNING " + roundColumns).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build round insert: %w", err)
		}

		created, err = scanRound(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return fmt.Errorf("failed to insert round: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a round by ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByNumber retrieves a job's round by its position in the ladder.
func (r *RoundRepository) GetByNumber(ctx context.Context, jobID int64, number int) (*models.Round, error) {
	return r.getOne(ctx, squirrel.Eq{"job_id": jobID, "round_number": number})
}

func (r *RoundRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Round, error) {
	sql, args, err := psql.Select(roundColumns).From("rounds").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build round query: %w", err)
	}
	round, err := scanRound(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving round: %w", err)
	}
	return round, nil
}

// ListByJob retrieves a job's rounds in ladder order.
func (r *RoundRepository) ListByJob(ctx context.Context, jobID int64) ([]models.Round, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+roundColumns+` FROM rounds WHERE job_id = $1 ORDER BY round_number`, jobID)
	if err != nil {
		return nil, fmt.Errorf("error querying rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.Round{}
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning round: %w", err)
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}
