package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/db"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
)

const studentSelect = `
	SELECT s.id, s.auth_uid, s.college_id, s.name, COALESCE(d.name, ''), s.passing_year,
		s.dead_backlogs, s.live_backlogs, s.semester_grades
	FROM students s
	LEFT JOIN departments d ON d.id = s.department_id`

// ActorRepository reads the profile tables owned by the profile service.
type ActorRepository struct {
	db *db.PostgresDB
}

// NewActorRepository creates a new ActorRepository
func NewActorRepository(database *db.PostgresDB) *ActorRepository {
	return &ActorRepository{db: database}
}

// ResolveActor maps a token uid onto a company, college staff member or
// student. Unknown uids yield apperrors.ErrUnknownActor.
func (r *ActorRepository) ResolveActor(ctx context.Context, uid string) (*models.Actor, error) {
	company := &models.Company{}
	err := r.db.Pool.QueryRow(ctx, `SELECT id, auth_uid, name FROM companies WHERE auth_uid = $1`, uid).
		Scan(&company.ID, &company.AuthUID, &company.Name)
	if err == nil {
		return &models.Actor{UID: uid, Role: models.RoleCompany, Company: company}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error resolving company actor: %w", err)
	}

	staff := &models.CollegeStaff{}
	err = r.db.Pool.QueryRow(ctx, `SELECT id, auth_uid, college_id, name, role FROM college_staff WHERE auth_uid = $1`, uid).
		Scan(&staff.ID, &staff.AuthUID, &staff.CollegeID, &staff.Name, &staff.Role)
	if err == nil {
		return &models.Actor{UID: uid, Role: models.RoleCollege, Staff: staff}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error resolving college actor: %w", err)
	}

	student, err := scanStudent(r.db.Pool.QueryRow(ctx, studentSelect+` WHERE s.auth_uid = $1`, uid))
	if err == nil {
		return &models.Actor{UID: uid, Role: models.RoleStudent, Student: student}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error resolving student actor: %w", err)
	}

	return nil, apperrors.ErrUnknownActor
}

// GetStudent retrieves a student's academic snapshot by ID
func (r *ActorRepository) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(r.db.Pool.QueryRow(ctx, studentSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// GetCompany retrieves a company by ID
func (r *ActorRepository) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	company := &models.Company{}
	err := r.db.Pool.QueryRow(ctx, `SELECT id, auth_uid, name FROM companies WHERE id = $1`, id).
		Scan(&company.ID, &company.AuthUID, &company.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving company: %w", err)
	}
	return company, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(&s.ID, &s.AuthUID, &s.CollegeID, &s.Name, &s.Department, &s.PassingYear,
		&s.DeadBacklogs, &s.LiveBacklogs, &s.SemesterGrades)
	if err != nil {
		return nil, err
	}
	return s, nil
}
