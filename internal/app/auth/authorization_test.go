package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
)

type fakeActors map[string]*models.Actor

func (f fakeActors) ResolveActor(_ context.Context, uid string) (*models.Actor, error) {
	if a, ok := f[uid]; ok {
		return a, nil
	}
	return nil, apperrors.ErrUnknownActor
}

type fakeJobs map[int64]*models.Job

func (f fakeJobs) GetByID(_ context.Context, id int64) (*models.Job, error) {
	if j, ok := f[id]; ok {
		return j, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func newTestAuthz() *AuthorizationService {
	actors := fakeActors{
		"acme":    {Role: models.RoleCompany, Company: &models.Company{ID: 1, Name: "Acme"}},
		"globex":  {Role: models.RoleCompany, Company: &models.Company{ID: 2, Name: "Globex"}},
		"tpo":     {Role: models.RoleCollege, Staff: &models.CollegeStaff{ID: 5, CollegeID: 10, Role: models.StaffRoleTPO}},
		"faculty": {Role: models.RoleCollege, Staff: &models.CollegeStaff{ID: 6, CollegeID: 10, Role: models.StaffRoleFaculty}},
		"stud":    {Role: models.RoleStudent, Student: &models.Student{ID: 9, CollegeID: 10}},
	}
	jobs := fakeJobs{100: {ID: 100, CompanyID: 1}}
	return NewAuthorizationService(actors, jobs)
}

func TestRoleChecks(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	if _, err := authz.RequireCompany(ctx, "acme"); err != nil {
		t.Fatalf("company: %v", err)
	}
	if _, err := authz.RequireCompany(ctx, "stud"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("student as company: %v", err)
	}
	if _, err := authz.RequireStudent(ctx, "acme"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("company as student: %v", err)
	}
	if _, err := authz.RequireStudent(ctx, "nobody"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("unknown uid: %v", err)
	}
}

func TestRequireCollegeApprover(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	if _, err := authz.RequireCollegeApprover(ctx, "tpo", 10); err != nil {
		t.Fatalf("tpo at own college: %v", err)
	}
	if _, err := authz.RequireCollegeApprover(ctx, "tpo", 11); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("tpo at other college: %v", err)
	}
	if _, err := authz.RequireCollegeApprover(ctx, "faculty", 10); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("faculty may not approve: %v", err)
	}
}

func TestRequireJobOwner(t *testing.T) {
	authz := newTestAuthz()
	ctx := context.Background()

	if _, job, err := authz.RequireJobOwner(ctx, "acme", 100); err != nil || job.ID != 100 {
		t.Fatalf("owner: %v", err)
	}
	if _, _, err := authz.RequireJobOwner(ctx, "globex", 100); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("other company: %v", err)
	}
	if _, _, err := authz.RequireJobOwner(ctx, "acme", 404); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("missing job: %v", err)
	}
}
