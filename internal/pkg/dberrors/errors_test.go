package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "offers_job_student_key"}
	wrapped := fmt.Errorf("insert offer: %w", pgErr)

	if !IsDuplicateConstraintError(wrapped, "offers_job_student_key") {
		t.Fatal("expected wrapped unique violation to match")
	}
	if IsDuplicateConstraintError(wrapped, "offers_student_number_key") {
		t.Fatal("constraint name must match")
	}
	if !IsUniqueViolation(wrapped) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error is not a unique violation")
	}
}

func TestIsPostgresError(t *testing.T) {
	if !IsPostgresError(fmt.Errorf("update: %w", &pgconn.PgError{Code: "40001"})) {
		t.Fatal("expected wrapped server error to match")
	}
	if IsPostgresError(errors.New("dial tcp: connection refused")) {
		t.Fatal("client-side error is not a server error")
	}
}
