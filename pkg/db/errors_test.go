package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := errors.New(`ERROR: duplicate key value violates unique constraint "uq_drawers_single_open" (SQLSTATE 23505)`)

	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("generic duplicate key error should match")
	}
	if !IsUniqueViolation(pgErr, "uq_drawers_single_open") {
		t.Fatal("named constraint should match")
	}
	if IsUniqueViolation(pgErr, "uq_other") {
		t.Fatal("different constraint name should not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}

	sqliteErr := errors.New("UNIQUE constraint failed: drawers.status")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("sqlite unique violation should match")
	}
}
