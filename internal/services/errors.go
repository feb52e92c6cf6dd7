package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalid        = errors.New("invalid input")
	ErrDuplicate      = errors.New("duplicate value")
	ErrRestricted     = errors.New("row is still referenced")
	ErrCheckViolation = errors.New("check constraint violated")
	ErrUnavailable    = errors.New("no copies available")
	ErrMemberInactive = errors.New("member is not active")
)

// ConstraintError reports which named constraint the engine rejected a
// statement on. It unwraps to one of the sentinel errors above.
type ConstraintError struct {
	Constraint string
	Table      string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("%s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Constraint, e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// mapError translates driver errors into the package vocabulary. Constraint
// violations keep the constraint name the engine reported; anything
// unrecognised passes through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConstraintError{Constraint: pgErr.ConstraintName, Table: pgErr.TableName, Err: ErrDuplicate}
		case "23503":
			return &ConstraintError{Constraint: pgErr.ConstraintName, Table: pgErr.TableName, Err: ErrRestricted}
		case "23514", "23502":
			return &ConstraintError{Constraint: pgErr.ConstraintName, Table: pgErr.TableName, Err: ErrCheckViolation}
		}
	}
	return err
}
