package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	RolePrimaryAuthor = "Primary Author"
	RoleCoAuthor      = "Co-Author"
	RoleEditor        = "Editor"

	MemberActive    = "Active"
	MemberSuspended = "Suspended"
	MemberExpired   = "Expired"

	LoanActive   = "Active"
	LoanReturned = "Returned"
	LoanOverdue  = "Overdue"
)

var authorRoles = map[string]bool{
	RolePrimaryAuthor: true,
	RoleCoAuthor:      true,
	RoleEditor:        true,
}

var memberStatuses = map[string]bool{
	MemberActive:    true,
	MemberSuspended: true,
	MemberExpired:   true,
}

var loanStatuses = map[string]bool{
	LoanActive:   true,
	LoanReturned: true,
	LoanOverdue:  true,
}

var validate = validator.New()

// checkStruct runs the validator tags of an input struct and folds the first
// field failure into ErrInvalid. The database constraints remain the source
// of truth; this only rejects obviously bad input before a round trip.
func checkStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fmt.Errorf("%w: %s fails %q", ErrInvalid, fields[0].Field(), fields[0].Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

func NormalizeRequired(value, message string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalid, message)
	}
	return trimmed, nil
}

func validAuthorRole(role string) bool {
	return authorRoles[role]
}

func validMemberStatus(status string) bool {
	return memberStatuses[status]
}

func validLoanStatus(status string) bool {
	return loanStatuses[status]
}
