package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestValidAuthorRole(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.String().Draw(t, "value")
		want := value == RolePrimaryAuthor || value == RoleCoAuthor || value == RoleEditor
		if validAuthorRole(value) != want {
			t.Fatalf("validAuthorRole(%q) = %v, want %v", value, !want, want)
		}
	})
}

func TestValidMemberStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.String().Draw(t, "value")
		want := value == MemberActive || value == MemberSuspended || value == MemberExpired
		if validMemberStatus(value) != want {
			t.Fatalf("validMemberStatus(%q) = %v, want %v", value, !want, want)
		}
	})
}

func TestValidLoanStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.String().Draw(t, "value")
		want := value == LoanActive || value == LoanReturned || value == LoanOverdue
		if validLoanStatus(value) != want {
			t.Fatalf("validLoanStatus(%q) = %v, want %v", value, !want, want)
		}
	})
}

func TestNormalizeRequired(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.String().Draw(t, "value")
		trimmed, err := NormalizeRequired(value, "value is required")
		if strings.TrimSpace(value) == "" {
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("NormalizeRequired(%q) error = %v, want ErrInvalid", value, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("NormalizeRequired(%q) unexpected error: %v", value, err)
		}
		if trimmed != strings.TrimSpace(value) {
			t.Fatalf("NormalizeRequired(%q) = %q", value, trimmed)
		}
	})
}

func TestCheckStruct(t *testing.T) {
	err := checkStruct(AuthorInput{LastName: "Orwell", Email: "george.orwell@example.com"})
	assert.ErrorIs(t, err, ErrInvalid)

	err = checkStruct(AuthorInput{FirstName: "George", LastName: "Orwell", Email: "george.orwell@example.com"})
	assert.NoError(t, err)
}
