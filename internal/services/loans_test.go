package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarydb/internal/models"
)

func loanFixture(t *testing.T, db *sqlx.DB) (models.Book, models.Member) {
	t.Helper()
	category := testCategory(t, db, "Fiction")
	book := testBook(t, db, "1984", "978-0451524935", 2, category.ID)
	member := testMember(t, db, "Alice", "Johnson", "alice.johnson@example.com")
	return book, member
}

func TestCreateLoanRejectsDueBeforeLoan(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loanDate := time.Now().UTC()
	_, err := CreateLoan(db, LoanInput{
		BookID:   book.ID,
		MemberID: member.ID,
		LoanDate: &loanDate,
		DueDate:  loanDate.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoanDueDateCheckedByEngine(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	_, err := db.Exec(`
INSERT INTO loans (id, book_id, member_id, loan_date, due_date, fine_amount, status, created_at)
VALUES ($1,$2,$3,CURRENT_DATE,CURRENT_DATE,0,'Active',$4)
`, uuid.NewString(), book.ID, member.ID, time.Now().UTC())
	err = mapError(err)
	require.ErrorIs(t, err, ErrCheckViolation)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "chk_loans_due", constraintErr.Constraint)
}

func TestCheckout(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loan, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)
	assert.Equal(t, LoanActive, loan.Status)
	assert.Equal(t, loan.LoanDate.AddDate(0, 0, 14), loan.DueDate)

	fetched, err := GetBook(db, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.AvailableCopies)
}

func TestCheckoutRunsOutOfCopies(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)
	other := testMember(t, db, "Brian", "Chen", "brian.chen@example.com")

	_, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)
	_, err = Checkout(db, book.ID, other.ID, 14)
	require.NoError(t, err)

	_, err = Checkout(db, book.ID, member.ID, 14)
	assert.ErrorIs(t, err, ErrUnavailable)

	fetched, err := GetBook(db, book.ID)
	require.NoError(t, err)
	assert.Zero(t, fetched.AvailableCopies)
}

func TestCheckoutRejectsInactiveMember(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)
	require.NoError(t, SetMemberStatus(db, member.ID, MemberSuspended))

	_, err := Checkout(db, book.ID, member.ID, 14)
	assert.ErrorIs(t, err, ErrMemberInactive)

	// The transaction rolled back, so no copy was taken.
	fetched, err := GetBook(db, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.AvailableCopies)

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM loans`))
	assert.Zero(t, count)
}

func TestCheckoutUnknownBook(t *testing.T) {
	db := setupTestDB(t)

	_, err := Checkout(db, uuid.NewString(), uuid.NewString(), 14)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturn(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loan, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)

	returned, err := Return(db, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	fetched, err := GetBook(db, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.AvailableCopies)
}

func TestReturnTwice(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loan, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)

	_, err = Return(db, loan.ID)
	require.NoError(t, err)
	_, err = Return(db, loan.ID)
	assert.ErrorIs(t, err, ErrInvalid)

	// Only one copy came back.
	fetched, err := GetBook(db, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.AvailableCopies)
}

func TestReturnOverdueLoan(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loan, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE loans SET status = $2 WHERE id = $1`, loan.ID, LoanOverdue)
	require.NoError(t, err)

	returned, err := Return(db, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, LoanReturned, returned.Status)
}

func TestSetLoanFine(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	loan, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)

	require.NoError(t, SetLoanFine(db, loan.ID, 3.50))
	fetched, err := GetLoan(db, loan.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.50, fetched.FineAmount, 0.001)

	err = SetLoanFine(db, loan.ID, -1)
	require.ErrorIs(t, err, ErrCheckViolation)
	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "chk_loans_fine", constraintErr.Constraint)

	assert.ErrorIs(t, SetLoanFine(db, "missing-id", 1), ErrNotFound)
}

func TestListLoansFilters(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)
	other := testMember(t, db, "Brian", "Chen", "brian.chen@example.com")

	first, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)
	second, err := Checkout(db, book.ID, other.ID, 7)
	require.NoError(t, err)
	_, err = Return(db, second.ID)
	require.NoError(t, err)

	active, err := ListLoans(db, LoanActive, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	mine, err := ListLoans(db, "", other.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)

	both, err := ListLoans(db, LoanReturned, other.ID)
	require.NoError(t, err)
	require.Len(t, both, 1)

	_, err = ListLoans(db, "Lost", "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteBookWithLoanRestricted(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	_, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)

	err = DeleteBook(db, book.ID)
	require.ErrorIs(t, err, ErrRestricted)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "fk_loans_book", constraintErr.Constraint)
}

func TestDeleteMemberWithLoanRestricted(t *testing.T) {
	db := setupTestDB(t)
	book, member := loanFixture(t, db)

	_, err := Checkout(db, book.ID, member.ID, 14)
	require.NoError(t, err)

	err = DeleteMember(db, member.ID)
	require.ErrorIs(t, err, ErrRestricted)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "fk_loans_member", constraintErr.Constraint)
}
