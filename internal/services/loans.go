package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

type LoanInput struct {
	BookID   string     `validate:"required"`
	MemberID string     `validate:"required"`
	LoanDate *time.Time `validate:"omitempty"`
	DueDate  time.Time  `validate:"required"`
	Status   string     `validate:"omitempty"`
}

// CreateLoan records a loan row as given, without touching copy counts.
// Checkout is the bookkeeping front door; this one exists for backfills
// and tests.
func CreateLoan(db *sqlx.DB, in LoanInput) (models.Loan, error) {
	if err := checkStruct(in); err != nil {
		return models.Loan{}, err
	}
	status := in.Status
	if status == "" {
		status = LoanActive
	}
	if !validLoanStatus(status) {
		return models.Loan{}, fmt.Errorf("%w: unknown loan status %q", ErrInvalid, status)
	}
	now := time.Now().UTC()
	loanDate := now
	if in.LoanDate != nil {
		loanDate = *in.LoanDate
	}
	if !in.DueDate.After(loanDate) {
		return models.Loan{}, fmt.Errorf("%w: due_date must fall after loan_date", ErrInvalid)
	}
	loan := models.Loan{
		ID:        uuid.NewString(),
		BookID:    in.BookID,
		MemberID:  in.MemberID,
		LoanDate:  loanDate,
		DueDate:   in.DueDate,
		Status:    status,
		CreatedAt: now,
	}
	_, err := db.Exec(`
INSERT INTO loans (id, book_id, member_id, loan_date, due_date, fine_amount, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, loan.ID, loan.BookID, loan.MemberID, loan.LoanDate, loan.DueDate, loan.FineAmount, loan.Status, loan.CreatedAt)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	return loan, nil
}

func GetLoan(db *sqlx.DB, id string) (models.Loan, error) {
	var loan models.Loan
	err := db.Get(&loan, `
SELECT id, book_id, member_id, loan_date, due_date, return_date, fine_amount, status, created_at
FROM loans
WHERE id = $1
`, id)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	return loan, nil
}

func ListLoans(db *sqlx.DB, status, memberID string) ([]models.Loan, error) {
	args := []interface{}{}
	where := ""
	if status != "" {
		if !validLoanStatus(status) {
			return nil, fmt.Errorf("%w: unknown loan status %q", ErrInvalid, status)
		}
		where = "WHERE status = $1"
		args = append(args, status)
	}
	if memberID != "" {
		if where == "" {
			where = "WHERE member_id = $1"
		} else {
			where += " AND member_id = $2"
		}
		args = append(args, memberID)
	}
	loans := []models.Loan{}
	err := db.Select(&loans, `
SELECT id, book_id, member_id, loan_date, due_date, return_date, fine_amount, status, created_at
FROM loans
`+where+`
ORDER BY due_date ASC, created_at ASC
`, args...)
	return loans, err
}

// SetLoanFine stores an externally decided fine. Nothing here computes
// one; chk_loans_fine rejects negative amounts.
func SetLoanFine(db *sqlx.DB, id string, amount float64) error {
	res, err := db.Exec(`UPDATE loans SET fine_amount = $2 WHERE id = $1`, id, amount)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Checkout lends one copy of a book to a member: it locks the book row,
// requires a free copy and an Active member, decrements available_copies
// and opens a loan due periodDays from today, all in one transaction.
func Checkout(db *sqlx.DB, bookID, memberID string, periodDays int) (models.Loan, error) {
	if periodDays <= 0 {
		return models.Loan{}, fmt.Errorf("%w: loan period must be at least one day", ErrInvalid)
	}
	tx, err := db.Beginx()
	if err != nil {
		return models.Loan{}, err
	}
	defer tx.Rollback()

	var book struct {
		ID              string `db:"id"`
		Title           string `db:"title"`
		AvailableCopies int    `db:"available_copies"`
	}
	err = tx.Get(&book, `
SELECT id, title, available_copies
FROM books
WHERE id = $1
FOR UPDATE
`, bookID)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	if book.AvailableCopies < 1 {
		return models.Loan{}, fmt.Errorf("%w: no copies of %q left", ErrUnavailable, book.Title)
	}

	var memberStatus string
	err = tx.Get(&memberStatus, `SELECT status FROM members WHERE id = $1`, memberID)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	if memberStatus != MemberActive {
		return models.Loan{}, fmt.Errorf("%w: member is %s", ErrMemberInactive, memberStatus)
	}

	_, err = tx.Exec(`UPDATE books SET available_copies = available_copies - 1 WHERE id = $1`, bookID)
	if err != nil {
		return models.Loan{}, mapError(err)
	}

	now := time.Now().UTC()
	loan := models.Loan{
		ID:        uuid.NewString(),
		BookID:    bookID,
		MemberID:  memberID,
		LoanDate:  now,
		DueDate:   now.AddDate(0, 0, periodDays),
		Status:    LoanActive,
		CreatedAt: now,
	}
	_, err = tx.Exec(`
INSERT INTO loans (id, book_id, member_id, loan_date, due_date, fine_amount, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, loan.ID, loan.BookID, loan.MemberID, loan.LoanDate, loan.DueDate, loan.FineAmount, loan.Status, loan.CreatedAt)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return models.Loan{}, err
	}
	return loan, nil
}

// Return closes a loan: stamps today's return_date, flips the status to
// Returned and hands the copy back to the book. Overdue loans return the
// same way; only an already Returned loan is refused.
func Return(db *sqlx.DB, loanID string) (models.Loan, error) {
	tx, err := db.Beginx()
	if err != nil {
		return models.Loan{}, err
	}
	defer tx.Rollback()

	var loan models.Loan
	err = tx.Get(&loan, `
SELECT id, book_id, member_id, loan_date, due_date, return_date, fine_amount, status, created_at
FROM loans
WHERE id = $1
FOR UPDATE
`, loanID)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	if loan.Status == LoanReturned {
		return models.Loan{}, fmt.Errorf("%w: loan %s is already returned", ErrInvalid, loanID)
	}

	returned := time.Now().UTC()
	_, err = tx.Exec(`UPDATE loans SET return_date = $2, status = $3 WHERE id = $1`,
		loan.ID, returned, LoanReturned)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	_, err = tx.Exec(`UPDATE books SET available_copies = available_copies + 1 WHERE id = $1`, loan.BookID)
	if err != nil {
		return models.Loan{}, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return models.Loan{}, err
	}
	loan.ReturnDate = &returned
	loan.Status = LoanReturned
	return loan, nil
}
