package services

import "github.com/jmoiron/sqlx"

// MarkOverdue flips every Active loan whose due date has passed to Overdue
// and reports how many rows changed. Running it twice in a row is harmless;
// the second sweep matches nothing.
func MarkOverdue(db *sqlx.DB) (int64, error) {
	res, err := db.Exec(`
UPDATE loans
SET status = $1
WHERE status = $2 AND due_date < CURRENT_DATE
`, LoanOverdue, LoanActive)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
