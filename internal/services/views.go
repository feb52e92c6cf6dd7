package services

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

func BookDetails(db *sqlx.DB) ([]models.BookDetails, error) {
	rows := []models.BookDetails{}
	err := db.Select(&rows, `
SELECT book_id, title, isbn, publication_year, category, authors, total_copies, available_copies
FROM book_details
ORDER BY title ASC
`)
	return rows, err
}

func BookDetailsByTitle(db *sqlx.DB, title string) (models.BookDetails, error) {
	var row models.BookDetails
	err := db.Get(&row, `
SELECT book_id, title, isbn, publication_year, category, authors, total_copies, available_copies
FROM book_details
WHERE title = $1
`, strings.TrimSpace(title))
	if err != nil {
		return models.BookDetails{}, mapError(err)
	}
	return row, nil
}

func ActiveLoans(db *sqlx.DB) ([]models.ActiveLoan, error) {
	rows := []models.ActiveLoan{}
	err := db.Select(&rows, `
SELECT loan_id, member_name, member_email, book_title, loan_date, due_date, days_overdue
FROM active_loans
ORDER BY due_date ASC
`)
	return rows, err
}
