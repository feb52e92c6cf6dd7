package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

type BookInput struct {
	Title           string `validate:"required"`
	ISBN            string `validate:"required"`
	PublicationYear *int   `validate:"omitempty,gt=0"`
	TotalCopies     int    `validate:"min=1"`
	AvailableCopies *int   `validate:"omitempty,min=0"`
	CategoryID      string `validate:"required"`
}

func (in BookInput) available() (int, error) {
	if in.AvailableCopies == nil {
		return in.TotalCopies, nil
	}
	if *in.AvailableCopies > in.TotalCopies {
		return 0, fmt.Errorf("%w: available_copies exceeds total_copies", ErrInvalid)
	}
	return *in.AvailableCopies, nil
}

func CreateBook(db *sqlx.DB, in BookInput) (models.Book, error) {
	if err := checkStruct(in); err != nil {
		return models.Book{}, err
	}
	available, err := in.available()
	if err != nil {
		return models.Book{}, err
	}
	book := models.Book{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		ISBN:            strings.TrimSpace(in.ISBN),
		PublicationYear: in.PublicationYear,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: available,
		CategoryID:      in.CategoryID,
		CreatedAt:       time.Now().UTC(),
	}
	_, err = db.Exec(`
INSERT INTO books (id, title, isbn, publication_year, total_copies, available_copies, category_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, book.ID, book.Title, book.ISBN, book.PublicationYear, book.TotalCopies, book.AvailableCopies, book.CategoryID, book.CreatedAt)
	if err != nil {
		return models.Book{}, mapError(err)
	}
	return book, nil
}

func GetBook(db *sqlx.DB, id string) (models.Book, error) {
	var book models.Book
	err := db.Get(&book, `
SELECT id, title, isbn, publication_year, total_copies, available_copies, category_id, created_at
FROM books
WHERE id = $1
`, id)
	if err != nil {
		return models.Book{}, mapError(err)
	}
	return book, nil
}

func GetBookByISBN(db *sqlx.DB, isbn string) (models.Book, error) {
	var book models.Book
	err := db.Get(&book, `
SELECT id, title, isbn, publication_year, total_copies, available_copies, category_id, created_at
FROM books
WHERE isbn = $1
`, strings.TrimSpace(isbn))
	if err != nil {
		return models.Book{}, mapError(err)
	}
	return book, nil
}

// ListBooks returns every book, optionally filtered by a case insensitive
// title fragment (served by idx_books_title for exact prefixes).
func ListBooks(db *sqlx.DB, title string) ([]models.Book, error) {
	args := []interface{}{}
	where := ""
	if value := strings.TrimSpace(title); value != "" {
		where = "WHERE title ILIKE $1"
		args = append(args, "%"+value+"%")
	}
	books := []models.Book{}
	err := db.Select(&books, `
SELECT id, title, isbn, publication_year, total_copies, available_copies, category_id, created_at
FROM books
`+where+`
ORDER BY title ASC
`, args...)
	return books, err
}

func UpdateBook(db *sqlx.DB, id string, in BookInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	if in.AvailableCopies != nil && *in.AvailableCopies > in.TotalCopies {
		return fmt.Errorf("%w: available_copies exceeds total_copies", ErrInvalid)
	}
	res, err := db.Exec(`
UPDATE books
SET title = $2, isbn = $3, publication_year = $4, total_copies = $5,
    available_copies = COALESCE($6, available_copies), category_id = $7
WHERE id = $1
`, id, strings.TrimSpace(in.Title), strings.TrimSpace(in.ISBN), in.PublicationYear, in.TotalCopies, in.AvailableCopies, in.CategoryID)
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

// DeleteBook removes a book. Loans referencing it keep it alive under
// fk_loans_book; its book_authors rows cascade away with it.
func DeleteBook(db *sqlx.DB, id string) error {
	res, err := db.Exec(`DELETE FROM books WHERE id = $1`, id)
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

// AssignAuthor links an author to a book. An empty role defaults to
// Primary Author; assigning the same pair again just updates the role.
func AssignAuthor(db *sqlx.DB, bookID, authorID, role string) error {
	if role == "" {
		role = RolePrimaryAuthor
	}
	if !validAuthorRole(role) {
		return fmt.Errorf("%w: unknown author role %q", ErrInvalid, role)
	}
	_, err := db.Exec(`
INSERT INTO book_authors (book_id, author_id, role, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (book_id, author_id) DO UPDATE SET role = EXCLUDED.role
`, bookID, authorID, role, time.Now().UTC())
	return mapError(err)
}

func RemoveAuthor(db *sqlx.DB, bookID, authorID string) error {
	res, err := db.Exec(`DELETE FROM book_authors WHERE book_id = $1 AND author_id = $2`, bookID, authorID)
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

func BookAuthors(db *sqlx.DB, bookID string) ([]models.BookAuthor, error) {
	links := []models.BookAuthor{}
	err := db.Select(&links, `
SELECT book_id, author_id, role, created_at
FROM book_authors
WHERE book_id = $1
ORDER BY created_at ASC
`, bookID)
	return links, err
}
