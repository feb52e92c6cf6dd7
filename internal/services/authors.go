package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

type AuthorInput struct {
	FirstName string     `validate:"required"`
	LastName  string     `validate:"required"`
	Email     string     `validate:"required,email,contains=."`
	BirthDate *time.Time `validate:"omitempty"`
}

func CreateAuthor(db *sqlx.DB, in AuthorInput) (models.Author, error) {
	if err := checkStruct(in); err != nil {
		return models.Author{}, err
	}
	author := models.Author{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO authors (id, first_name, last_name, email, birth_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, author.ID, author.FirstName, author.LastName, author.Email, author.BirthDate, author.CreatedAt)
	if err != nil {
		return models.Author{}, mapError(err)
	}
	return author, nil
}

func GetAuthor(db *sqlx.DB, id string) (models.Author, error) {
	var author models.Author
	err := db.Get(&author, `
SELECT id, first_name, last_name, email, birth_date, created_at
FROM authors
WHERE id = $1
`, id)
	if err != nil {
		return models.Author{}, mapError(err)
	}
	return author, nil
}

func GetAuthorByEmail(db *sqlx.DB, email string) (models.Author, error) {
	var author models.Author
	err := db.Get(&author, `
SELECT id, first_name, last_name, email, birth_date, created_at
FROM authors
WHERE email = $1
`, email)
	if err != nil {
		return models.Author{}, mapError(err)
	}
	return author, nil
}

func ListAuthors(db *sqlx.DB) ([]models.Author, error) {
	authors := []models.Author{}
	err := db.Select(&authors, `
SELECT id, first_name, last_name, email, birth_date, created_at
FROM authors
ORDER BY last_name ASC, first_name ASC
`)
	return authors, err
}

func UpdateAuthor(db *sqlx.DB, id string, in AuthorInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE authors
SET first_name = $2, last_name = $3, email = $4, birth_date = $5
WHERE id = $1
`, id, in.FirstName, in.LastName, in.Email, in.BirthDate)
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

// DeleteAuthor removes an author; the engine cascades the author's
// book_authors rows.
func DeleteAuthor(db *sqlx.DB, id string) error {
	res, err := db.Exec(`DELETE FROM authors WHERE id = $1`, id)
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
