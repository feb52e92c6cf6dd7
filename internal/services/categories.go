package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

func CreateCategory(db *sqlx.DB, name string, description *string) (models.Category, error) {
	name, err := NormalizeRequired(name, "category name is required")
	if err != nil {
		return models.Category{}, err
	}
	category := models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = db.Exec(`
INSERT INTO categories (id, name, description, created_at)
VALUES ($1,$2,$3,$4)
`, category.ID, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		return models.Category{}, mapError(err)
	}
	return category, nil
}

func GetCategory(db *sqlx.DB, id string) (models.Category, error) {
	var category models.Category
	err := db.Get(&category, `SELECT id, name, description, created_at FROM categories WHERE id = $1`, id)
	if err != nil {
		return models.Category{}, mapError(err)
	}
	return category, nil
}

func GetCategoryByName(db *sqlx.DB, name string) (models.Category, error) {
	var category models.Category
	err := db.Get(&category, `SELECT id, name, description, created_at FROM categories WHERE name = $1`, name)
	if err != nil {
		return models.Category{}, mapError(err)
	}
	return category, nil
}

func ListCategories(db *sqlx.DB) ([]models.Category, error) {
	categories := []models.Category{}
	err := db.Select(&categories, `SELECT id, name, description, created_at FROM categories ORDER BY name ASC`)
	return categories, err
}

func UpdateCategory(db *sqlx.DB, id, name string, description *string) error {
	name, err := NormalizeRequired(name, "category name is required")
	if err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE categories
SET name = $2, description = $3
WHERE id = $1
`, id, name, description)
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

// DeleteCategory removes a category. A category still referenced by a book
// is rejected by the engine under fk_books_category.
func DeleteCategory(db *sqlx.DB, id string) error {
	res, err := db.Exec(`DELETE FROM categories WHERE id = $1`, id)
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
