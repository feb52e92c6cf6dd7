package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	db := setupTestDB(t)

	description := "Novels and literary fiction"
	category, err := CreateCategory(db, "Fiction", &description)
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Fiction", category.Name)

	fetched, err := GetCategory(db, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.Name, fetched.Name)
	require.NotNil(t, fetched.Description)
	assert.Equal(t, description, *fetched.Description)
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	db := setupTestDB(t)

	_, err := CreateCategory(db, "   ", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	db := setupTestDB(t)

	testCategory(t, db, "Fiction")
	_, err := CreateCategory(db, "Fiction", nil)
	require.ErrorIs(t, err, ErrDuplicate)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "uq_categories_name", constraintErr.Constraint)
}

func TestListCategoriesOrdersByName(t *testing.T) {
	db := setupTestDB(t)

	testCategory(t, db, "Science Fiction")
	testCategory(t, db, "Biography")
	testCategory(t, db, "Fiction")

	categories, err := ListCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Biography", categories[0].Name)
	assert.Equal(t, "Fiction", categories[1].Name)
	assert.Equal(t, "Science Fiction", categories[2].Name)
}

func TestUpdateCategory(t *testing.T) {
	db := setupTestDB(t)

	category := testCategory(t, db, "Fiction")
	description := "Updated"
	require.NoError(t, UpdateCategory(db, category.ID, "Literary Fiction", &description))

	fetched, err := GetCategory(db, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Literary Fiction", fetched.Name)

	err = UpdateCategory(db, "missing-id", "Whatever", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategory(t *testing.T) {
	db := setupTestDB(t)

	category := testCategory(t, db, "Fiction")
	require.NoError(t, DeleteCategory(db, category.ID))

	_, err := GetCategory(db, category.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, DeleteCategory(db, category.ID), ErrNotFound)
}

func TestDeleteCategoryWithBooksRestricted(t *testing.T) {
	db := setupTestDB(t)

	category := testCategory(t, db, "Fiction")
	testBook(t, db, "1984", "978-0451524935", 4, category.ID)

	err := DeleteCategory(db, category.ID)
	require.ErrorIs(t, err, ErrRestricted)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "fk_books_category", constraintErr.Constraint)
}
