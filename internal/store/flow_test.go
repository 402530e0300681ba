package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkhalife/sufra/internal/model"
)

// TestCatalogFlow walks a meal through its whole life: created by an
// admin, commented on by a customer, renamed, then deleted with its
// comments cascading away.
func TestCatalogFlow(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	admin, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "chef",
		Email:        "chef@example.com",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
	})
	require.NoError(t, err)

	customer, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "diner",
		Email:        "diner@example.com",
		PasswordHash: "hash",
		Role:         model.RoleCustomer,
	})
	require.NoError(t, err)
	assert.NotEqual(t, admin.ID, customer.ID)

	meal, err := q.CreateMeal(ctx, CreateMealParams{
		Name:        "Kibbeh",
		Ingredients: "bulgur, minced lamb, onion",
		Allergens:   "gluten",
		Cuisine:     "levantine",
	})
	require.NoError(t, err)

	_, err = q.CreateComment(ctx, CreateCommentParams{
		DishID:   meal.ID,
		AuthorID: customer.ID,
		Content:  "Crispy outside, tender inside",
	})
	require.NoError(t, err)

	comments, err := q.ListMealComments(ctx, meal.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "diner", comments[0].Username)

	err = q.UpdateMeal(ctx, UpdateMealParams{
		Name:        "Kibbeh Maqliyeh",
		Ingredients: meal.Ingredients,
		Allergens:   meal.Allergens,
		Cuisine:     meal.Cuisine,
		ID:          meal.ID,
	})
	require.NoError(t, err)

	renamed, err := q.GetMealByID(ctx, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kibbeh Maqliyeh", renamed.Name)

	// Comments stay attached across the rename
	byAuthor, err := q.ListCommentsByAuthor(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Kibbeh Maqliyeh", byAuthor[0].DishName)

	require.NoError(t, q.DeleteMeal(ctx, meal.ID))

	_, err = q.GetMealByID(ctx, meal.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	comments, err = q.ListMealComments(ctx, meal.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
