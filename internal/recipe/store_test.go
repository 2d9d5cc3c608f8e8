package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestFavoriteRecipeIDs(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT api_recipe_id FROM favorite_recipes WHERE user_id = $1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"api_recipe_id"}).AddRow(int64(101)).AddRow(int64(202)))

	ids, err := store.FavoriteRecipeIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 202}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchedRecipeIDs_Empty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT api_recipe_id FROM watched_recipes WHERE user_id = $1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"api_recipe_id"}))

	ids, err := store.WatchedRecipeIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRecipeIDs_Error(t *testing.T) {
	store, mock := newMockStore(t)
	dbErr := errors.New("connection refused")
	mock.ExpectQuery("SELECT api_recipe_id FROM favorite_recipes WHERE user_id = $1").
		WithArgs("u1").
		WillReturnError(dbErr)

	_, err := store.FavoriteRecipeIDs(context.Background(), "u1")
	assert.ErrorIs(t, err, dbErr)
}

func TestUserExists(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := store.UserExists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UserExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsFavoriteAndWatched(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO favorite_recipes (user_id, api_recipe_id) VALUES ($1, $2) ON CONFLICT (user_id, api_recipe_id) DO NOTHING").
		WithArgs("u1", int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO watched_recipes (user_id, api_recipe_id) VALUES ($1, $2) ON CONFLICT (user_id, api_recipe_id) DO UPDATE SET watched_at = NOW()").
		WithArgs("u1", int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.MarkAsFavorite(context.Background(), "u1", 101))
	require.NoError(t, store.MarkAsWatched(context.Background(), "u1", 101))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUserRecipe(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO user_recipes (user_id, title, image, duration, vegan, vegetarian, gluten_free, ingredients, steps, servings) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at").
		WithArgs("u1", "Soup", "", 30, true, true, false, []byte(`["1 l water"]`), []byte(`["Boil"]`), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), created))

	r := &UserRecipe{
		UserID:      "u1",
		Title:       "Soup",
		Duration:    30,
		Vegan:       true,
		Vegetarian:  true,
		Ingredients: []string{"1 l water"},
		Steps:       []string{"Boil"},
		Servings:    2,
	}
	require.NoError(t, store.SaveUserRecipe(context.Background(), r))
	assert.Equal(t, int64(5), r.ID)
	assert.Equal(t, created, r.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserRecipes(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "image", "duration", "vegan", "vegetarian", "gluten_free", "ingredients", "steps", "servings", "created_at"}).
		AddRow(int64(2), "u1", "Salad", "", 10, true, true, true, []byte(`["lettuce"]`), []byte(`["Toss"]`), 1, created).
		AddRow(int64(1), "u1", "Soup", "", 30, false, true, false, []byte(`[]`), []byte(`["Boil"]`), 4, created)
	mock.ExpectQuery("SELECT id, user_id, title, image, duration, vegan, vegetarian, gluten_free, ingredients, steps, servings, created_at FROM user_recipes WHERE user_id = $1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(rows)

	recipes, err := store.GetUserRecipes(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Salad", recipes[0].Title)
	assert.Equal(t, []string{"lettuce"}, recipes[0].Ingredients)
	assert.Equal(t, []string{}, recipes[1].Ingredients)
	assert.Equal(t, 4, recipes[1].Servings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAndGetFamilyRecipes(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO family_recipes (user_id, title, image, occasion, originator_name, instructions, ingredients) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at").
		WithArgs("u1", "Cholent", "", "Shabbat", "Grandma", []byte(`["Cook overnight"]`), []byte(`["beans"]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))
	mock.ExpectQuery("SELECT id, user_id, title, image, occasion, originator_name, instructions, ingredients, created_at FROM family_recipes WHERE user_id = $1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "image", "occasion", "originator_name", "instructions", "ingredients", "created_at"}).
			AddRow(int64(3), "u1", "Cholent", "", "Shabbat", "Grandma", []byte(`["Cook overnight"]`), []byte(`["beans"]`), created))

	r := &FamilyRecipe{
		UserID:         "u1",
		Title:          "Cholent",
		Occasion:       "Shabbat",
		OriginatorName: "Grandma",
		Instructions:   []string{"Cook overnight"},
		Ingredients:    []string{"beans"},
	}
	require.NoError(t, store.SaveFamilyRecipe(context.Background(), r))
	assert.Equal(t, int64(3), r.ID)

	recipes, err := store.GetFamilyRecipes(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Grandma", recipes[0].OriginatorName)
	assert.Equal(t, []string{"Cook overnight"}, recipes[0].Instructions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFamilyRecipes_BadJSON(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, user_id, title, image, occasion, originator_name, instructions, ingredients, created_at FROM family_recipes WHERE user_id = $1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "image", "occasion", "originator_name", "instructions", "ingredients", "created_at"}).
			AddRow(int64(3), "u1", "Cholent", "", "", "Grandma", []byte(`not json`), []byte(`[]`), time.Now()))

	_, err := store.GetFamilyRecipes(context.Background(), "u1")
	assert.Error(t, err)
}
