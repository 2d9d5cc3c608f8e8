package recipe

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// FlagStore reads the per-user recipe id sets used for flag overlays.
type FlagStore interface {
	FavoriteRecipeIDs(ctx context.Context, userID string) ([]int64, error)
	WatchedRecipeIDs(ctx context.Context, userID string) ([]int64, error)
}

// Store defines the interface for local recipe data operations.
type Store interface {
	FlagStore
	UserExists(ctx context.Context, userID string) (bool, error)
	MarkAsFavorite(ctx context.Context, userID string, recipeID int64) error
	MarkAsWatched(ctx context.Context, userID string, recipeID int64) error
	SaveUserRecipe(ctx context.Context, r *UserRecipe) error
	GetUserRecipes(ctx context.Context, userID string) ([]*UserRecipe, error)
	SaveFamilyRecipe(ctx context.Context, r *FamilyRecipe) error
	GetFamilyRecipes(ctx context.Context, userID string) ([]*FamilyRecipe, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database and applies pending migrations.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sqlx.DB) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// FavoriteRecipeIDs returns the ids of every recipe the user marked as favorite.
func (s *PostgresStore) FavoriteRecipeIDs(ctx context.Context, userID string) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, "SELECT api_recipe_id FROM favorite_recipes WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("failed to get favorite recipes: %w", err)
	}
	return ids, nil
}

// WatchedRecipeIDs returns the ids of every recipe the user has viewed.
func (s *PostgresStore) WatchedRecipeIDs(ctx context.Context, userID string) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, "SELECT api_recipe_id FROM watched_recipes WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("failed to get watched recipes: %w", err)
	}
	return ids, nil
}

// UserExists reports whether a user with the given id is registered.
func (s *PostgresStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return exists, nil
}

// MarkAsFavorite adds a recipe to the user's favorites. Marking twice is a no-op.
func (s *PostgresStore) MarkAsFavorite(ctx context.Context, userID string, recipeID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO favorite_recipes (user_id, api_recipe_id) VALUES ($1, $2) ON CONFLICT (user_id, api_recipe_id) DO NOTHING",
		userID,
		recipeID,
	)
	if err != nil {
		return fmt.Errorf("failed to save favorite recipe: %w", err)
	}
	return nil
}

// MarkAsWatched records that the user viewed a recipe.
func (s *PostgresStore) MarkAsWatched(ctx context.Context, userID string, recipeID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO watched_recipes (user_id, api_recipe_id) VALUES ($1, $2) ON CONFLICT (user_id, api_recipe_id) DO UPDATE SET watched_at = NOW()",
		userID,
		recipeID,
	)
	if err != nil {
		return fmt.Errorf("failed to save watched recipe: %w", err)
	}
	return nil
}

// SaveUserRecipe inserts a user-authored recipe and fills in its id and creation time.
func (s *PostgresStore) SaveUserRecipe(ctx context.Context, r *UserRecipe) error {
	ingredientsJSON, err := json.Marshal(r.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	stepsJSON, err := json.Marshal(r.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"INSERT INTO user_recipes (user_id, title, image, duration, vegan, vegetarian, gluten_free, ingredients, steps, servings) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at",
		r.UserID,
		r.Title,
		r.Image,
		r.Duration,
		r.Vegan,
		r.Vegetarian,
		r.GlutenFree,
		ingredientsJSON,
		stepsJSON,
		r.Servings,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user recipe: %w", err)
	}
	return nil
}

// GetUserRecipes returns the recipes authored by the user, newest first.
func (s *PostgresStore) GetUserRecipes(ctx context.Context, userID string) ([]*UserRecipe, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT id, user_id, title, image, duration, vegan, vegetarian, gluten_free, ingredients, steps, servings, created_at FROM user_recipes WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*UserRecipe{}
	for rows.Next() {
		var r UserRecipe
		var ingredientsJSON, stepsJSON []byte
		err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Title,
			&r.Image,
			&r.Duration,
			&r.Vegan,
			&r.Vegetarian,
			&r.GlutenFree,
			&ingredientsJSON,
			&stepsJSON,
			&r.Servings,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user recipe row: %w", err)
		}
		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		if err := json.Unmarshal(stepsJSON, &r.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
		recipes = append(recipes, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}

// SaveFamilyRecipe inserts a family recipe and fills in its id and creation time.
func (s *PostgresStore) SaveFamilyRecipe(ctx context.Context, r *FamilyRecipe) error {
	instructionsJSON, err := json.Marshal(r.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	ingredientsJSON, err := json.Marshal(r.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"INSERT INTO family_recipes (user_id, title, image, occasion, originator_name, instructions, ingredients) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at",
		r.UserID,
		r.Title,
		r.Image,
		r.Occasion,
		r.OriginatorName,
		instructionsJSON,
		ingredientsJSON,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save family recipe: %w", err)
	}
	return nil
}

// GetFamilyRecipes returns the family recipes added by the user, newest first.
func (s *PostgresStore) GetFamilyRecipes(ctx context.Context, userID string) ([]*FamilyRecipe, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT id, user_id, title, image, occasion, originator_name, instructions, ingredients, created_at FROM family_recipes WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*FamilyRecipe{}
	for rows.Next() {
		var r FamilyRecipe
		var instructionsJSON, ingredientsJSON []byte
		err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Title,
			&r.Image,
			&r.Occasion,
			&r.OriginatorName,
			&instructionsJSON,
			&ingredientsJSON,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family recipe row: %w", err)
		}
		if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
		}
		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		recipes = append(recipes, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}

var _ Store = (*PostgresStore)(nil)
