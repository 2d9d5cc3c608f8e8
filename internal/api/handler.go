package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"recipevault/internal/recipe"
)

// Aggregator defines the recipe read operations the handlers serve.
type Aggregator interface {
	GetRecipeDetail(ctx context.Context, id int64, userID string) (*recipe.Recipe, error)
	GetRecipesPreview(ctx context.Context, ids []int64) ([]*recipe.Recipe, error)
	SearchRecipes(ctx context.Context, criteria recipe.Criteria, userID string) ([]*recipe.Recipe, error)
	GetRandomRecipes(ctx context.Context, count int) ([]*recipe.Recipe, error)
}

// RecipeStore defines the interface for local recipe data operations.
type RecipeStore interface {
	Ping(ctx context.Context) error
	UserExists(ctx context.Context, userID string) (bool, error)
	FavoriteRecipeIDs(ctx context.Context, userID string) ([]int64, error)
	MarkAsFavorite(ctx context.Context, userID string, recipeID int64) error
	MarkAsWatched(ctx context.Context, userID string, recipeID int64) error
	SaveUserRecipe(ctx context.Context, r *recipe.UserRecipe) error
	GetUserRecipes(ctx context.Context, userID string) ([]*recipe.UserRecipe, error)
	SaveFamilyRecipe(ctx context.Context, r *recipe.FamilyRecipe) error
	GetFamilyRecipes(ctx context.Context, userID string) ([]*recipe.FamilyRecipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Recipes     Aggregator
	RecipeStore RecipeStore
	Timeout     time.Duration
	Log         *slog.Logger
}

// NewHandler creates a new Handler. Every request runs under timeout.
func NewHandler(recipes Aggregator, recipeStore RecipeStore, timeout time.Duration, log *slog.Logger) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Recipes: recipes, RecipeStore: recipeStore, Timeout: timeout, Log: log}
}

type createRecipeRequest struct {
	Title       string   `json:"title" binding:"required"`
	Image       string   `json:"image"`
	Duration    int      `json:"duration"`
	Vegan       bool     `json:"vegan"`
	Vegetarian  bool     `json:"vegetarian"`
	GlutenFree  bool     `json:"glutenFree"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Servings    int      `json:"servings"`
}

type favoriteRequest struct {
	RecipeID int64 `json:"recipeId" binding:"required"`
}

type familyRecipeRequest struct {
	Title          string   `json:"title"`
	Image          string   `json:"image"`
	Occasion       string   `json:"occasion"`
	OriginatorName string   `json:"originator_name"`
	Instructions   []string `json:"instructions"`
	Ingredients    []string `json:"ingredients"`
}

// GetRandomRecipes handles requests for a list of random recipes.
func (h *Handler) GetRandomRecipes(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Recipes.GetRandomRecipes(ctx, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// SearchRecipes handles upstream searches. A known user gets flagged results.
func (h *Handler) SearchRecipes(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	criteria := recipe.Criteria{
		Query:       c.Query("query"),
		Cuisine:     c.Query("cuisine"),
		Diet:        c.Query("diet"),
		Intolerance: c.Query("intolerance"),
		Limit:       limit,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Recipes.SearchRecipes(ctx, criteria, UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe handles requests for the full details of one recipe and records
// the view for a known user.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("recipeId"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Invalid recipe id")
		return
	}
	userID := UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.Recipes.GetRecipeDetail(ctx, id, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if userID != "" {
		if err := h.RecipeStore.MarkAsWatched(ctx, userID, id); err != nil {
			h.Log.Warn("failed to record recipe view", "user_id", userID, "recipe_id", id, "error", err)
		}
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe stores a recipe authored by the logged-in user.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid recipe: %s", err.Error()))
		return
	}

	image := req.Image
	if image != "" {
		resized, err := resizeImage(image)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid image: %s", err.Error()))
			return
		}
		image = resized
	}

	r := &recipe.UserRecipe{
		UserID:      UserID(c),
		Title:       req.Title,
		Image:       image,
		Duration:    req.Duration,
		Vegan:       req.Vegan,
		Vegetarian:  req.Vegetarian,
		GlutenFree:  req.GlutenFree,
		Ingredients: nonNil(req.Ingredients),
		Steps:       nonNil(req.Steps),
		Servings:    req.Servings,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.RecipeStore.SaveUserRecipe(ctx, r); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recipe created successfully", "success": true, "id": r.ID})
}

// AddFavorite saves a recipe in the favorites list of the logged-in user.
func (h *Handler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID <= 0 {
		c.String(http.StatusBadRequest, "recipeId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.RecipeStore.MarkAsFavorite(ctx, UserID(c), req.RecipeID); err != nil {
		h.writeError(c, err)
		return
	}
	c.String(http.StatusOK, "The Recipe successfully saved as favorite")
}

// GetFavorites returns previews of the favorite recipes of the logged-in user.
func (h *Handler) GetFavorites(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	ids, err := h.RecipeStore.FavoriteRecipeIDs(ctx, UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	recipes, err := h.Recipes.GetRecipesPreview(ctx, ids)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetUserRecipes returns the recipes created by the logged-in user.
func (h *Handler) GetUserRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.RecipeStore.GetUserRecipes(ctx, UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetFamilyRecipes returns the family recipes of the logged-in user.
func (h *Handler) GetFamilyRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.RecipeStore.GetFamilyRecipes(ctx, UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// AddFamilyRecipe stores a family recipe for the logged-in user.
func (h *Handler) AddFamilyRecipe(c *gin.Context) {
	var req familyRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid family recipe: %s", err.Error()))
		return
	}
	if req.Title == "" || req.Image == "" || req.Occasion == "" || req.OriginatorName == "" || len(req.Instructions) == 0 || len(req.Ingredients) == 0 {
		c.String(http.StatusBadRequest, "Missing required fields")
		return
	}

	r := &recipe.FamilyRecipe{
		UserID:         UserID(c),
		Title:          req.Title,
		Image:          req.Image,
		Occasion:       req.Occasion,
		OriginatorName: req.OriginatorName,
		Instructions:   req.Instructions,
		Ingredients:    req.Ingredients,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.RecipeStore.SaveFamilyRecipe(ctx, r); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Family recipe added successfully", "success": true, "id": r.ID})
}

// Health reports whether the backing store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.RecipeStore.Ping(ctx); err != nil {
		h.Log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// writeError maps err to a status code and writes it.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		c.String(http.StatusNotFound, "Recipe not found")
	case errors.Is(err, context.DeadlineExceeded):
		c.String(http.StatusRequestTimeout, "Request timed out")
	default:
		h.Log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", RequestID(c),
			"error", err,
		)
		c.String(http.StatusInternalServerError, fmt.Sprintf("internal error: %s", err.Error()))
	}
}

// queryLimit parses the optional limit parameter. It writes a 400 and
// returns false when the value is not a number.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.String(http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
