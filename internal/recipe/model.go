package recipe

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Recipe is the canonical merged record for one upstream recipe.
// Favorite and Viewed are only set on per-request copies that carry user context.
type Recipe struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Duration    *int     `json:"duration,omitempty"`
	Image       string   `json:"image,omitempty"`
	Popularity  int      `json:"popularity"`
	Vegan       bool     `json:"vegan"`
	Vegetarian  bool     `json:"vegetarian"`
	GlutenFree  bool     `json:"glutenFree"`
	Servings    *int     `json:"servings,omitempty"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Favorite    *bool    `json:"favorite,omitempty"`
	Viewed      *bool    `json:"viewed,omitempty"`
}

// Clone returns a deep copy of r. Cached records are shared, so callers get clones.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	if r.Duration != nil {
		d := *r.Duration
		c.Duration = &d
	}
	if r.Servings != nil {
		s := *r.Servings
		c.Servings = &s
	}
	if r.Ingredients != nil {
		c.Ingredients = append([]string(nil), r.Ingredients...)
	}
	if r.Steps != nil {
		c.Steps = append([]string(nil), r.Steps...)
	}
	if r.Favorite != nil {
		f := *r.Favorite
		c.Favorite = &f
	}
	if r.Viewed != nil {
		v := *r.Viewed
		c.Viewed = &v
	}
	return &c
}

// MarshalJSON writes summary records (no ingredients and no steps) without
// those keys. Full records always carry both lists, empty ones as [].
func (r Recipe) MarshalJSON() ([]byte, error) {
	type record Recipe
	if r.Ingredients == nil && r.Steps == nil {
		return json.Marshal(struct {
			*record
			Ingredients []string `json:"ingredients,omitempty"`
			Steps       []string `json:"steps,omitempty"`
		}{record: (*record)(&r)})
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	return json.Marshal((*record)(&r))
}

// Info holds the basic information part of an upstream recipe.
type Info struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	ReadyInMinutes *int   `json:"readyInMinutes"`
	Image          string `json:"image"`
	AggregateLikes int    `json:"aggregateLikes"`
	Vegan          bool   `json:"vegan"`
	Vegetarian     bool   `json:"vegetarian"`
	GlutenFree     bool   `json:"glutenFree"`
	Servings       *int   `json:"servings"`
}

// Ingredient is one metric ingredient line before formatting.
type Ingredient struct {
	Amount float64
	Unit   string
	Name   string
}

// String renders the ingredient as "<amount> <unit> <name>", skipping empty parts.
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	if i.Amount != 0 {
		parts = append(parts, strconv.FormatFloat(i.Amount, 'f', -1, 64))
	}
	if u := strings.TrimSpace(i.Unit); u != "" {
		parts = append(parts, u)
	}
	if n := strings.TrimSpace(i.Name); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, " ")
}

// Parts is the result of the three upstream calls for a single recipe.
type Parts struct {
	Info        Info
	Ingredients []Ingredient
	Steps       []string
}

// Merge combines the upstream parts into a Recipe without user flags.
func Merge(p *Parts) *Recipe {
	r := Summary(&p.Info)
	r.Servings = p.Info.Servings
	r.Ingredients = make([]string, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		r.Ingredients = append(r.Ingredients, ing.String())
	}
	r.Steps = append(make([]string, 0, len(p.Steps)), p.Steps...)
	return r
}

// Summary builds a preview record carrying only the summary fields of info.
func Summary(info *Info) *Recipe {
	return &Recipe{
		ID:         info.ID,
		Title:      info.Title,
		Duration:   info.ReadyInMinutes,
		Image:      info.Image,
		Popularity: info.AggregateLikes,
		Vegan:      info.Vegan,
		Vegetarian: info.Vegetarian,
		GlutenFree: info.GlutenFree,
	}
}

// SearchResult is one candidate returned by an upstream search.
type SearchResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// Criteria narrows an upstream search.
type Criteria struct {
	Query       string
	Cuisine     string
	Diet        string
	Intolerance string
	Limit       int
}

// UserRecipe is a recipe authored by a user and stored locally.
type UserRecipe struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Image       string    `json:"image,omitempty" db:"image"`
	Duration    int       `json:"duration" db:"duration"`
	Vegan       bool      `json:"vegan" db:"vegan"`
	Vegetarian  bool      `json:"vegetarian" db:"vegetarian"`
	GlutenFree  bool      `json:"glutenFree" db:"gluten_free"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	Servings    int       `json:"servings" db:"servings"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// FamilyRecipe is a recipe handed down in a user's family.
type FamilyRecipe struct {
	ID             int64     `json:"id" db:"id"`
	UserID         string    `json:"userId" db:"user_id"`
	Title          string    `json:"title" db:"title"`
	Image          string    `json:"image" db:"image"`
	Occasion       string    `json:"occasion" db:"occasion"`
	OriginatorName string    `json:"originator_name" db:"originator_name"`
	Instructions   []string  `json:"instructions"`
	Ingredients    []string  `json:"ingredients"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
