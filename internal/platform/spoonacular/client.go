package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"recipevault/internal/recipe"
)

// DefaultBaseURL is the Spoonacular recipes endpoint.
const DefaultBaseURL = "https://api.spoonacular.com/recipes"

// Config holds the client settings.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds every single upstream call.
	Timeout time.Duration
	// RateLimit is the sustained number of calls per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

// Client is a client for the Spoonacular recipe API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a new Spoonacular client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		limiter:    limiter,
	}
}

type ingredientWidget struct {
	Ingredients []struct {
		Name   string `json:"name"`
		Amount struct {
			Metric struct {
				Value float64 `json:"value"`
				Unit  string  `json:"unit"`
			} `json:"metric"`
		} `json:"amount"`
	} `json:"ingredients"`
}

type instructionGroup struct {
	Name  string `json:"name"`
	Steps []struct {
		Number int    `json:"number"`
		Step   string `json:"step"`
	} `json:"steps"`
}

type searchResponse struct {
	Results      []recipe.SearchResult `json:"results"`
	TotalResults int                   `json:"totalResults"`
}

type randomResponse struct {
	Recipes []recipe.Info `json:"recipes"`
}

// FetchRecipeParts fetches information, ingredients and instructions for id
// concurrently. If any of the three calls fails the whole fetch fails.
func (c *Client) FetchRecipeParts(ctx context.Context, id int64) (*recipe.Parts, error) {
	var (
		info         recipe.Info
		widget       ingredientWidget
		instructions []instructionGroup
	)
	recipePath := "/" + strconv.FormatInt(id, 10)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := url.Values{"includeNutrition": {"false"}}
		return c.get(gctx, "information", recipePath+"/information", q, &info)
	})
	g.Go(func() error {
		return c.get(gctx, "ingredients", recipePath+"/ingredientWidget.json", nil, &widget)
	})
	g.Go(func() error {
		return c.get(gctx, "instructions", recipePath+"/analyzedInstructions", nil, &instructions)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := &recipe.Parts{
		Info:        info,
		Ingredients: make([]recipe.Ingredient, 0, len(widget.Ingredients)),
		Steps:       []string{},
	}
	for _, ing := range widget.Ingredients {
		parts.Ingredients = append(parts.Ingredients, recipe.Ingredient{
			Amount: ing.Amount.Metric.Value,
			Unit:   ing.Amount.Metric.Unit,
			Name:   ing.Name,
		})
	}
	if len(instructions) > 0 {
		for _, s := range instructions[0].Steps {
			parts.Steps = append(parts.Steps, s.Step)
		}
	}
	return parts, nil
}

// Search runs a complex search and returns the id, title and image of each hit.
func (c *Client) Search(ctx context.Context, criteria recipe.Criteria) ([]recipe.SearchResult, error) {
	q := url.Values{}
	setIfNotEmpty(q, "query", criteria.Query)
	setIfNotEmpty(q, "cuisine", criteria.Cuisine)
	setIfNotEmpty(q, "diet", criteria.Diet)
	setIfNotEmpty(q, "intolerances", criteria.Intolerance)
	if criteria.Limit > 0 {
		q.Set("number", strconv.Itoa(criteria.Limit))
	}

	var resp searchResponse
	if err := c.get(ctx, "search", "/complexSearch", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []recipe.SearchResult{}, nil
	}
	return resp.Results, nil
}

// Random returns count random recipes as summary records.
func (c *Client) Random(ctx context.Context, count int) ([]*recipe.Recipe, error) {
	q := url.Values{"number": {strconv.Itoa(count)}}

	var resp randomResponse
	if err := c.get(ctx, "random", "/random", q, &resp); err != nil {
		return nil, err
	}

	recipes := make([]*recipe.Recipe, 0, len(resp.Recipes))
	for i := range resp.Recipes {
		recipes = append(recipes, recipe.Summary(&resp.Recipes[i]))
	}
	return recipes, nil
}

// get performs one GET under its own deadline and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &recipe.UpstreamError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return &recipe.UpstreamError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &recipe.UpstreamError{Op: op, Err: fmt.Errorf("failed to send request: %w", redact(err))}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &recipe.UpstreamError{Op: op, Status: resp.StatusCode, Err: recipe.ErrNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &recipe.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("received non-OK status code: %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &recipe.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	return nil
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
