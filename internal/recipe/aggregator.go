package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultLimit is used when a search or random listing asks for no particular size.
	DefaultLimit = 5
	// MaxLimit is the largest page the upstream API serves in one call.
	MaxLimit = 100
)

// Upstream is the recipe API the aggregator reads from.
type Upstream interface {
	FetchRecipeParts(ctx context.Context, id int64) (*Parts, error)
	Search(ctx context.Context, criteria Criteria) ([]SearchResult, error)
	Random(ctx context.Context, count int) ([]*Recipe, error)
}

// Cache holds merged recipes shared by every request. Entries never carry user flags.
type Cache interface {
	Get(ctx context.Context, key string) (*Recipe, bool, error)
	Set(ctx context.Context, key string, r *Recipe) error
}

// Aggregator produces canonical recipe records from the upstream API, the
// shared cache and the per-user flag overlay.
type Aggregator struct {
	upstream  Upstream
	cache     Cache
	annotator *Annotator
	inflight  singleflight.Group
	log       *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger falls back to slog.Default.
func NewAggregator(upstream Upstream, cache Cache, annotator *Annotator, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		upstream:  upstream,
		cache:     cache,
		annotator: annotator,
		log:       log,
	}
}

// GetRecipeDetail returns the full record for id. With a non-empty userID the
// returned copy carries that user's favorite and viewed flags.
func (a *Aggregator) GetRecipeDetail(ctx context.Context, id int64, userID string) (*Recipe, error) {
	shared, err := a.shared(ctx, id)
	if err != nil {
		return nil, aggregationError("recipe detail", id, err)
	}

	r := shared.Clone()
	if err := a.annotator.Annotate(ctx, []*Recipe{r}, userID); err != nil {
		return nil, aggregationError("recipe detail", id, err)
	}
	return r, nil
}

// GetRecipesPreview resolves every id without user context. The result follows
// the order of ids; one failure fails the whole batch.
func (a *Aggregator) GetRecipesPreview(ctx context.Context, ids []int64) ([]*Recipe, error) {
	recipes, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, aggregationError("recipes preview", 0, err)
	}
	return recipes, nil
}

// SearchRecipes runs an upstream search and resolves each candidate to a full
// record, keeping the upstream ranking.
func (a *Aggregator) SearchRecipes(ctx context.Context, criteria Criteria, userID string) ([]*Recipe, error) {
	criteria.Limit = NormalizeLimit(criteria.Limit)

	results, err := a.upstream.Search(ctx, criteria)
	if err != nil {
		return nil, aggregationError("search recipes", 0, err)
	}

	ids := make([]int64, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}

	recipes, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, aggregationError("search recipes", 0, err)
	}
	if err := a.annotator.Annotate(ctx, recipes, userID); err != nil {
		return nil, aggregationError("search recipes", 0, err)
	}
	return recipes, nil
}

// GetRandomRecipes returns count summary records straight from upstream,
// bypassing the cache.
func (a *Aggregator) GetRandomRecipes(ctx context.Context, count int) ([]*Recipe, error) {
	recipes, err := a.upstream.Random(ctx, NormalizeLimit(count))
	if err != nil {
		return nil, aggregationError("random recipes", 0, err)
	}
	return recipes, nil
}

// NormalizeLimit clamps n into [1, MaxLimit], mapping non-positive values to DefaultLimit.
func NormalizeLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// resolve returns private copies of the shared records for ids, in order.
func (a *Aggregator) resolve(ctx context.Context, ids []int64) ([]*Recipe, error) {
	recipes := make([]*Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			r, err := a.shared(gctx, id)
			if err != nil {
				return fmt.Errorf("recipe %d: %w", id, err)
			}
			recipes[i] = r.Clone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recipes, nil
}

// shared returns the cached record for id, fetching and caching it on a miss.
// Concurrent misses for one id share a single upstream fetch. The returned
// record belongs to the cache and must not be modified.
func (a *Aggregator) shared(ctx context.Context, id int64) (*Recipe, error) {
	key := cacheKey(id)
	if r, ok := a.lookup(ctx, key); ok {
		recipeCacheHits.Inc()
		return r, nil
	}
	recipeCacheMisses.Inc()

	// The fetch outlives any single caller; upstream deadlines bound it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := a.inflight.DoChan(key, func() (any, error) {
		if r, ok := a.lookup(fetchCtx, key); ok {
			return r, nil
		}
		return a.fetch(fetchCtx, id, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			recipeFetchShared.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Recipe), nil
	}
}

func (a *Aggregator) fetch(ctx context.Context, id int64, key string) (*Recipe, error) {
	start := time.Now()
	parts, err := a.upstream.FetchRecipeParts(ctx, id)
	recipeFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	r := Merge(parts)
	r.ID = id
	if err := a.cache.Set(ctx, key, r); err != nil {
		a.log.Warn("failed to cache recipe", "recipe_id", id, "error", err)
	}
	a.log.Debug("recipe fetched from upstream", "recipe_id", id, "duration", time.Since(start).String())
	return r, nil
}

func (a *Aggregator) lookup(ctx context.Context, key string) (*Recipe, bool) {
	r, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.log.Warn("recipe cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if ok && r == nil {
		a.log.Warn("recipe cache returned an empty entry", "key", key)
		return nil, false
	}
	return r, ok
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
