package recipe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Annotator overlays per-user favorite and viewed flags onto recipe records.
type Annotator struct {
	store FlagStore
}

// NewAnnotator creates an Annotator reading flag sets from store.
func NewAnnotator(store FlagStore) *Annotator {
	return &Annotator{store: store}
}

// Annotate sets Favorite and Viewed on every record for userID, mutating the
// records in place. It issues one favorites query and one watched query no
// matter how many records are passed. An empty userID leaves records untouched.
//
// Records must be private to the caller; never pass a shared cache entry.
func (a *Annotator) Annotate(ctx context.Context, records []*Recipe, userID string) error {
	if userID == "" || len(records) == 0 {
		return nil
	}

	var favorites, watched map[int64]struct{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := a.store.FavoriteRecipeIDs(gctx, userID)
		if err != nil {
			return &StoreError{Op: "favorite recipes", Err: err}
		}
		favorites = idSet(ids)
		return nil
	})
	g.Go(func() error {
		ids, err := a.store.WatchedRecipeIDs(gctx, userID)
		if err != nil {
			return &StoreError{Op: "watched recipes", Err: err}
		}
		watched = idSet(ids)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range records {
		_, fav := favorites[r.ID]
		_, seen := watched[r.ID]
		r.Favorite = &fav
		r.Viewed = &seen
	}
	return nil
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
