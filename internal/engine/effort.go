package engine

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const effortMemoSize = 256

// effortResolver turns a habit name into an effort value. The persisted
// habit_effort_cache table is authoritative: once a name is stored it is
// never recomputed, even if the catalog changes. The LRU only memoizes the
// keyword scan over the static catalog.
type effortResolver struct {
	catalog *catalog.Catalog
	memo    *lru.Cache[string, catalog.Resolution]
}

func newEffortResolver(c *catalog.Catalog) *effortResolver {
	memo, err := lru.New[string, catalog.Resolution](effortMemoSize)
	if err != nil {
		panic(err)
	}
	return &effortResolver{catalog: c, memo: memo}
}

func (r *effortResolver) match(key string) catalog.Resolution {
	if res, ok := r.memo.Get(key); ok {
		return res
	}
	res := r.catalog.Resolve(key)
	r.memo.Add(key, res)
	return res
}

func (r *effortResolver) resolve(ctx context.Context, tx storage.Tx, habitName string, now time.Time) (catalog.Resolution, error) {
	key := catalog.NormalizeHabitName(habitName)
	cached, err := tx.GetHabitEffort(ctx, key)
	if err == nil {
		return catalog.Resolution{
			Effort:     clampEffort(cached.Effort),
			Prevalence: cached.Prevalence,
			Source:     cached.Source,
			Category:   cached.Category,
		}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return catalog.Resolution{}, err
	}

	res := r.match(key)
	if err := tx.PutHabitEffort(ctx, storage.HabitEffortCache{
		Name:       key,
		Effort:     res.Effort,
		Prevalence: res.Prevalence,
		Source:     res.Source,
		Category:   res.Category,
		CreatedAt:  now,
	}); err != nil {
		return catalog.Resolution{}, err
	}
	return res, nil
}

func clampEffort(e int) int {
	switch {
	case e < 1:
		return 1
	case e > 10:
		return 10
	default:
		return e
	}
}

// ResolveEffort returns the effort for habitName, caching it on first use.
func (s *Service) ResolveEffort(ctx context.Context, habitName string) (catalog.Resolution, error) {
	var out catalog.Resolution
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		res, err := s.efforts.resolve(ctx, tx, habitName, s.clock())
		out = res
		return err
	})
	return out, err
}
