package external

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// CachedCatalog memoizes listings and details for the life of the process.
// Failed lookups are not cached.
type CachedCatalog struct {
	next Catalog

	mu       sync.Mutex
	listings map[Category][]Entry
	details  map[string]*EntryDetail
}

// NewCached wraps a catalog with an in-memory memo
func NewCached(next Catalog) *CachedCatalog {
	return &CachedCatalog{
		next:     next,
		listings: make(map[Category][]Entry),
		details:  make(map[string]*EntryDetail),
	}
}

// ListCategory returns the memoized listing or loads it
func (c *CachedCatalog) ListCategory(ctx context.Context, category Category) ([]Entry, error) {
	c.mu.Lock()
	cached, ok := c.listings[category]
	c.mu.Unlock()
	if ok {
		return append([]Entry(nil), cached...), nil
	}

	entries, err := c.next.ListCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.listings[category] = entries
	c.mu.Unlock()
	return append([]Entry(nil), entries...), nil
}

// GetDetail returns the memoized detail or loads it
func (c *CachedCatalog) GetDetail(ctx context.Context, id string) (*EntryDetail, error) {
	c.mu.Lock()
	cached, ok := c.details[id]
	c.mu.Unlock()
	if ok {
		out := *cached
		return &out, nil
	}

	detail, err := c.next.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.details[id] = detail
	c.mu.Unlock()
	out := *detail
	return &out, nil
}

// Prefetch loads the given categories concurrently, all of them when none
// are named. The first failure cancels the rest.
func (c *CachedCatalog) Prefetch(ctx context.Context, categories ...Category) error {
	if len(categories) == 0 {
		categories = Categories
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, category := range categories {
		category := category
		g.Go(func() error {
			_, err := c.ListCategory(ctx, category)
			return err
		})
	}
	return g.Wait()
}

// ExtendTables returns tables whose tool pool also holds the catalog tools
func ExtendTables(ctx context.Context, catalog Catalog, tables *rules.Tables) (*rules.Tables, error) {
	tools, err := catalog.ListCategory(ctx, CategoryTools)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tools))
	for _, tool := range tools {
		ids = append(ids, tool.ID)
	}
	return tables.WithCatalogTools(ids), nil
}

// ResolveWeapons fills Name, Category and TwoHanded of each weapon from
// the catalog. The input slice is not modified.
func ResolveWeapons(ctx context.Context, catalog Catalog, weapons []entities.EquipmentSelection) ([]entities.EquipmentSelection, error) {
	out := make([]entities.EquipmentSelection, len(weapons))
	for i, w := range weapons {
		detail, err := catalog.GetDetail(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		w.Name = detail.Name
		w.Category = string(detail.Category)
		w.TwoHanded = detail.TwoHanded
		out[i] = w
	}
	return out, nil
}
