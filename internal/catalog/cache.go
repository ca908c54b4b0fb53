package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"phewasview/domain/phewas"
	"phewasview/internal"
	apperrors "phewasview/internal/errors"
	"phewasview/ports"
)

const flightKey = "outcome"

// Cache memoizes the outcome catalog for the lifetime of the process.
// Concurrent first callers share a single upstream fetch; failures are
// returned to every waiter and are not remembered.
type Cache struct {
	source ports.CatalogSource
	group  singleflight.Group
	log    *internal.Logger

	mu      sync.RWMutex
	catalog *phewas.Catalog
}

// NewCache creates an empty cache over source
func NewCache(source ports.CatalogSource) *Cache {
	return &Cache{
		source: source,
		log:    internal.DefaultLogger.WithComponent("Catalog"),
	}
}

// NewStaticCache returns a cache pre-populated with cat, for tests and offline use
func NewStaticCache(cat *phewas.Catalog) *Cache {
	c := NewCache(nil)
	c.catalog = cat
	return c
}

// Get returns the cached catalog, fetching it on first use. The shared fetch
// ignores cancellation of whichever caller started it; the client's own
// timeout still bounds it.
func (c *Cache) Get(ctx context.Context) (*phewas.Catalog, error) {
	if cat := c.cached(); cat != nil {
		return cat, nil
	}
	if c.source == nil {
		return nil, apperrors.CatalogUnavailable(nil)
	}

	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(flightKey, func() (interface{}, error) {
		// a previous flight may have finished between cached() and Do
		if cat := c.cached(); cat != nil {
			return cat, nil
		}
		cat, err := c.source.FetchCatalog(fetchCtx)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			cat = &phewas.Catalog{Entries: map[string]phewas.OutcomeCatalogEntry{}}
		}

		c.mu.Lock()
		c.catalog = cat
		c.mu.Unlock()
		c.log.Info("cached %d outcomes", cat.Len())
		return cat, nil
	})
	if err != nil {
		c.log.Warn("catalog fetch failed (shared=%v): %v", shared, err)
		return nil, apperrors.CatalogUnavailable(err)
	}
	return v.(*phewas.Catalog), nil
}

// GetOrNil returns the catalog, or nil when it cannot be loaded.
// Callers use a nil catalog for label-less output.
func (c *Cache) GetOrNil(ctx context.Context) *phewas.Catalog {
	cat, err := c.Get(ctx)
	if err != nil {
		return nil
	}
	return cat
}

// Loaded reports whether the catalog has been populated
func (c *Cache) Loaded() bool {
	return c.cached() != nil
}

func (c *Cache) cached() *phewas.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}
