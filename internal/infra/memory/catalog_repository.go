package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"fsqa-audit-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a facility's applicable catalog from the backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error)
}

// CatalogRepository caches facility catalogs with a TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedCatalog),
	}
}

// GetCatalog returns a private copy of the facility's catalog; callers may modify it freely.
func (r *CatalogRepository) GetCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	if catalog, ok := r.cached(facilityID); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(strconv.FormatInt(facilityID, 10), func() (interface{}, error) {
		if catalog, ok := r.cached(facilityID); ok {
			return catalog, nil
		}
		return r.load(ctx, facilityID)
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog).Clone(), nil
}

// RefreshCatalog bypasses the cache, reloads the catalog and stores the fresh copy.
func (r *CatalogRepository) RefreshCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	catalog, err := r.load(ctx, facilityID)
	if err != nil {
		return domain.Catalog{}, err
	}
	return catalog.Clone(), nil
}

func (r *CatalogRepository) load(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	catalog, err := r.loader.LoadCatalog(ctx, facilityID)
	if err != nil {
		return domain.Catalog{}, err
	}
	catalog = catalog.Clone()
	if r.ttl <= 0 {
		return catalog, nil
	}

	r.mu.Lock()
	r.cache[facilityID] = cachedCatalog{
		catalog:   catalog,
		expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
	}
	r.mu.Unlock()
	return catalog, nil
}

// Invalidate drops a facility's cached catalog, e.g. after an admin edit.
func (r *CatalogRepository) Invalidate(facilityID int64) {
	r.mu.Lock()
	delete(r.cache, facilityID)
	r.mu.Unlock()
}

func (r *CatalogRepository) cached(facilityID int64) (domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[facilityID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Catalog{}, false
	}
	return entry.catalog.Clone(), true
}

func (r *CatalogRepository) ttlWithJitterLocked() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticCatalogLoader struct {
	catalogs map[int64]domain.Catalog
}

func NewStaticCatalogLoader(catalogs map[int64]domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, facilityID int64) (domain.Catalog, error) {
	if catalog, ok := l.catalogs[facilityID]; ok {
		return catalog, nil
	}
	return domain.Catalog{}, domain.NotFound("facility", facilityID)
}
