package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"fsqa-audit-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a facility's applicable catalog from the backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error)
}

// CatalogRepository caches facility catalogs in Redis and falls back to a loader on cache miss.
// Catalogs are stored as JSON: SET catalog:facility:{facilityID} {catalog} PX ttl
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	key := r.key(facilityID)
	if catalog, ok := r.cached(ctx, key); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx, key); ok {
			return catalog, nil
		}
		return r.load(ctx, facilityID)
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog).Clone(), nil
}

// RefreshCatalog bypasses the cache, reloads the catalog and overwrites the cached copy
// so every instance sharing this Redis sees the edit.
func (r *CatalogRepository) RefreshCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	return r.load(ctx, facilityID)
}

func (r *CatalogRepository) load(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	key := r.key(facilityID)
	catalog, err := r.loader.LoadCatalog(ctx, facilityID)
	if err != nil {
		return domain.Catalog{}, err
	}
	if r.ttl <= 0 {
		return catalog, nil
	}
	if raw, err := json.Marshal(catalog); err == nil {
		// best-effort fill; a failed write only costs a reload
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
	}
	return catalog, nil
}

// Invalidate drops a facility's cached catalog.
func (r *CatalogRepository) Invalidate(ctx context.Context, facilityID int64) error {
	return r.client.Del(ctx, r.key(facilityID)).Err()
}

func (r *CatalogRepository) cached(ctx context.Context, key string) (domain.Catalog, bool) {
	if r.ttl <= 0 {
		return domain.Catalog{}, false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) key(facilityID int64) string {
	return "catalog:facility:" + strconv.FormatInt(facilityID, 10)
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
