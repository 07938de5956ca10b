package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"fsqa-audit-service/internal/domain"
	"fsqa-audit-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[int64]domain.Catalog{
			1: sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("catalog:facility:1") {
		t.Fatalf("expected catalog key to be set")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get cached catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.TotalPoints() != catalog.TotalPoints() {
		t.Fatalf("cached catalog points %d, want %d", cached.TotalPoints(), catalog.TotalPoints())
	}
	q, ok := cached.Question(102)
	if !ok || !q.IsAutoFail {
		t.Fatalf("expected auto-fail flag to survive the cache, got %+v", q)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background(), 1)
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}

	if err := repo.Invalidate(context.Background(), 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("catalog:facility:1") {
		t.Fatalf("expected catalog key to be removed")
	}
}

func TestCatalogRepositoryPassesThroughNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewCatalogRepository(newClient(mr), memory.NewStaticCatalogLoader(nil), time.Minute)
	if _, err := repo.GetCatalog(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("catalog:facility:5") {
		t.Fatalf("misses must not be cached")
	}
}

func TestCatalogRepositoryZeroTTLSkipsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[int64]domain.Catalog{1: sampleCatalog()}),
	}
	repo := NewCatalogRepository(newClient(mr), loader, 0)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetCatalog(context.Background(), 1); err != nil {
			t.Fatalf("get catalog: %v", err)
		}
	}
	if mr.Exists("catalog:facility:1") {
		t.Fatalf("expected no cache key with zero ttl")
	}
	if loader.calls != 2 {
		t.Fatalf("expected every read to load, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryRefreshOverwritesRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	catalogs := map[int64]domain.Catalog{1: sampleCatalog()}
	repo := NewCatalogRepository(newClient(mr), memory.NewStaticCatalogLoader(catalogs), time.Hour)
	if _, err := repo.GetCatalog(context.Background(), 1); err != nil {
		t.Fatalf("get catalog: %v", err)
	}

	edited := sampleCatalog()
	edited.Modules[0].Questions = edited.Modules[0].Questions[:1]
	catalogs[1] = edited

	if _, err := repo.RefreshCatalog(context.Background(), 1); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	cached, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if cached.TotalPoints() != 50 {
		t.Fatalf("expected refreshed total 50 from redis, got %d", cached.TotalPoints())
	}
	if ttl := mr.TTL("catalog:facility:1"); ttl <= 0 {
		t.Fatalf("expected cached key to expire, ttl %v", ttl)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, facilityID)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Facility: domain.Facility{ID: 1, Name: "North Field"},
		Modules: []domain.Module{
			{
				ID:   10,
				Code: "M1",
				Name: "Harvest Operations",
				Questions: []domain.Question{
					{ID: 101, ModuleID: 10, Points: 50},
					{ID: 102, ModuleID: 10, Points: 50, IsAutoFail: true},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
