package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fsqa-audit-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[int64]domain.Catalog{1: sampleCatalog()}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if catalog.TotalPoints() != 100 {
		t.Fatalf("expected 100 total points, got %d", catalog.TotalPoints())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), 1); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	repo.Invalidate(1)
	if _, err := repo.GetCatalog(context.Background(), 1); err != nil {
		t.Fatalf("get catalog 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[int64]domain.Catalog{1: sampleCatalog()}),
	}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background(), 1)
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background(), 1)
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryUnknownFacility(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	_, err := repo.GetCatalog(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogRepositoryIsolatesCallers(t *testing.T) {
	source := sampleCatalog()
	repo := NewCatalogRepository(NewStaticCatalogLoader(map[int64]domain.Catalog{1: source}), time.Minute)

	first, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	first.Modules[0].Questions[0].Points = 1
	source.Modules[0].Questions[1].Points = 1

	second, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if second.TotalPoints() != 100 {
		t.Fatalf("cached catalog changed through a shared slice: total %d", second.TotalPoints())
	}
}

func TestCatalogRepositoryRefreshReplacesCachedCopy(t *testing.T) {
	catalogs := map[int64]domain.Catalog{1: sampleCatalog()}
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(catalogs)}
	repo := NewCatalogRepository(loader, time.Hour)

	if _, err := repo.GetCatalog(context.Background(), 1); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	edited := sampleCatalog()
	edited.Modules[0].Questions = edited.Modules[0].Questions[:1]
	catalogs[1] = edited

	fresh, err := repo.RefreshCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.TotalPoints() != 50 {
		t.Fatalf("expected refreshed total 50, got %d", fresh.TotalPoints())
	}
	cached, err := repo.GetCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if cached.TotalPoints() != 50 || loader.calls != 2 {
		t.Fatalf("expected refreshed copy cached, total %d loader calls %d", cached.TotalPoints(), loader.calls)
	}
}

func TestCatalogRepositoryZeroTTLDoesNotCache(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[int64]domain.Catalog{1: sampleCatalog()}),
	}
	repo := NewCatalogRepository(loader, 0)

	_, _ = repo.GetCatalog(context.Background(), 1)
	_, _ = repo.GetCatalog(context.Background(), 1)
	if loader.calls != 2 {
		t.Fatalf("expected every read to load, loader calls %d", loader.calls)
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
					{ID: 101, ModuleID: 10, Text: "Harvest containers are clean", Points: 50},
					{ID: 102, ModuleID: 10, Text: "No animal intrusion in field", Points: 50, IsAutoFail: true},
				},
			},
		},
	}
}
