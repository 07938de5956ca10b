package memory

import (
	"context"
	"testing"
	"time"

	"fsqa-audit-service/internal/domain"
)

func TestReadinessStoreCountsLatestStatus(t *testing.T) {
	ctx := context.Background()
	store := NewReadinessStore()
	now := time.Now()

	_ = store.UpsertRequirementStatus(ctx, domain.RequirementStatus{FacilityID: 1, RequirementCode: "SOP-1", Status: domain.RequirementMissing, UpdatedAt: now})
	_ = store.UpsertRequirementStatus(ctx, domain.RequirementStatus{FacilityID: 1, RequirementCode: "SOP-1", Status: domain.RequirementCurrent, UpdatedAt: now})
	_ = store.UpsertRequirementStatus(ctx, domain.RequirementStatus{FacilityID: 1, RequirementCode: "SOP-2", Status: domain.RequirementOutdated, UpdatedAt: now})
	_ = store.UpsertRequirementStatus(ctx, domain.RequirementStatus{FacilityID: 2, RequirementCode: "SOP-1", Status: domain.RequirementMissing, UpdatedAt: now})

	counts, err := store.CountRequirementStatuses(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[domain.RequirementCurrent] != 1 || counts[domain.RequirementOutdated] != 1 || counts[domain.RequirementMissing] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestReadinessStoreSnapshotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewReadinessStore()

	for i := 0; i < 3; i++ {
		if _, err := store.InsertSnapshot(ctx, domain.ReadinessSnapshot{FacilityID: 1, TriggeredBy: "auditor"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	_, _ = store.InsertSnapshot(ctx, domain.ReadinessSnapshot{FacilityID: 2, TriggeredBy: "auditor"})

	got, err := store.ListSnapshots(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Fatalf("expected snapshots 3,2 got %+v", got)
	}
}
