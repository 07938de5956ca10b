package memory

import (
	"context"
	"sync"

	"fsqa-audit-service/internal/domain"
)

// ReadinessStore keeps live requirement statuses and the append-only snapshot history.
type ReadinessStore struct {
	mu           sync.RWMutex
	nextID       int64
	requirements map[int64]map[string]domain.RequirementStatus
	snapshots    []domain.ReadinessSnapshot
}

func NewReadinessStore() *ReadinessStore {
	return &ReadinessStore{
		requirements: make(map[int64]map[string]domain.RequirementStatus),
	}
}

func (s *ReadinessStore) CountRequirementStatuses(_ context.Context, facilityID int64) (map[domain.RequirementState]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.RequirementState]int)
	for _, row := range s.requirements[facilityID] {
		counts[row.Status]++
	}
	return counts, nil
}

func (s *ReadinessStore) UpsertRequirementStatus(_ context.Context, status domain.RequirementStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.requirements[status.FacilityID]
	if !ok {
		rows = make(map[string]domain.RequirementStatus)
		s.requirements[status.FacilityID] = rows
	}
	rows[status.RequirementCode] = status
	return nil
}

func (s *ReadinessStore) InsertSnapshot(_ context.Context, snapshot domain.ReadinessSnapshot) (domain.ReadinessSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	snapshot.ID = s.nextID
	s.snapshots = append(s.snapshots, snapshot)
	return snapshot, nil
}

// ListSnapshots walks the history backwards so the newest come first.
func (s *ReadinessStore) ListSnapshots(_ context.Context, facilityID int64, limit int) ([]domain.ReadinessSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReadinessSnapshot, 0)
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].FacilityID != facilityID {
			continue
		}
		out = append(out, s.snapshots[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
