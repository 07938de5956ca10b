package memory

import (
	"context"
	"sync"

	"fsqa-audit-service/internal/domain"
)

// ChemicalStore holds chemical application records in memory.
type ChemicalStore struct {
	mu     sync.RWMutex
	nextID int64
	apps   []domain.ChemicalApplication
}

func NewChemicalStore() *ChemicalStore {
	return &ChemicalStore{}
}

// Add records an application and assigns it an id.
func (s *ChemicalStore) Add(app domain.ChemicalApplication) domain.ChemicalApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	app.ID = s.nextID
	s.apps = append(s.apps, app)
	return app
}

func (s *ChemicalStore) ListChemicalApplications(_ context.Context, facilityID int64) ([]domain.ChemicalApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChemicalApplication, 0)
	for _, a := range s.apps {
		if a.FacilityID == facilityID {
			out = append(out, a)
		}
	}
	return out, nil
}
