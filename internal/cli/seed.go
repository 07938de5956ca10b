package cli

import (
	"time"

	"fsqa-audit-service/internal/domain"
	"fsqa-audit-service/internal/infra/memory"
)

// demoCatalogs is the catalog served when no database is configured.
func demoCatalogs() map[int64]domain.Catalog {
	return map[int64]domain.Catalog{
		1: {
			Facility: domain.Facility{ID: 1, Name: "Demo Ranch"},
			Modules: []domain.Module{
				{
					ID: 1, Code: "FS", Name: "Field Sanitation", SortOrder: 1,
					Questions: []domain.Question{
						{ID: 1, ModuleID: 1, Text: "Toilet and handwash units are serviced and stocked", Points: 10, SortOrder: 1},
						{ID: 2, ModuleID: 1, Text: "No evidence of animal intrusion in the growing area", Points: 15, IsAutoFail: true, SortOrder: 2},
					},
				},
				{
					ID: 2, Code: "HC", Name: "Harvest Crew", SortOrder: 2,
					Questions: []domain.Question{
						{ID: 3, ModuleID: 2, Text: "Harvest containers are clean and dedicated", Points: 10, SortOrder: 1},
						{ID: 4, ModuleID: 2, Text: "Workers received hygiene training this season", Points: 5, SortOrder: 2},
					},
				},
			},
		},
	}
}

func demoChemicals() *memory.ChemicalStore {
	store := memory.NewChemicalStore()
	ppm := func(v float64) *float64 { return &v }
	applied := time.Date(2026, 5, 12, 7, 30, 0, 0, time.UTC)
	store.Add(domain.ChemicalApplication{FacilityID: 1, ProductName: "Copper hydroxide", ExpectedResidueLevelPPM: ppm(0.8), MRLPPM: ppm(5), AppliedAt: applied})
	store.Add(domain.ChemicalApplication{FacilityID: 1, ProductName: "Spinosad", ExpectedResidueLevelPPM: ppm(0.3), MRLPPM: ppm(0.2), AppliedAt: applied.AddDate(0, 0, 9)})
	store.Add(domain.ChemicalApplication{FacilityID: 1, ProductName: "Kaolin clay", AppliedAt: applied.AddDate(0, 0, 14)})
	return store
}
