package app

import (
	"context"

	"fsqa-audit-service/internal/domain"
)

// ChemicalRepository lists chemical application records for a facility.
type ChemicalRepository interface {
	ListChemicalApplications(ctx context.Context, facilityID int64) ([]domain.ChemicalApplication, error)
}

// ResidueService compares expected residue levels against maximum residue limits.
type ResidueService struct {
	catalogs  CatalogRepository
	chemicals ChemicalRepository
}

func NewResidueService(catalogs CatalogRepository, chemicals ChemicalRepository) *ResidueService {
	return &ResidueService{catalogs: catalogs, chemicals: chemicals}
}

// ComputeResidueCompliance returns the share of judgeable applications within their MRL.
func (s *ResidueService) ComputeResidueCompliance(ctx context.Context, facilityID int64) (domain.ResidueCompliance, error) {
	if facilityID <= 0 {
		return domain.ResidueCompliance{}, domain.Invalid("facility_id", "is required")
	}
	if _, err := s.catalogs.GetCatalog(ctx, facilityID); err != nil {
		return domain.ResidueCompliance{}, err
	}
	apps, err := s.chemicals.ListChemicalApplications(ctx, facilityID)
	if err != nil {
		return domain.ResidueCompliance{}, err
	}
	return residueCompliance(apps), nil
}

// residueCompliance skips records missing either the expected level or the limit.
func residueCompliance(apps []domain.ChemicalApplication) domain.ResidueCompliance {
	var out domain.ResidueCompliance
	for _, a := range apps {
		if a.ExpectedResidueLevelPPM == nil || a.MRLPPM == nil {
			continue
		}
		out.Total++
		if *a.ExpectedResidueLevelPPM <= *a.MRLPPM {
			out.Compliant++
		}
	}
	out.CompliancePct = domain.Percent(out.Compliant, out.Total)
	return out
}
