package app

import (
	"context"
	"strings"
	"time"

	"fsqa-audit-service/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultSnapshotLimit = 50
	maxSnapshotLimit     = 500
)

// RequirementRepository holds the live requirement statuses of each facility.
type RequirementRepository interface {
	CountRequirementStatuses(ctx context.Context, facilityID int64) (map[domain.RequirementState]int, error)
	UpsertRequirementStatus(ctx context.Context, status domain.RequirementStatus) error
}

// SnapshotRepository is append-only: snapshots are inserted and listed, never updated.
type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, snapshot domain.ReadinessSnapshot) (domain.ReadinessSnapshot, error)
	ListSnapshots(ctx context.Context, facilityID int64, limit int) ([]domain.ReadinessSnapshot, error)
}

// ReadinessService computes facility documentation readiness and keeps its trend history.
type ReadinessService struct {
	catalogs     CatalogRepository
	requirements RequirementRepository
	snapshots    SnapshotRepository
	log          *zap.Logger
	now          func() time.Time
}

func NewReadinessService(catalogs CatalogRepository, requirements RequirementRepository, snapshots SnapshotRepository, log *zap.Logger) *ReadinessService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadinessService{
		catalogs:     catalogs,
		requirements: requirements,
		snapshots:    snapshots,
		log:          log,
		now:          time.Now,
	}
}

// ComputeReadiness counts the facility's live requirement statuses.
func (s *ReadinessService) ComputeReadiness(ctx context.Context, facilityID int64) (domain.Readiness, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return domain.Readiness{}, err
	}
	counts, err := s.requirements.CountRequirementStatuses(ctx, facilityID)
	if err != nil {
		return domain.Readiness{}, err
	}
	return readinessFromCounts(counts), nil
}

// SaveSnapshot computes readiness and appends it to the facility's history.
func (s *ReadinessService) SaveSnapshot(ctx context.Context, facilityID int64, triggeredBy string) (domain.ReadinessSnapshot, error) {
	triggeredBy = strings.TrimSpace(triggeredBy)
	if triggeredBy == "" {
		return domain.ReadinessSnapshot{}, domain.Invalid("triggered_by", "is required")
	}
	readiness, err := s.ComputeReadiness(ctx, facilityID)
	if err != nil {
		return domain.ReadinessSnapshot{}, err
	}

	snapshot, err := s.snapshots.InsertSnapshot(ctx, domain.ReadinessSnapshot{
		FacilityID:  facilityID,
		Readiness:   readiness,
		TriggeredBy: triggeredBy,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return domain.ReadinessSnapshot{}, err
	}
	s.log.Info("readiness snapshot saved",
		zap.Int64("snapshot_id", snapshot.ID),
		zap.Int64("facility_id", facilityID),
		zap.Int("readiness_pct", snapshot.ReadinessPct),
		zap.String("triggered_by", triggeredBy),
	)
	return snapshot, nil
}

// ListSnapshots returns the facility's snapshots, newest first.
func (s *ReadinessService) ListSnapshots(ctx context.Context, facilityID int64, limit int) ([]domain.ReadinessSnapshot, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}
	return s.snapshots.ListSnapshots(ctx, facilityID, limit)
}

// SetRequirementStatus records the current status of one requirement at a facility.
func (s *ReadinessService) SetRequirementStatus(ctx context.Context, facilityID int64, requirementCode string, status domain.RequirementState) error {
	requirementCode = strings.TrimSpace(requirementCode)
	if requirementCode == "" {
		return domain.Invalid("requirement_code", "is required")
	}
	if !status.Valid() {
		return domain.Invalid("status", "must be one of current, outdated, missing, not_applicable; got %q", status)
	}
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return err
	}
	return s.requirements.UpsertRequirementStatus(ctx, domain.RequirementStatus{
		FacilityID:      facilityID,
		RequirementCode: requirementCode,
		Status:          status,
		UpdatedAt:       s.now().UTC(),
	})
}

func (s *ReadinessService) requireFacility(ctx context.Context, facilityID int64) error {
	if facilityID <= 0 {
		return domain.Invalid("facility_id", "is required")
	}
	_, err := s.catalogs.GetCatalog(ctx, facilityID)
	return err
}

// readinessFromCounts computes the readiness ratio over applicable requirements only.
// Outdated and missing rows are reported but only current ones count toward readiness.
func readinessFromCounts(counts map[domain.RequirementState]int) domain.Readiness {
	r := domain.Readiness{
		Current:       counts[domain.RequirementCurrent],
		Outdated:      counts[domain.RequirementOutdated],
		Missing:       counts[domain.RequirementMissing],
		NotApplicable: counts[domain.RequirementNotApplicable],
	}
	for _, n := range counts {
		r.Total += n
	}
	r.ReadinessPct = domain.Percent(r.Current, r.Total-r.NotApplicable)
	return r
}
