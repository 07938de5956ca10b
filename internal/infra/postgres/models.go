package postgres

import (
	"time"

	"fsqa-audit-service/internal/domain"
	"github.com/uptrace/bun"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:audit_sessions,alias:s"`

	ID           int64      `bun:"id,pk,autoincrement"`
	FacilityID   int64      `bun:"facility_id,notnull"`
	TotalPoints  int        `bun:"total_points,notnull"`
	EarnedPoints int        `bun:"earned_points,notnull"`
	ScorePct     int        `bun:"score_pct,notnull"`
	HasAutoFail  bool       `bun:"has_auto_fail,notnull"`
	Grade        string     `bun:"grade,nullzero"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	ScoredAt     *time.Time `bun:"scored_at"`
}

func (r sessionRow) toDomain() domain.Session {
	return domain.Session{
		ID:           r.ID,
		FacilityID:   r.FacilityID,
		TotalPoints:  r.TotalPoints,
		EarnedPoints: r.EarnedPoints,
		ScorePct:     r.ScorePct,
		HasAutoFail:  r.HasAutoFail,
		Grade:        domain.Grade(r.Grade),
		CreatedAt:    r.CreatedAt,
		ScoredAt:     r.ScoredAt,
	}
}

type responseRow struct {
	bun.BaseModel `bun:"table:audit_responses,alias:r"`

	SessionID  int64     `bun:"session_id,pk"`
	QuestionID int64     `bun:"question_id,pk"`
	Score      int       `bun:"score,notnull"`
	Notes      string    `bun:"notes,nullzero"`
	Evidence   string    `bun:"evidence,nullzero"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (r responseRow) toDomain() domain.Response {
	return domain.Response{
		SessionID:  r.SessionID,
		QuestionID: r.QuestionID,
		Score:      r.Score,
		Notes:      r.Notes,
		Evidence:   r.Evidence,
		UpdatedAt:  r.UpdatedAt,
	}
}

type requirementStatusRow struct {
	bun.BaseModel `bun:"table:requirement_statuses,alias:rs"`

	FacilityID      int64     `bun:"facility_id,pk"`
	RequirementCode string    `bun:"requirement_code,pk"`
	Status          string    `bun:"status,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

type snapshotRow struct {
	bun.BaseModel `bun:"table:readiness_snapshots,alias:snap"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	FacilityID         int64     `bun:"facility_id,notnull"`
	Total              int       `bun:"total,notnull"`
	CurrentCount       int       `bun:"current_count,notnull"`
	OutdatedCount      int       `bun:"outdated_count,notnull"`
	MissingCount       int       `bun:"missing_count,notnull"`
	NotApplicableCount int       `bun:"not_applicable_count,notnull"`
	ReadinessPct       int       `bun:"readiness_pct,notnull"`
	TriggeredBy        string    `bun:"triggered_by,notnull"`
	CreatedAt          time.Time `bun:"created_at,notnull"`
}

func snapshotRowFrom(s domain.ReadinessSnapshot) snapshotRow {
	return snapshotRow{
		ID:                 s.ID,
		FacilityID:         s.FacilityID,
		Total:              s.Total,
		CurrentCount:       s.Current,
		OutdatedCount:      s.Outdated,
		MissingCount:       s.Missing,
		NotApplicableCount: s.NotApplicable,
		ReadinessPct:       s.ReadinessPct,
		TriggeredBy:        s.TriggeredBy,
		CreatedAt:          s.CreatedAt,
	}
}

func (r snapshotRow) toDomain() domain.ReadinessSnapshot {
	return domain.ReadinessSnapshot{
		ID:         r.ID,
		FacilityID: r.FacilityID,
		Readiness: domain.Readiness{
			Total:         r.Total,
			Current:       r.CurrentCount,
			Outdated:      r.OutdatedCount,
			Missing:       r.MissingCount,
			NotApplicable: r.NotApplicableCount,
			ReadinessPct:  r.ReadinessPct,
		},
		TriggeredBy: r.TriggeredBy,
		CreatedAt:   r.CreatedAt,
	}
}

type chemicalApplicationRow struct {
	bun.BaseModel `bun:"table:chemical_applications,alias:ca"`

	ID                      int64     `bun:"id,pk,autoincrement"`
	FacilityID              int64     `bun:"facility_id,notnull"`
	ProductName             string    `bun:"product_name,notnull"`
	ExpectedResidueLevelPPM *float64  `bun:"expected_residue_level_ppm"`
	MRLPPM                  *float64  `bun:"mrl_ppm"`
	AppliedAt               time.Time `bun:"applied_at,notnull"`
}

func (r chemicalApplicationRow) toDomain() domain.ChemicalApplication {
	return domain.ChemicalApplication{
		ID:                      r.ID,
		FacilityID:              r.FacilityID,
		ProductName:             r.ProductName,
		ExpectedResidueLevelPPM: r.ExpectedResidueLevelPPM,
		MRLPPM:                  r.MRLPPM,
		AppliedAt:               r.AppliedAt,
	}
}
