package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fsqa-audit-service/internal/domain"
	"github.com/uptrace/bun"
)

// Store implements the session, response, requirement, snapshot and chemical
// repositories on top of bun. Rows are converted to domain types before leaving this package.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(ctx context.Context, facilityID int64, totalPoints int, createdAt time.Time) (domain.Session, error) {
	row := sessionRow{
		FacilityID:  facilityID,
		TotalPoints: totalPoints,
		CreatedAt:   createdAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.Session{}, domain.Persistence("insert session", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetSession(ctx context.Context, sessionID int64) (domain.Session, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).Where("s.id = ?", sessionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.NotFound("session", sessionID)
	}
	if err != nil {
		return domain.Session{}, domain.Persistence("select session", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SaveScore(ctx context.Context, sessionID int64, summary domain.ScoreSummary) error {
	res, err := s.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("earned_points = ?", summary.EarnedPoints).
		Set("score_pct = ?", summary.ScorePct).
		Set("has_auto_fail = ?", summary.HasAutoFail).
		Set("grade = ?", string(summary.Grade)).
		Set("scored_at = ?", summary.ScoredAt).
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return domain.Persistence("update session score", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("session", sessionID)
	}
	return nil
}

// UpsertResponses writes the batch in one transaction; duplicate question ids keep the last entry.
func (s *Store) UpsertResponses(ctx context.Context, sessionID int64, responses []domain.Response) error {
	rows := dedupeResponses(sessionID, responses)
	if len(rows) == 0 {
		return nil
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*sessionRow)(nil)).Where("id = ?", sessionID).Exists(ctx)
		if err != nil {
			return domain.Persistence("check session", err)
		}
		if !exists {
			return domain.NotFound("session", sessionID)
		}
		_, err = tx.NewInsert().
			Model(&rows).
			On("CONFLICT (session_id, question_id) DO UPDATE").
			Set("score = EXCLUDED.score").
			Set("notes = EXCLUDED.notes").
			Set("evidence = EXCLUDED.evidence").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	return domain.Persistence("upsert responses", err)
}

func dedupeResponses(sessionID int64, responses []domain.Response) []responseRow {
	index := make(map[int64]int, len(responses))
	rows := make([]responseRow, 0, len(responses))
	for _, r := range responses {
		row := responseRow{
			SessionID:  sessionID,
			QuestionID: r.QuestionID,
			Score:      r.Score,
			Notes:      r.Notes,
			Evidence:   r.Evidence,
			UpdatedAt:  r.UpdatedAt,
		}
		if i, ok := index[r.QuestionID]; ok {
			rows[i] = row
			continue
		}
		index[r.QuestionID] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

func (s *Store) ListResponses(ctx context.Context, sessionID int64) ([]domain.Response, error) {
	var rows []responseRow
	err := s.db.NewSelect().Model(&rows).Where("r.session_id = ?", sessionID).Order("r.question_id").Scan(ctx)
	if err != nil {
		return nil, domain.Persistence("select responses", err)
	}
	out := make([]domain.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CountRequirementStatuses(ctx context.Context, facilityID int64) (map[domain.RequirementState]int, error) {
	var groups []struct {
		Status string `bun:"status"`
		N      int    `bun:"n"`
	}
	err := s.db.NewSelect().
		Model((*requirementStatusRow)(nil)).
		Column("status").
		ColumnExpr("count(*) AS n").
		Where("facility_id = ?", facilityID).
		Group("status").
		Scan(ctx, &groups)
	if err != nil {
		return nil, domain.Persistence("count requirement statuses", err)
	}
	counts := make(map[domain.RequirementState]int, len(groups))
	for _, g := range groups {
		counts[domain.RequirementState(g.Status)] = g.N
	}
	return counts, nil
}

func (s *Store) UpsertRequirementStatus(ctx context.Context, status domain.RequirementStatus) error {
	row := requirementStatusRow{
		FacilityID:      status.FacilityID,
		RequirementCode: status.RequirementCode,
		Status:          string(status.Status),
		UpdatedAt:       status.UpdatedAt,
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (facility_id, requirement_code) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return domain.Persistence("upsert requirement status", err)
}

func (s *Store) InsertSnapshot(ctx context.Context, snapshot domain.ReadinessSnapshot) (domain.ReadinessSnapshot, error) {
	row := snapshotRowFrom(snapshot)
	row.ID = 0
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.ReadinessSnapshot{}, domain.Persistence("insert readiness snapshot", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListSnapshots(ctx context.Context, facilityID int64, limit int) ([]domain.ReadinessSnapshot, error) {
	var rows []snapshotRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("snap.facility_id = ?", facilityID).
		OrderExpr("snap.created_at DESC, snap.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, domain.Persistence("select readiness snapshots", err)
	}
	out := make([]domain.ReadinessSnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) ListChemicalApplications(ctx context.Context, facilityID int64) ([]domain.ChemicalApplication, error) {
	var rows []chemicalApplicationRow
	err := s.db.NewSelect().Model(&rows).Where("ca.facility_id = ?", facilityID).Order("ca.id").Scan(ctx)
	if err != nil {
		return nil, domain.Persistence("select chemical applications", err)
	}
	out := make([]domain.ChemicalApplication, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// AddChemicalApplication records an application.
func (s *Store) AddChemicalApplication(ctx context.Context, app domain.ChemicalApplication) (domain.ChemicalApplication, error) {
	row := chemicalApplicationRow{
		FacilityID:              app.FacilityID,
		ProductName:             app.ProductName,
		ExpectedResidueLevelPPM: app.ExpectedResidueLevelPPM,
		MRLPPM:                  app.MRLPPM,
		AppliedAt:               app.AppliedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.ChemicalApplication{}, domain.Persistence("insert chemical application", err)
	}
	return row.toDomain(), nil
}
