package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fsqa-audit-service/internal/domain"
	"go.uber.org/zap"
)

// CatalogRepository loads the audit modules and questions applicable to a facility.
// Unknown facilities yield a domain.NotFoundError.
type CatalogRepository interface {
	GetCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error)
}

// CatalogRefresher is implemented by caching catalog repositories. RefreshCatalog skips
// the cache, loads the current catalog and replaces the cached copy.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error)
}

// SessionRepository abstracts how audit sessions are stored (in-memory, Postgres).
type SessionRepository interface {
	CreateSession(ctx context.Context, facilityID int64, totalPoints int, createdAt time.Time) (domain.Session, error)
	GetSession(ctx context.Context, sessionID int64) (domain.Session, error)
	SaveScore(ctx context.Context, sessionID int64, summary domain.ScoreSummary) error
}

// ResponseRepository stores responses keyed by (session, question).
// UpsertResponses overwrites existing rows for the same key instead of duplicating them.
type ResponseRepository interface {
	UpsertResponses(ctx context.Context, sessionID int64, responses []domain.Response) error
	ListResponses(ctx context.Context, sessionID int64) ([]domain.Response, error)
}

// AuditService runs scoring sessions against a facility's question catalog.
type AuditService struct {
	catalogs  CatalogRepository
	sessions  SessionRepository
	responses ResponseRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewAuditService(catalogs CatalogRepository, sessions SessionRepository, responses ResponseRepository, log *zap.Logger) *AuditService {
	return NewAuditServiceWithClock(catalogs, sessions, responses, log, time.Now)
}

// NewAuditServiceWithClock is used by tests that need deterministic timestamps.
func NewAuditServiceWithClock(catalogs CatalogRepository, sessions SessionRepository, responses ResponseRepository, log *zap.Logger, now func() time.Time) *AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditService{
		catalogs:  catalogs,
		sessions:  sessions,
		responses: responses,
		log:       log,
		now:       now,
	}
}

// CreateSession starts a scoring session for a facility. The session's total points are
// fixed here from the facility's applicable modules and never recomputed.
func (s *AuditService) CreateSession(ctx context.Context, facilityID int64) (domain.Session, error) {
	if facilityID <= 0 {
		return domain.Session{}, domain.Invalid("facility_id", "is required")
	}

	// total points must reflect the catalog as it is now, not as last cached
	catalog, err := s.currentCatalog(ctx, facilityID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, domain.Invalid("facility_id", "unknown facility %d", facilityID)
	}
	if err != nil {
		return domain.Session{}, err
	}

	session, err := s.sessions.CreateSession(ctx, facilityID, catalog.TotalPoints(), s.now().UTC())
	if err != nil {
		return domain.Session{}, err
	}
	s.log.Info("audit session created",
		zap.Int64("session_id", session.ID),
		zap.Int64("facility_id", facilityID),
		zap.Int("total_points", session.TotalPoints),
	)
	return session, nil
}

// GetSession returns the stored session, including the summary of its last scoring if any.
func (s *AuditService) GetSession(ctx context.Context, sessionID int64) (domain.Session, error) {
	if sessionID <= 0 {
		return domain.Session{}, domain.Invalid("session_id", "is required")
	}
	return s.sessions.GetSession(ctx, sessionID)
}

// SaveResponses validates the whole batch and then upserts it. Nothing is written when any
// entry is invalid. Scoring is not triggered; call ComputeScore for that.
func (s *AuditService) SaveResponses(ctx context.Context, sessionID int64, inputs []domain.ResponseInput) (int, error) {
	if sessionID <= 0 {
		return 0, domain.Invalid("session_id", "is required")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(inputs) == 0 {
		return 0, nil
	}

	catalog, err := s.catalogs.GetCatalog(ctx, session.FacilityID)
	if err != nil {
		return 0, err
	}
	if !coversQuestions(catalog, inputs) {
		if catalog, err = s.currentCatalog(ctx, session.FacilityID); err != nil {
			return 0, err
		}
	}

	now := s.now().UTC()
	rows := make([]domain.Response, 0, len(inputs))
	for i, in := range inputs {
		if in.QuestionID <= 0 {
			return 0, domain.Invalid(fmt.Sprintf("responses[%d].question_id", i), "is required")
		}
		question, ok := catalog.Question(in.QuestionID)
		if !ok {
			return 0, domain.NotFound("question", in.QuestionID)
		}
		if in.Score < 0 || in.Score > question.Points {
			return 0, domain.Invalid(fmt.Sprintf("responses[%d].score", i),
				"must be between 0 and %d for question %d, got %d", question.Points, question.ID, in.Score)
		}
		rows = append(rows, domain.Response{
			SessionID:  sessionID,
			QuestionID: in.QuestionID,
			Score:      in.Score,
			Notes:      in.Notes,
			Evidence:   in.Evidence,
			UpdatedAt:  now,
		})
	}

	if err := s.responses.UpsertResponses(ctx, sessionID, rows); err != nil {
		return 0, err
	}
	s.log.Debug("audit responses saved", zap.Int64("session_id", sessionID), zap.Int("count", len(rows)))
	return len(rows), nil
}

// ComputeScore aggregates the latest saved responses, classifies the result and
// overwrites the session's summary fields. Safe to call repeatedly.
func (s *AuditService) ComputeScore(ctx context.Context, sessionID int64) (domain.ScoreResult, error) {
	if sessionID <= 0 {
		return domain.ScoreResult{}, domain.Invalid("session_id", "is required")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	catalog, err := s.catalogs.GetCatalog(ctx, session.FacilityID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	responses, err := s.responses.ListResponses(ctx, sessionID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if !coversResponses(catalog, responses) {
		if catalog, err = s.currentCatalog(ctx, session.FacilityID); err != nil {
			return domain.ScoreResult{}, err
		}
	}

	result := scoreSession(session, catalog, responses)

	summary := domain.ScoreSummary{
		EarnedPoints: result.EarnedPoints,
		ScorePct:     result.ScorePct,
		HasAutoFail:  result.HasAutoFail,
		Grade:        result.Grade,
		ScoredAt:     s.now().UTC(),
	}
	if err := s.sessions.SaveScore(ctx, sessionID, summary); err != nil {
		return domain.ScoreResult{}, err
	}

	s.log.Info("audit session scored",
		zap.Int64("session_id", sessionID),
		zap.Int("earned_points", result.EarnedPoints),
		zap.Int("total_points", result.TotalPoints),
		zap.Int("score_pct", result.ScorePct),
		zap.Bool("has_auto_fail", result.HasAutoFail),
		zap.String("grade", string(result.Grade)),
	)
	return result, nil
}

// currentCatalog bypasses the cache when the repository supports refreshing.
func (s *AuditService) currentCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	if r, ok := s.catalogs.(CatalogRefresher); ok {
		return r.RefreshCatalog(ctx, facilityID)
	}
	return s.catalogs.GetCatalog(ctx, facilityID)
}

func coversQuestions(catalog domain.Catalog, inputs []domain.ResponseInput) bool {
	for _, in := range inputs {
		if _, ok := catalog.Question(in.QuestionID); !ok {
			return false
		}
	}
	return true
}

func coversResponses(catalog domain.Catalog, responses []domain.Response) bool {
	for _, r := range responses {
		if _, ok := catalog.Question(r.QuestionID); !ok {
			return false
		}
	}
	return true
}
