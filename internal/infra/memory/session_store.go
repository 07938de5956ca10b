package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fsqa-audit-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository and
// app.ResponseRepository.
type SessionStore struct {
	mu        sync.RWMutex
	nextID    int64
	sessions  map[int64]*domain.Session
	responses map[int64]map[int64]domain.Response
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[int64]*domain.Session),
		responses: make(map[int64]map[int64]domain.Response),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, facilityID int64, totalPoints int, createdAt time.Time) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	session := &domain.Session{
		ID:          s.nextID,
		FacilityID:  facilityID,
		TotalPoints: totalPoints,
		CreatedAt:   createdAt,
	}
	s.sessions[session.ID] = session
	return *session, nil
}

func (s *SessionStore) GetSession(_ context.Context, sessionID int64) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.NotFound("session", sessionID)
	}
	out := *session
	if session.ScoredAt != nil {
		scoredAt := *session.ScoredAt
		out.ScoredAt = &scoredAt
	}
	return out, nil
}

func (s *SessionStore) SaveScore(_ context.Context, sessionID int64, summary domain.ScoreSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.NotFound("session", sessionID)
	}
	scoredAt := summary.ScoredAt
	session.EarnedPoints = summary.EarnedPoints
	session.ScorePct = summary.ScorePct
	session.HasAutoFail = summary.HasAutoFail
	session.Grade = summary.Grade
	session.ScoredAt = &scoredAt
	return nil
}

// UpsertResponses applies the whole batch under one lock.
func (s *SessionStore) UpsertResponses(_ context.Context, sessionID int64, responses []domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.NotFound("session", sessionID)
	}
	rows, ok := s.responses[sessionID]
	if !ok {
		rows = make(map[int64]domain.Response)
		s.responses[sessionID] = rows
	}
	for _, r := range responses {
		r.SessionID = sessionID
		rows[r.QuestionID] = r
	}
	return nil
}

func (s *SessionStore) ListResponses(_ context.Context, sessionID int64) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, domain.NotFound("session", sessionID)
	}
	rows := s.responses[sessionID]
	out := make([]domain.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}
