package http

import "fsqa-audit-service/internal/domain"

type createSessionRequest struct {
	FacilityID int64 `json:"facility_id" validate:"required,gt=0"`
}

type createSessionResponse struct {
	SessionID   int64 `json:"session_id"`
	TotalPoints int   `json:"total_points"`
}

type responseItem struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Score      *int   `json:"score" validate:"required"`
	Notes      string `json:"notes,omitempty" validate:"max=4000"`
	Evidence   string `json:"evidence,omitempty" validate:"max=1024"`
}

type saveResponsesRequest struct {
	Responses []responseItem `json:"responses" validate:"required,dive"`
}

func (r saveResponsesRequest) inputs() []domain.ResponseInput {
	out := make([]domain.ResponseInput, 0, len(r.Responses))
	for _, item := range r.Responses {
		out = append(out, domain.ResponseInput{
			QuestionID: item.QuestionID,
			Score:      *item.Score,
			Notes:      item.Notes,
			Evidence:   item.Evidence,
		})
	}
	return out
}

type saveResponsesResponse struct {
	SavedCount int `json:"saved_count"`
}

type snapshotRequest struct {
	TriggeredBy string `json:"triggered_by" validate:"required,max=200"`
}

type requirementStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=current outdated missing not_applicable"`
}

type snapshotListResponse struct {
	Snapshots []domain.ReadinessSnapshot `json:"snapshots"`
}

type sessionResponse struct {
	domain.Session
	Scored bool `json:"scored"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{Session: s, Scored: s.Scored()}
}
