package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fsqa-audit-service/internal/app"
	"fsqa-audit-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SessionLocker serializes writers of one session. Implementations live in infra/memory
// and infra/redis.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID int64) (unlock func(), err error)
}

// Options tunes the REST and websocket handlers.
type Options struct {
	// Locks, when set, wraps SaveResponses and ComputeScore in a per-session lock.
	Locks    SessionLocker
	LockWait time.Duration
}

// Handler exposes the audit, readiness and residue use cases as JSON endpoints.
type Handler struct {
	audits    *app.AuditService
	readiness *app.ReadinessService
	residue   *app.ResidueService
	locks     SessionLocker
	lockWait  time.Duration
	validate  *validator.Validate
	log       *zap.Logger
}

func NewHandler(audits *app.AuditService, readiness *app.ReadinessService, residue *app.ResidueService, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.LockWait <= 0 {
		opts.LockWait = 5 * time.Second
	}
	return &Handler{
		audits:    audits,
		readiness: readiness,
		residue:   residue,
		locks:     opts.Locks,
		lockWait:  opts.LockWait,
		validate:  validator.New(),
		log:       log,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/sessions", h.createSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.getSession)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/responses", h.saveResponses)
	mux.HandleFunc("POST /api/v1/sessions/{id}/score", h.computeScore)
	mux.HandleFunc("GET /api/v1/facilities/{id}/readiness", h.computeReadiness)
	mux.HandleFunc("POST /api/v1/facilities/{id}/readiness/snapshots", h.saveSnapshot)
	mux.HandleFunc("GET /api/v1/facilities/{id}/readiness/snapshots", h.listSnapshots)
	mux.HandleFunc("PUT /api/v1/facilities/{id}/requirements/{code}", h.setRequirementStatus)
	mux.HandleFunc("GET /api/v1/facilities/{id}/residue-compliance", h.residueCompliance)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	session, err := h.audits.CreateSession(r.Context(), req.FacilityID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: session.ID, TotalPoints: session.TotalPoints})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	session, err := h.audits.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *Handler) saveResponses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req saveResponsesRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	var saved int
	err = h.withSessionLock(r.Context(), id, func() error {
		var err error
		saved, err = h.audits.SaveResponses(r.Context(), id, req.inputs())
		return err
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponsesResponse{SavedCount: saved})
}

func (h *Handler) computeScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var result domain.ScoreResult
	err = h.withSessionLock(r.Context(), id, func() error {
		var err error
		result, err = h.audits.ComputeScore(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) computeReadiness(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	readiness, err := h.readiness.ComputeReadiness(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, readiness)
}

func (h *Handler) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req snapshotRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	snapshot, err := h.readiness.SaveSnapshot(r.Context(), id, req.TriggeredBy)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, h.log, domain.Invalid("limit", "must be a non-negative integer"))
			return
		}
	}
	snapshots, err := h.readiness.ListSnapshots(r.Context(), id, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotListResponse{Snapshots: snapshots})
}

func (h *Handler) setRequirementStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req requirementStatusRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	code := r.PathValue("code")
	if err := h.readiness.SetRequirementStatus(r.Context(), id, code, domain.RequirementState(req.Status)); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) residueCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	compliance, err := h.residue.ComputeResidueCompliance(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, compliance)
}

func (h *Handler) bind(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// withSessionLock runs fn while holding the session lock when serialization is enabled.
func (h *Handler) withSessionLock(ctx context.Context, sessionID int64, fn func() error) error {
	if h.locks == nil {
		return fn()
	}
	lockCtx, cancel := context.WithTimeout(ctx, h.lockWait)
	defer cancel()
	unlock, err := h.locks.Lock(lockCtx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
