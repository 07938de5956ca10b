package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fsqa-audit-service/internal/app"
	"fsqa-audit-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler runs a live audit over a websocket: the auditor streams responses as they walk
// the facility and receives the recomputed score after each batch.
type WSHandler struct {
	audits   *app.AuditService
	api      *Handler
	upgrader websocket.Upgrader
	validate *validator.Validate
	log      *zap.Logger
}

func NewWSHandler(audits *app.AuditService, api *Handler, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		audits: audits,
		api:    api,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validate: validator.New(),
		log:      log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the audit use cases.
//
// Inbound:  {"type":"responses","payload":{"responses":[...]}} and {"type":"score"}.
// Outbound: "session" once, then "saved", "score" or "error".
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.URL.Query().Get("sessionId"), 10, 64)
	if err != nil || sessionID <= 0 {
		http.Error(w, "missing or invalid sessionId", http.StatusBadRequest)
		return
	}
	session, err := h.audits.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	push := func(msgs ...outboundMessage[any]) bool {
		for _, msg := range msgs {
			select {
			case send <- msg:
			case <-writerDone:
				return false
			}
		}
		return true
	}

	push(outboundMessage[any]{Type: "session", Payload: newSessionResponse(session)})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !push(h.handle(r, sessionID, inbound)...) {
			break
		}
	}

	close(send)
	<-writerDone
}

// handle processes one inbound message and returns the replies in order.
func (h *WSHandler) handle(r *http.Request, sessionID int64, inbound inboundMessage) []outboundMessage[any] {
	switch inbound.Type {
	case "responses":
		var payload saveResponsesRequest
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{errorMessage(h.log, domain.Invalid("payload", "invalid responses payload"))}
		}
		if err := h.validate.Struct(&payload); err != nil {
			return []outboundMessage[any]{errorMessage(h.log, err)}
		}
		var saved int
		err := h.api.withSessionLock(r.Context(), sessionID, func() error {
			var err error
			saved, err = h.audits.SaveResponses(r.Context(), sessionID, payload.inputs())
			return err
		})
		if err != nil {
			return []outboundMessage[any]{errorMessage(h.log, err)}
		}
		return []outboundMessage[any]{
			{Type: "saved", Payload: saveResponsesResponse{SavedCount: saved}},
			h.score(r, sessionID),
		}
	case "score":
		return []outboundMessage[any]{h.score(r, sessionID)}
	default:
		return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}}
	}
}

func (h *WSHandler) score(r *http.Request, sessionID int64) outboundMessage[any] {
	var result domain.ScoreResult
	err := h.api.withSessionLock(r.Context(), sessionID, func() error {
		var err error
		result, err = h.audits.ComputeScore(r.Context(), sessionID)
		return err
	})
	if err != nil {
		return errorMessage(h.log, err)
	}
	return outboundMessage[any]{Type: "score", Payload: result}
}

func errorMessage(log *zap.Logger, err error) outboundMessage[any] {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error("ws request failed", zap.Error(err))
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: body.Error, Field: body.Field}}
}
