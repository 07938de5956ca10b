package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fsqa-audit-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorBody struct {
	Error   string            `json:"error"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Persistence and unknown
// failures are logged with their cause and reported generically.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, errorBody) {
	var (
		fieldErrs validator.ValidationErrors
		verr      *domain.ValidationError
	)
	switch {
	case errors.As(err, &fieldErrs):
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Namespace()] = fe.Tag()
		}
		return http.StatusBadRequest, errorBody{Error: "validation failed", Details: details}
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: verr.Error(), Field: verr.Field}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrSessionLocked):
		return http.StatusConflict, errorBody{Error: domain.ErrSessionLocked.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("body", "malformed JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return id, nil
}
