package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

const maxBodyBytes = 1 << 20

var errNoPinger = errors.New("dependency not configured")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

// agentID returns the agent resolved by AgentMiddleware.
func agentID(r *http.Request) uuid.UUID {
	id, _ := AgentIDFromContext(r.Context())
	return id
}

func idParam(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+what+"_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryParam returns the first non-empty value among the spellings of name
// (PageSize, pageSize, page_size, pagesize).
func queryParam(r *http.Request, name string) string {
	q := r.URL.Query()
	for _, key := range rowmap.Variants(name) {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

// intQuery parses an optional integer query parameter; absent means 0.
func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := queryParam(r, name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query_parameter", name+" must be an integer")
		return 0, false
	}
	return n, true
}

// handleServiceError maps the service error categories onto HTTP statuses.
// Unclassified failures are 500 with the underlying message attached.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *appointment.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, ConflictResponse{
			Error:     "appointment_conflict",
			Details:   conflict.Result.Message,
			Conflicts: conflict.Result,
		})
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, apperr.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", err.Error())
	case errors.Is(err, apperr.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "invalid_reference", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperr.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, apperr.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		logger.Log.WithFields(logrus.Fields{
			"request_id": GetRequestID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
