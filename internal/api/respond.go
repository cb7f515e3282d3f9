package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/saved"
)

// envelope is the JSON body of every API response.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("encode response failed", "err", err)
	}
}

// ok writes {success: true, message?, ...fields}.
func ok(w http.ResponseWriter, code int, message string, fields envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, code, body)
}

// fail writes {success: false, message} with the status implied by err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	body := envelope{"success": false}
	if msg, isApp := apperr.Message(err); isApp && apperr.KindOf(err) != apperr.KindInternal {
		body["message"] = msg
	} else {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		body["message"] = "Internal server error"
		if !s.production {
			body["error"] = err.Error()
		}
	}
	writeJSON(w, code, body)
}

// statusOf maps an error to its HTTP status code.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidCredentials:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		// Signup and saving a job have always answered 400 for duplicates.
		if auth.IsDuplicateEmail(err) || saved.IsAlreadySaved(err) {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
