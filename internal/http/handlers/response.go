package handlers

import (
	"encoding/json"
	"net/http"

	"timetracker/internal/http/dto"
	"timetracker/internal/http/middleware"
	"timetracker/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the error envelope; the status comes from the
// error's kind, anything unrecognised is a 500 carrying the raw message.
func (h *TaskHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := kind.HTTPStatus()

	attrs := []any{
		"path", r.URL.Path,
		"kind", kind.String(),
		"status", status,
		"request_id", middleware.RequestIDFrom(r.Context()),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Info("request rejected", attrs...)
	}

	writeJSON(w, status, dto.ErrorResponse{
		RequestPath: r.URL.Path,
		Message:     err.Error(),
		StatusCode:  status,
	})
}

func (h *TaskHandler) writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeError(w, r, &service.Error{Kind: service.KindInvalidInput, Message: msg})
}
