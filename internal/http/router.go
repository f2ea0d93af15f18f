package router

import (
	"log/slog"
	"net/http"

	"timetracker/internal/http/handlers"
	"timetracker/internal/http/middleware"
)

func New(handler *handlers.TaskHandler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /tasks", handler.Create)
	mux.HandleFunc("GET /tasks", handler.List)
	mux.HandleFunc("GET /tasks/{id}", handler.Get)
	mux.HandleFunc("PATCH /tasks/{id}", handler.Update)
	mux.HandleFunc("POST /tasks/{id}/start", handler.Start)
	mux.HandleFunc("POST /tasks/{id}/stop", handler.Stop)
	mux.HandleFunc("GET /healthz", handler.Health)

	return middleware.RequestID(middleware.AccessLog(logger)(mux))
}
