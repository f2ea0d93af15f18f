package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"timetracker/internal/domain"
	"timetracker/internal/http/dto"
	"timetracker/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (domain.Task, error)
	StartTask(ctx context.Context, id int64) error
	StopTask(ctx context.Context, id int64) error
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
}

type TaskHandler struct {
	taskService TaskService
	logger      *slog.Logger
}

func New(taskService TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{taskService: taskService, logger: logger}
}

// POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), toFields(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(task))
}

// PATCH /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, toFields(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(task))
}

// POST /tasks/{id}/start
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.StartTask(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// POST /tasks/{id}/stop
func (h *TaskHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.StopTask(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(task))
}

// GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, toResponse(task))
	}

	writeJSON(w, http.StatusOK, response)
}

// GET /healthz
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (h *TaskHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, r, service.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func toFields(req dto.TaskRequest) domain.TaskFields {
	return domain.TaskFields{
		TaskName:    req.TaskName,
		Description: req.Description,
		Start:       req.Start,
		Finish:      req.Finish,
	}
}

func toResponse(task domain.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          task.ID,
		TaskName:    task.TaskName,
		Description: task.Description,
		Status:      string(task.Status),
		Start:       utc(task.Start),
		Finish:      utc(task.Finish),
	}
	if task.Duration != nil {
		seconds := task.Duration.Seconds()
		resp.Duration = &seconds
	}
	return resp
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
