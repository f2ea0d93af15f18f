package dto

import "time"

// TaskRequest is the body of POST /tasks and PATCH /tasks/{id}. Absent or
// null fields decode to nil.
type TaskRequest struct {
	TaskName    *string    `json:"taskName"`
	Description *string    `json:"description"`
	Start       *time.Time `json:"start"`
	Finish      *time.Time `json:"finish"`
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	TaskName    string     `json:"taskName"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Start       *time.Time `json:"start"`
	Finish      *time.Time `json:"finish"`
	Duration    *float64   `json:"duration"` // seconds
}

type ErrorResponse struct {
	RequestPath string `json:"requestPath"`
	Message     string `json:"message"`
	StatusCode  int    `json:"statusCode"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
