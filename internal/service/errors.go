package service

import (
	"errors"
	"net/http"
)

// Kind tags a lifecycle failure. Each kind maps to one HTTP status.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindCreateTask
	KindUpdateTask
	KindTaskNotFound
	KindTaskNotStarted
	KindStartStop
	KindScheduler
)

var kindStatus = map[Kind]int{
	KindInvalidInput:   http.StatusBadRequest,
	KindCreateTask:     http.StatusBadRequest,
	KindUpdateTask:     http.StatusBadRequest,
	KindTaskNotFound:   http.StatusNotFound,
	KindTaskNotStarted: http.StatusConflict,
	KindStartStop:      http.StatusInternalServerError,
	KindScheduler:      http.StatusBadGateway,
}

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindInvalidInput:   "invalid_input",
	KindCreateTask:     "create_task",
	KindUpdateTask:     "update_task",
	KindTaskNotFound:   "task_not_found",
	KindTaskNotStarted: "task_not_started",
	KindStartStop:      "start_stop",
	KindScheduler:      "scheduler",
}

// HTTPStatus returns the status code the API layer answers with.
func (k Kind) HTTPStatus() int {
	if code, ok := kindStatus[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is the error type returned by every TaskService operation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidID      = &Error{Kind: KindInvalidInput, Message: "invalid task id"}
	ErrCreateTask     = &Error{Kind: KindCreateTask, Message: "error creating task"}
	ErrUpdateTask     = &Error{Kind: KindUpdateTask, Message: "error updating task"}
	ErrTaskNotFound   = &Error{Kind: KindTaskNotFound, Message: "task not found"}
	ErrTaskNotStarted = &Error{Kind: KindTaskNotStarted, Message: "task was never started"}
	ErrStartStop      = &Error{Kind: KindStartStop, Message: "unexpected error starting or stopping task"}
	ErrScheduler      = &Error{Kind: KindScheduler, Message: "error closing tasks"}
)

var ErrStoreNil = errors.New("task store is nil")

// KindOf reports the kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}
