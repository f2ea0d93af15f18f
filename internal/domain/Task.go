package domain

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	StatusCreated    TaskStatus = "CREATED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusClose      TaskStatus = "CLOSE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusInProgress, StatusClose:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return status, nil
}

type Task struct {
	ID          int64
	TaskName    string
	Description string

	Status TaskStatus

	Start    *time.Time
	Finish   *time.Time
	Duration *time.Duration // finish - start, computed on stop only
}

// TaskFields carries the optional, client-supplied part of a task. A nil
// field means "not supplied".
type TaskFields struct {
	TaskName    *string
	Description *string
	Start       *time.Time
	Finish      *time.Time
}

// Apply copies every supplied field onto t and leaves the rest untouched.
func (f TaskFields) Apply(t *Task) {
	if f.TaskName != nil {
		t.TaskName = *f.TaskName
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Start != nil {
		start := *f.Start
		t.Start = &start
	}
	if f.Finish != nil {
		finish := *f.Finish
		t.Finish = &finish
	}
}
