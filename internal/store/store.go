package store

import (
	"context"
	"errors"

	"timetracker/internal/domain"
)

var ErrNotFound = errors.New("task not found")

type TaskStore interface {
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Save(ctx context.Context, t domain.Task) (domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
}
