package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timetracker/internal/domain"
	"timetracker/internal/store"
)

type TaskStore interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Save(ctx context.Context, task domain.Task) (domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
}

// TaskService owns the task lifecycle: create, edit, start and stop timers,
// and the nightly close of tasks left running.
type TaskService struct {
	store  TaskStore
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*TaskService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *TaskService) { s.logger = logger }
}

func New(store TaskStore, opts ...Option) (*TaskService, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	s := &TaskService{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *TaskService) CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	task := domain.Task{Status: domain.StatusCreated}
	fields.Apply(&task)

	created, err := s.store.Create(ctx, task)
	if err != nil {
		s.logger.Error("create task failed", "error", err)
		return domain.Task{}, newError(KindCreateTask, ErrCreateTask.Message, err)
	}

	s.logger.Info("task created", "id", created.ID)
	return created, nil
}

// UpdateTask overwrites only the supplied fields. Status is never touched.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (domain.Task, error) {
	s.logger.Info("updating task", "id", id)

	task, err := s.load(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	fields.Apply(&task)

	saved, err := s.store.Save(ctx, task)
	if err != nil {
		s.logger.Error("update task failed", "id", id, "error", err)
		return domain.Task{}, newError(KindUpdateTask, ErrUpdateTask.Message, err)
	}
	return saved, nil
}

// StartTask (re)starts the timer. Running and closed tasks are restarted too.
func (s *TaskService) StartTask(ctx context.Context, id int64) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	task.Start = &now
	task.Status = domain.StatusInProgress

	s.logger.Info("task started", "id", id, "at", now.Format(time.TimeOnly))

	if _, err := s.store.Save(ctx, task); err != nil {
		s.logger.Error("start task failed", "id", id, "error", err)
		return newError(KindStartStop, "unexpected error starting task", err)
	}
	return nil
}

// StopTask closes the task and records how long it ran. A task that was never
// started, or whose start lies after now, is rejected unchanged.
func (s *TaskService) StopTask(ctx context.Context, id int64) error {
	s.logger.Info("stopping task", "id", id)

	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if task.Start == nil {
		return newError(KindTaskNotStarted, fmt.Sprintf("task %d was never started", id), nil)
	}

	finish := s.now()
	if finish.Before(*task.Start) {
		return newError(KindTaskNotStarted, fmt.Sprintf("task %d starts after %s", id, finish.Format(time.RFC3339)), nil)
	}
	duration := finish.Sub(*task.Start)

	task.Finish = &finish
	task.Status = domain.StatusClose
	task.Duration = &duration

	if _, err := s.store.Save(ctx, task); err != nil {
		s.logger.Error("stop task failed", "id", id, "error", err)
		return newError(KindStartStop, "unexpected error stopping task", err)
	}
	return nil
}

// CloseOpenTasks moves every IN_PROGRESS task to CLOSE without touching
// finish or duration. The first failing save aborts the sweep; tasks saved
// before it stay closed and the rest are picked up by the next run.
func (s *TaskService) CloseOpenTasks(ctx context.Context) (int, error) {
	s.logger.Info("closing tasks in progress")

	tasks, err := s.store.ListByStatus(ctx, domain.StatusInProgress)
	if err != nil {
		s.logger.Error("list tasks in progress failed", "error", err)
		return 0, newError(KindScheduler, ErrScheduler.Message, err)
	}

	closed := 0
	for _, task := range tasks {
		task.Status = domain.StatusClose
		if _, err := s.store.Save(ctx, task); err != nil {
			s.logger.Error("close task failed", "id", task.ID, "closed", closed, "pending", len(tasks)-closed, "error", err)
			return closed, newError(KindScheduler, ErrScheduler.Message, err)
		}
		closed++
	}

	s.logger.Info("closed tasks in progress", "count", closed)
	return closed, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return s.load(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) load(ctx context.Context, id int64) (domain.Task, error) {
	if id <= 0 {
		return domain.Task{}, ErrInvalidID
	}

	task, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Task{}, newError(KindTaskNotFound, fmt.Sprintf("task %d not found", id), err)
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("load task %d: %w", id, err)
	}
	return task, nil
}
