package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"timetracker/internal/domain"
	"timetracker/internal/store"
)

var ErrNotInitialized = errors.New("task store not initialized")

var _ store.TaskStore = (*TaskStore)(nil)

type TaskStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]domain.Task
}

func New() *TaskStore {
	return &TaskStore{
		tasks: make(map[int64]domain.Task),
	}
}

func (ts *TaskStore) Create(_ context.Context, task domain.Task) (domain.Task, error) {
	if ts.tasks == nil {
		return domain.Task{}, ErrNotInitialized
	}

	id := atomic.AddInt64(&ts.nextID, 1)
	task.ID = id

	// callers always hand over CREATED, this only guards the zero value
	if task.Status == "" {
		task.Status = domain.StatusCreated
	}

	ts.mu.Lock()
	ts.tasks[id] = clone(task)
	ts.mu.Unlock()

	return task, nil
}

func (ts *TaskStore) Get(_ context.Context, id int64) (domain.Task, error) {
	ts.mu.RLock()
	task, ok := ts.tasks[id]
	ts.mu.RUnlock()

	if !ok {
		return domain.Task{}, fmt.Errorf("task %d: %w", id, store.ErrNotFound)
	}
	return clone(task), nil
}

func (ts *TaskStore) Save(_ context.Context, task domain.Task) (domain.Task, error) {
	if !task.Status.Valid() {
		return domain.Task{}, fmt.Errorf("task %d: invalid status %q", task.ID, task.Status)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, ok := ts.tasks[task.ID]; !ok {
		return domain.Task{}, fmt.Errorf("task %d: %w", task.ID, store.ErrNotFound)
	}
	ts.tasks[task.ID] = clone(task)

	return task, nil
}

func (ts *TaskStore) List(_ context.Context) ([]domain.Task, error) {
	return ts.collect(func(domain.Task) bool { return true })
}

func (ts *TaskStore) ListByStatus(_ context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return ts.collect(func(t domain.Task) bool { return t.Status == status })
}

func (ts *TaskStore) collect(keep func(domain.Task) bool) ([]domain.Task, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if ts.tasks == nil {
		return nil, ErrNotInitialized
	}

	tasks := make([]domain.Task, 0, len(ts.tasks))
	for _, t := range ts.tasks {
		if keep(t) {
			tasks = append(tasks, clone(t))
		}
	}

	// map order is random, callers expect creation order
	slices.SortFunc(tasks, func(a, b domain.Task) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return tasks, nil
}

// clone detaches the pointer fields so stored tasks can't be mutated from outside.
func clone(t domain.Task) domain.Task {
	if t.Start != nil {
		v := *t.Start
		t.Start = &v
	}
	if t.Finish != nil {
		v := *t.Finish
		t.Finish = &v
	}
	if t.Duration != nil {
		v := *t.Duration
		t.Duration = &v
	}
	return t
}
