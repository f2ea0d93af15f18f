// Package sqlstore persists tasks in SQLite or PostgreSQL.
//
// Timestamps are stored as RFC 3339 text in UTC and durations as nanoseconds so
// that both dialects share one row layout.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timetracker/internal/domain"
	"timetracker/internal/store"
	"timetracker/internal/store/sqlstore/driver"
)

//go:embed schema/*/*.sql
var schemaFS embed.FS

const taskColumns = "id, task_name, description, status, start_time, finish_time, duration_ns"

var _ store.TaskStore = (*TaskStore)(nil)

// TaskStore is a store.TaskStore backed by a SQL driver.
type TaskStore struct {
	drv driver.Driver
}

// New wraps an already opened driver.
func New(drv driver.Driver) *TaskStore {
	return &TaskStore{drv: drv}
}

// Open opens a database of the given dialect. For SQLite the parent directory
// of the database file is created if needed.
func Open(dialect driver.Dialect, dsn string) (*TaskStore, error) {
	if dialect == driver.DialectSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}
	if err := drv.Open(dsn); err != nil {
		return nil, err
	}

	return New(drv), nil
}

// Migrate applies the embedded schema migrations.
func (s *TaskStore) Migrate(ctx context.Context) error {
	return s.drv.Migrate(ctx, schemaFS)
}

// Close closes the database connection.
func (s *TaskStore) Close() error {
	return s.drv.Close()
}

// Dialect returns the dialect of the underlying driver.
func (s *TaskStore) Dialect() driver.Dialect {
	return s.drv.Dialect()
}

func (s *TaskStore) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.Status == "" {
		t.Status = domain.StatusCreated
	}

	q := s.bind(`INSERT INTO tasks (task_name, description, status, start_time, finish_time, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	err := s.drv.QueryRow(ctx, q,
		t.TaskName, t.Description, string(t.Status),
		formatTime(t.Start), formatTime(t.Finish), durationValue(t.Duration),
	).Scan(&t.ID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return t, nil
}

func (s *TaskStore) Get(ctx context.Context, id int64) (domain.Task, error) {
	row := s.drv.QueryRow(ctx, s.bind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, fmt.Errorf("task %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *TaskStore) Save(ctx context.Context, t domain.Task) (domain.Task, error) {
	q := s.bind(`UPDATE tasks SET task_name = ?, description = ?, status = ?,
		start_time = ?, finish_time = ?, duration_ns = ? WHERE id = ?`)

	res, err := s.drv.Exec(ctx, q,
		t.TaskName, t.Description, string(t.Status),
		formatTime(t.Start), formatTime(t.Finish), durationValue(t.Duration),
		t.ID,
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if n == 0 {
		return domain.Task{}, fmt.Errorf("task %d: %w", t.ID, store.ErrNotFound)
	}

	return t, nil
}

func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	return s.query(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
}

func (s *TaskStore) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return s.query(ctx, s.bind("SELECT "+taskColumns+" FROM tasks WHERE status = ? ORDER BY id"), string(status))
}

func (s *TaskStore) query(ctx context.Context, q string, args ...any) ([]domain.Task, error) {
	rows, err := s.drv.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// bind rewrites ? placeholders into the driver's placeholder syntax.
func (s *TaskStore) bind(q string) string {
	if s.drv.Dialect() == driver.DialectSQLite {
		return q
	}

	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(s.drv.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (domain.Task, error) {
	var (
		t        domain.Task
		status   string
		start    sql.NullString
		finish   sql.NullString
		duration sql.NullInt64
	)

	if err := sc.Scan(&t.ID, &t.TaskName, &t.Description, &status, &start, &finish, &duration); err != nil {
		return domain.Task{}, err
	}

	var err error
	if t.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
	}
	if t.Start, err = parseTime(start); err != nil {
		return domain.Task{}, fmt.Errorf("task %d start_time: %w", t.ID, err)
	}
	if t.Finish, err = parseTime(finish); err != nil {
		return domain.Task{}, fmt.Errorf("task %d finish_time: %w", t.ID, err)
	}
	if duration.Valid {
		d := time.Duration(duration.Int64)
		t.Duration = &d
	}

	return t, nil
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func durationValue(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d), Valid: true}
}
