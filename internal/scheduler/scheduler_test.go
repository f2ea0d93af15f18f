package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/workerpool"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
	done  chan struct{}
}

func (f *fakeSweeper) CloseOpenTasks(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.done != nil {
		f.done <- struct{}{}
	}
	return 2, f.err
}

type recordingPool struct {
	jobs []workerpool.Job
	err  error
}

func (p *recordingPool) Enqueue(job workerpool.Job) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Validation(t *testing.T) {
	pool := &recordingPool{}

	_, err := New(Config{}, nil, pool, nil)
	assert.Error(t, err)

	_, err = New(Config{}, &fakeSweeper{}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{Schedule: "not a cron"}, &fakeSweeper{}, pool, nil)
	assert.Error(t, err)

	// five-field expressions are rejected, the seconds field is required
	_, err = New(Config{Schedule: "59 23 * * *"}, &fakeSweeper{}, pool, nil)
	assert.Error(t, err)

	s, err := New(Config{}, &fakeSweeper{}, pool, nil)
	require.NoError(t, err)
	require.Len(t, s.cron.Entries(), 1)
}

func TestNew_DefaultScheduleFiresAt2359(t *testing.T) {
	s, err := New(Config{Location: time.UTC}, &fakeSweeper{}, &recordingPool{}, quietLogger())
	require.NoError(t, err)

	entry := s.cron.Entries()[0]
	from := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	next := entry.Schedule.Next(from)

	assert.Equal(t, time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC), next)
	assert.Equal(t, time.Date(2024, 7, 2, 23, 59, 0, 0, time.UTC), entry.Schedule.Next(next))
}

func TestTrigger_EnqueuesSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	pool := &recordingPool{}

	s, err := New(Config{}, sweeper, pool, quietLogger())
	require.NoError(t, err)

	s.Trigger()
	require.Len(t, pool.jobs, 1)
	assert.Equal(t, sweepJobName, pool.jobs[0].Name)

	require.NoError(t, pool.jobs[0].Run(context.Background()))
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestTrigger_PoolFullDropsTick(t *testing.T) {
	s, err := New(Config{}, &fakeSweeper{}, &recordingPool{err: workerpool.ErrPoolFull}, quietLogger())
	require.NoError(t, err)

	assert.NotPanics(t, s.Trigger)
}

func TestSweep_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s, err := New(Config{}, &fakeSweeper{err: boom}, &recordingPool{}, quietLogger())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Sweep(context.Background()), boom)
}

func TestTrigger_RunsThroughRealPool(t *testing.T) {
	sweeper := &fakeSweeper{done: make(chan struct{}, 1)}
	pool := workerpool.New(1, quietLogger())
	pool.Start(1)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	s, err := New(Config{Timeout: time.Second}, sweeper, pool, quietLogger())
	require.NoError(t, err)

	s.Trigger()

	select {
	case <-sweeper.done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{}, &fakeSweeper{}, &recordingPool{}, quietLogger())
	require.NoError(t, err)

	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
