package workerpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrPoolFull   = errors.New("job pool is full")
	ErrPoolClosed = errors.New("job pool is closed")
)

// Job is a unit of background work. The context is cancelled when the pool
// is forced to stop.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type JobPool interface {
	Enqueue(job Job) error
}

type Pool struct {
	queue  chan Job
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(poolSize int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:  make(chan Job, poolSize),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers. With zero workers jobs only queue up.
func (p *Pool) Start(workers int) {
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Enqueue never blocks: a full queue is reported as ErrPoolFull.
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. If ctx
// expires first, running jobs are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()

	for job := range p.queue {
		p.run(n, job)
	}
}

func (p *Pool) run(n int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "job", job.Name, "worker", n, "panic", r)
		}
	}()

	if err := job.Run(p.ctx); err != nil {
		p.logger.Error("job failed", "job", job.Name, "worker", n, "error", err)
		return
	}
	p.logger.Debug("job done", "job", job.Name, "worker", n)
}
