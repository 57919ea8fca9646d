package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopease/orderbot/internal/engine"
)

// requestTimeout bounds one idle wait for work so workers notice shutdown.
const requestTimeout = 30 * time.Second

// Handler processes one inbound event to completion. The conversation
// engine is the production implementation.
type Handler interface {
	Handle(ctx context.Context, ev engine.Event) error
}

// Worker pulls events from the manager and runs them through the handler.
type Worker struct {
	handler Handler
	manager *Manager
	limiter *RateLimiter
	logger  *slog.Logger
	id      int
}

// WorkerConfig holds worker dependencies.
type WorkerConfig struct {
	Handler Handler
	Manager *Manager
	Limiter *RateLimiter
	Logger  *slog.Logger
	ID      int
}

// NewWorker creates a worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		handler: cfg.Handler,
		manager: cfg.Manager,
		limiter: cfg.Limiter,
		logger:  logger,
		id:      cfg.ID,
	}
}

// Start processes events until the context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Debug("worker starting", "worker", w.id)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker shutting down", "worker", w.id)
			return ctx.Err()
		default:
			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			ev, err := w.manager.Request(reqCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				return err
			}
			if ev == nil {
				// Manager is shutting down.
				return nil
			}

			w.process(ctx, *ev)
		}
	}
}

// process runs one event and always completes it with the manager, so the
// user's queue is never left stuck in flight.
func (w *Worker) process(ctx context.Context, ev engine.Event) {
	defer w.manager.Complete(ev.UserID)

	if w.limiter != nil && !w.limiter.Allow(ev.UserID) {
		w.logger.Warn("rate limit exceeded, dropping event", "user", ev.UserID)
		return
	}

	if err := w.handler.Handle(ctx, ev); err != nil {
		w.logger.Error("failed to handle event", "worker", w.id, "user", ev.UserID, "error", err)
	}
}

// Pool runs a fixed set of workers.
type Pool struct {
	workers []*Worker
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// PoolConfig holds pool configuration.
type PoolConfig struct {
	Handler Handler
	Manager *Manager
	Limiter *RateLimiter
	Logger  *slog.Logger
	Size    int
}

// NewPool creates a worker pool.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", cfg.Size)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := make([]*Worker, cfg.Size)
	for i := range workers {
		workers[i] = NewWorker(WorkerConfig{
			Handler: cfg.Handler,
			Manager: cfg.Manager,
			Limiter: cfg.Limiter,
			Logger:  logger,
			ID:      i + 1,
		})
	}

	return &Pool{workers: workers, logger: logger}, nil
}

// Start launches all workers and blocks until they exit.
func (p *Pool) Start(ctx context.Context) error {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("worker exited with error", "worker", w.id, "error", err)
			}
		}(w)
	}

	p.wg.Wait()
	return nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}
