package edgeserve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Background runs fire-and-forget tasks detached from the request that
// scheduled them. Task errors are logged and reported to the optional
// observer but never returned to the scheduler.
type Background struct {
	wg      sync.WaitGroup
	timeout time.Duration
	observe func(task string, err error)
}

// NewBackground creates a runner whose tasks get their own context bounded by
// timeout (default: 30s). observe may be nil.
func NewBackground(timeout time.Duration, observe func(task string, err error)) *Background {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Background{timeout: timeout, observe: observe}
}

// Go schedules fn and returns immediately.
func (b *Background) Go(task string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		// The request context is gone by the time most tasks run.
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		err := b.run(ctx, fn)
		if err != nil {
			slog.Warn("background task failed", "task", task, "err", err)
		} else {
			slog.Debug("background task done", "task", task)
		}

		if b.observe != nil {
			b.observe(task, err)
		}
	}()
}

func (b *Background) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until all scheduled tasks finish or ctx is done.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for background tasks: %w", ctx.Err())
	}
}
