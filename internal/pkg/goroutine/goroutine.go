// Package goroutine runs fire-and-forget work, such as event publishing, under
// a concurrency cap and lets shutdown wait for it.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/u22n/platform/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a
// non-positive limit.
const DefaultMaxGoroutine int = 100

var (
	// ErrClosed is reported by Go once Wait has been called.
	ErrClosed = errors.New("goroutine: manager closed")
	// ErrLimitReached is reported by Go when every slot is busy.
	ErrLimitReached = errors.New("goroutine: limit reached")
)

// Manager runs functions in goroutines with a concurrency limit. Errors and
// recovered panics are collected and returned by Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error

	wg   sync.WaitGroup
	sema chan struct{}

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager allowing maxGoroutine tasks at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f without blocking. It returns ErrClosed after Wait and
// ErrLimitReached when the manager is saturated; in both cases f never runs
// and a warning is logged.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) error {
	if g == nil {
		return ErrClosed
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping new goroutine")
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, failed to start new goroutine")
		return ErrLimitReached
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()
		g.run(ctx, f)
	})

	return nil
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "because", rvr, "stack", stacktrace.Internal(0))
			g.collect(fmt.Errorf("goroutine: panic: %v", rvr))
		}
	}()

	if err := ctx.Err(); err != nil {
		slog.WarnContext(ctx, "goroutine canceled", "because", err)
		return
	}

	if err := f(ctx); err != nil {
		g.collect(err)
	}
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait stops accepting work, blocks until running tasks finish, and returns
// their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
