package scheduler

import (
	"context"
	"sync"
	"time"

	"randomkiwi/internal/ports"
)

const defaultInterval = 10 * time.Second

// TickerPrefetcher runs a job on a fixed interval until stopped.
type TickerPrefetcher struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.Prefetcher = (*TickerPrefetcher)(nil)

// NewTickerPrefetcher builds a prefetcher; non-positive intervals use the default.
func NewTickerPrefetcher(interval time.Duration) *TickerPrefetcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &TickerPrefetcher{interval: interval}
}

// Start begins ticking. Calling Start on a running prefetcher is a no-op.
func (p *TickerPrefetcher) Start(ctx context.Context, job func(context.Context)) error {
	if job == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				job(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop cancels the running job and waits for the loop to exit or ctx to expire.
func (p *TickerPrefetcher) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
