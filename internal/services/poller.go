package services

import (
	"context"
	"sync"
	"time"
)

// Poller re-runs a fetch on a fixed interval until stopped. Stopping tears
// the timer down and prevents any further invocations, so results can never
// land against a view that no longer exists.
type Poller struct {
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poller with the given interval (default 60s).
func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run invokes fn immediately and then on every tick. The context passed to fn
// is cancelled when the poller stops.
func (p *Poller) Run(fn func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-p.done
			cancel()
		}()

		fn(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-p.done:
				return
			}
		}
	}()
}

// Stop cancels all running loops and waits for them to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}
