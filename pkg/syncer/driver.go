package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller is one periodic sync task owned by the Driver.
type Poller interface {
	Name() string
	Interval() time.Duration
	RunCycle(ctx context.Context) error
}

// Driver owns the poll loops' lifecycle. Each poller runs its cycles in its
// own goroutine on its own cadence; a cycle always runs to completion before
// the next one is scheduled, so cycles of the same poller never overlap. A
// panic or transient error in one poller's cycle never terminates the other
// poller's loop.
type Driver struct {
	pollers []Poller
}

// NewDriver creates a Driver over the given pollers.
func NewDriver(pollers ...Poller) *Driver {
	return &Driver{pollers: pollers}
}

// Run starts all poll loops and blocks until the context is cancelled and
// every in-flight cycle has finished, or until every loop has stopped on a
// fatal error.
func (d *Driver) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, p := range d.pollers {
		wg.Add(1)
		go func(p Poller) {
			defer wg.Done()
			d.runLoop(ctx, p)
		}(p)
	}

	wg.Wait()
}

func (d *Driver) runLoop(ctx context.Context, p Poller) {
	slog.Info("starting poll loop", "poller", p.Name(), "interval", p.Interval())

	timer := time.NewTimer(0) // first cycle runs immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping poll loop", "poller", p.Name())
			return
		case <-timer.C:
		}

		if err := d.runCycle(ctx, p); err != nil {
			slog.Error("stopping poll loop on fatal error", "poller", p.Name(), "error", err)
			return
		}

		timer.Reset(p.Interval())
	}
}

// runCycle runs one cycle, converting panics and transient errors into log
// entries. Only fatal errors are returned.
func (d *Driver) runCycle(ctx context.Context, p Poller) (fatal error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("poll cycle panicked", "poller", p.Name(), "panic", r)
			fatal = nil
		}
	}()

	if err := p.RunCycle(ctx); err != nil {
		if IsFatal(err) {
			return err
		}
		// Transient: the poller left its cursor untouched and the cycle is
		// retried on the next interval.
		slog.Error("poll cycle failed", "poller", p.Name(), "error", err)
	}

	return nil
}
