package typing

import (
	"context"
	"sync"
	"time"
)

// Frame is what a Driver hands to its sink after every tick.
type Frame struct {
	Event     Event
	TextIndex int
	Revealed  int
	Lines     []string
	Text      string
}

func frameOf(t *Typer, ev Event) Frame {
	idx, rev := t.Position()
	return Frame{
		Event:     ev,
		TextIndex: idx,
		Revealed:  rev,
		Lines:     t.Lines(),
		Text:      t.String(),
	}
}

// Sink receives frames. It runs on the driver goroutine, so the next tick
// is not scheduled until it returns.
type Sink func(Frame)

// Driver reveals a Typer on a timer.
type Driver struct {
	typer      *Typer
	onComplete func()
	once       sync.Once
	newTimer   func(time.Duration) (<-chan time.Time, func() bool)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithOnComplete registers a callback fired exactly once, after the last text is fully visible.
// It is never fired when the run is cancelled first.
func WithOnComplete(fn func()) DriverOption {
	return func(d *Driver) {
		d.onComplete = fn
	}
}

// NewDriver creates a Driver for t.
func NewDriver(t *Typer, opts ...DriverOption) *Driver {
	d := &Driver{
		typer: t,
		newTimer: func(delay time.Duration) (<-chan time.Time, func() bool) {
			timer := time.NewTimer(delay)
			return timer.C, timer.Stop
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Typer returns the driven typer. It must not be touched while Run is active.
func (d *Driver) Typer() *Typer {
	return d.typer
}

// Run ticks the typer until it is done or ctx is cancelled.
// It returns nil on completion and ctx.Err() on cancellation. A cancelled run
// leaves the typer as it was after the last completed tick.
func (d *Driver) Run(ctx context.Context, sink Sink) error {
	if d.typer.Done() {
		d.complete()
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fire, stop := d.newTimer(d.typer.Delay())
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case <-fire:
		}

		ev := d.typer.Advance()
		if sink != nil {
			sink(frameOf(d.typer, ev))
		}
		if ev == EventComplete {
			d.complete()
			return nil
		}
	}
}

func (d *Driver) complete() {
	d.once.Do(func() {
		if d.onComplete != nil {
			d.onComplete()
		}
	})
}

// Animation is a running Driver.
type Animation struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start runs the driver on its own goroutine.
func (d *Driver) Start(ctx context.Context, sink Sink) *Animation {
	ctx, cancel := context.WithCancel(ctx)
	a := &Animation{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		defer cancel()
		a.err = d.Run(ctx, sink)
	}()
	return a
}

// Done is closed when the animation completes or is stopped.
func (a *Animation) Done() <-chan struct{} {
	return a.done
}

// Stop cancels a pending tick and waits for the goroutine to exit.
func (a *Animation) Stop() {
	a.cancel()
	<-a.done
}

// Err returns nil if the animation completed, or the cancellation cause.
// It is only meaningful after Done is closed.
func (a *Animation) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

// Play is a convenience that types texts into sink and blocks until done.
func Play(ctx context.Context, texts []string, sink Sink, opts ...Option) error {
	return NewDriver(New(texts, opts...)).Run(ctx, sink)
}
