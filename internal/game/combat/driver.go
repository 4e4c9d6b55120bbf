package combat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Driver polls a Session on a fixed tick. Host commands submitted from other
// goroutines run on the driver's goroutine between ticks, so the session is
// only ever touched by one goroutine.
//
// Invariant: Update is called at most once per tick interval.
type Driver struct {
	session  *Session
	interval time.Duration
	commands chan func(*Session)
	logger   *zap.Logger
}

// NewDriver returns a driver that ticks s every interval.
//
// Precondition: s must be non-nil and interval must be > 0.
func NewDriver(s *Session, interval time.Duration, logger *zap.Logger) *Driver {
	if s == nil {
		panic("combat.NewDriver: session must not be nil")
	}
	if interval <= 0 {
		panic("combat.NewDriver: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		session:  s,
		interval: interval,
		commands: make(chan func(*Session), 16),
		logger:   logger,
	}
}

// Submit queues fn to run against the session on the driver goroutine. It
// blocks when the command buffer is full and gives up when ctx is done.
func (d *Driver) Submit(ctx context.Context, fn func(*Session)) error {
	select {
	case d.commands <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the session if it is idle and ticks it until it is reported.
//
// Postcondition: Returns nil once the session is reported, or ctx.Err() when
// ctx is cancelled first.
func (d *Driver) Run(ctx context.Context) error {
	if d.session.Phase() == PhaseIdle {
		d.session.Start()
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			d.logger.Warn("battle driver cancelled", zap.Int("ticks", ticks), zap.Stringer("phase", d.session.Phase()))
			return ctx.Err()
		case fn := <-d.commands:
			fn(d.session)
		case <-ticker.C:
			ticks++
			d.session.Update()
			if d.session.IsReported() {
				d.logger.Debug("battle driver finished", zap.Int("ticks", ticks))
				return nil
			}
		}
	}
}
