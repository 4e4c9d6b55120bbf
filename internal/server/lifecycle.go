// Package server runs the long-lived parts of a binary together and shuts
// them down on SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is one component of a binary. Run blocks until the work is done or
// ctx is cancelled.
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context) error

// Run calls f.
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle runs named services concurrently. The first service to fail
// cancels the rest, and so does a termination signal.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and waits for all of them to return.
//
// Postcondition: Returns nil when every service finished cleanly or stopped
// because of a signal or ctx; otherwise the first service error.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, ns := range services {
		g.Go(func() error {
			svcStart := time.Now()
			l.logger.Info("starting service", zap.String("service", ns.name))
			err := ns.service.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				return fmt.Errorf("service %s: %w", ns.name, err)
			}
			l.logger.Info("service stopped",
				zap.String("service", ns.name),
				zap.Duration("uptime", time.Since(svcStart)),
			)
			return nil
		})
	}
	err := g.Wait()
	if ctx.Err() != nil && err == nil {
		l.logger.Info("shutdown requested")
	}
	l.logger.Info("all services stopped",
		zap.Int("count", len(services)),
		zap.Duration("total_uptime", time.Since(start)),
	)
	return err
}
