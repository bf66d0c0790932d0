// Package server manages application startup and shutdown: services start in
// registration order and stop in reverse on SIGINT, SIGTERM, service failure,
// or context cancellation.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service stops
// or fails; Stop asks it to wind down.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }
func (f *FuncService) Stop()        { f.StopFn() }

// Lifecycle runs a set of named services and coordinates their shutdown.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates an empty lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Services start in the order they are added
// and stop in reverse.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every registered service and blocks until a termination signal
// arrives, the context is cancelled, or a service fails.
//
// Postcondition: All services have been stopped when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(l.services))
	for _, ns := range l.services {
		ns := ns
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
				)
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.stopAll()
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return nil
}

func (l *Lifecycle) stopAll() {
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
	}
}
