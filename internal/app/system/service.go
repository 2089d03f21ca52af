package system

import "context"

// Service represents a lifecycle-managed component. Background workers
// such as the realtime feed watcher implement this so the application
// can start and stop them deterministically.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NoopService satisfies Service for components that have no background
// work of their own but still want to appear in the lifecycle registry.
type NoopService struct {
	ServiceName string
}

func (n NoopService) Name() string { return n.ServiceName }

func (n NoopService) Start(ctx context.Context) error { return nil }

func (n NoopService) Stop(ctx context.Context) error { return nil }
