package domain

import "context"

// Repository fetches health reports from the backend.
type Repository interface {
	// GetHealth returns the backend's own health.
	GetHealth(ctx context.Context) (*Health, error)

	// MonitorHealth returns one report per monitored service.
	MonitorHealth(ctx context.Context) ([]*Health, error)
}
