// Package usecase orchestrates the health reads behind the dashboard
// routes.
package usecase

import (
	"context"

	"healthdash/internal/health/domain"
	"healthdash/observability/types"
)

// GetHealth returns the backend's own health report.
type GetHealth struct {
	repo   domain.Repository
	logger types.Logger
}

// NewGetHealth creates the use case.
func NewGetHealth(repo domain.Repository, logger types.Logger) *GetHealth {
	return &GetHealth{repo: repo, logger: logger}
}

// Execute fetches the report. Repository errors are returned unchanged.
func (uc *GetHealth) Execute(ctx context.Context) (*domain.Health, error) {
	h, err := uc.repo.GetHealth(ctx)
	if err != nil {
		uc.logger.Error(ctx, "Failed to get health status", err, types.Fields{
			"code": domain.CodeOf(err),
		})
		return nil, err
	}
	return h, nil
}
