package usecase

import (
	"context"
	"time"

	"healthdash/internal/health/domain"
	"healthdash/internal/health/history"
	"healthdash/observability/types"
)

// SnapshotStore persists the previous monitor run.
type SnapshotStore interface {
	Latest(ctx context.Context) (*history.Snapshot, error)
	Save(ctx context.Context, healths []*domain.Health) error
}

// MonitorResult is the body of the monitor route.
type MonitorResult struct {
	OverallStatus     domain.Status    `json:"overallStatus"`
	IndividualHealths []*domain.Health `json:"individualHealths"`
	Timestamp         time.Time        `json:"timestamp"`
	Stats             domain.Stats     `json:"stats"`
	CriticalIssues    []string         `json:"criticalIssues"`
	Recommendations   []string         `json:"recommendations"`
	Trend             *domain.Trend    `json:"trend,omitempty"`
}

// MonitorHealth evaluates every monitored service and, with a snapshot
// store, compares the run to the previous one.
type MonitorHealth struct {
	repo    domain.Repository
	history SnapshotStore
	logger  types.Logger
	metrics types.Metrics
	now     func() time.Time
}

// NewMonitorHealth creates the use case. history may be nil.
func NewMonitorHealth(repo domain.Repository, history SnapshotStore, logger types.Logger, metrics types.Metrics) *MonitorHealth {
	return &MonitorHealth{
		repo:    repo,
		history: history,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Execute fetches, evaluates and records one monitor run. Snapshot failures
// are logged and never fail the run.
func (uc *MonitorHealth) Execute(ctx context.Context) (*MonitorResult, error) {
	healths, err := uc.repo.MonitorHealth(ctx)
	if err != nil {
		uc.logger.Error(ctx, "Failed to monitor health", err, types.Fields{
			"code": domain.CodeOf(err),
		})
		return nil, err
	}

	eval := domain.EvaluateDetailed(healths)
	result := &MonitorResult{
		OverallStatus:     eval.OverallStatus,
		IndividualHealths: healths,
		Timestamp:         uc.now().UTC(),
		Stats:             eval.Stats,
		CriticalIssues:    eval.CriticalIssues,
		Recommendations:   eval.Recommendations,
	}

	if uc.history != nil {
		result.Trend = uc.compareAndSave(ctx, healths)
	}

	uc.metrics.RecordSuccess("monitor")
	return result, nil
}

func (uc *MonitorHealth) compareAndSave(ctx context.Context, healths []*domain.Health) *domain.Trend {
	var trend *domain.Trend

	prev, err := uc.history.Latest(ctx)
	switch {
	case err != nil:
		uc.metrics.RecordError("monitor_history", "load")
		uc.logger.Warn(ctx, "Failed to load previous health snapshot", types.Fields{"error": err.Error()})
	case prev != nil:
		t := domain.AnalyzeTrend(healths, prev.Healths)
		trend = &t
	}

	if err := uc.history.Save(ctx, healths); err != nil {
		uc.metrics.RecordError("monitor_history", "save")
		uc.logger.Warn(ctx, "Failed to save health snapshot", types.Fields{"error": err.Error()})
	}

	return trend
}
