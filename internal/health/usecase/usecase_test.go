package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthdash/internal/health/domain"
	"healthdash/internal/health/history"
	healthmocks "healthdash/internal/health/mocks"
	"healthdash/observability/mocks"
	"healthdash/observability/types"
	"healthdash/storage/adapters/fs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(statuses ...domain.Status) []*domain.Health {
	out := make([]*domain.Health, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &domain.Health{ID: uuid.New(), Status: s, Timestamp: fixedNow})
	}
	return out
}

func TestGetHealth_Execute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(healthmocks.MockRepository)
		want := sample(domain.StatusHealthy)[0]
		repo.On("GetHealth", mock.Anything).Return(want, nil)

		got, err := NewGetHealth(repo, mocks.NewNopLogger()).Execute(context.Background())

		require.NoError(t, err)
		assert.Same(t, want, got)
		repo.AssertExpectations(t)
	})

	t.Run("repository error is returned unchanged", func(t *testing.T) {
		repo := new(healthmocks.MockRepository)
		repoErr := domain.NewError(domain.CodeNetworkError, "Health API call failed", errors.New("refused"))
		repo.On("GetHealth", mock.Anything).Return(nil, repoErr)

		logger := new(mocks.MockLogger)
		logger.On("Error", mock.Anything, "Failed to get health status", repoErr, mock.MatchedBy(func(f types.Fields) bool {
			return f["code"] == domain.CodeNetworkError
		})).Return()

		got, err := NewGetHealth(repo, logger).Execute(context.Background())

		assert.Nil(t, got)
		assert.Same(t, repoErr, err)
		logger.AssertExpectations(t)
	})
}

func newMonitor(repo domain.Repository, store SnapshotStore) *MonitorHealth {
	uc := NewMonitorHealth(repo, store, mocks.NewNopLogger(), mocks.NewNopMetrics())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestMonitorHealth_Execute(t *testing.T) {
	repo := new(healthmocks.MockRepository)
	hs := sample(domain.StatusHealthy, domain.StatusDegraded, domain.StatusUnhealthy)
	repo.On("MonitorHealth", mock.Anything).Return(hs, nil)

	result, err := newMonitor(repo, nil).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnhealthy, result.OverallStatus)
	assert.Equal(t, hs, result.IndividualHealths)
	assert.Equal(t, fixedNow, result.Timestamp)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Empty(t, result.CriticalIssues)
	assert.Equal(t, []string{
		"Investigate 1 unhealthy service(s)",
		"Monitor 1 degraded service(s)",
	}, result.Recommendations)
	assert.Nil(t, result.Trend)
}

func TestMonitorHealth_RepositoryError(t *testing.T) {
	repo := new(healthmocks.MockRepository)
	repoErr := domain.NewError(domain.CodeTimeoutError, "Monitor health API call failed", context.DeadlineExceeded)
	repo.On("MonitorHealth", mock.Anything).Return(nil, repoErr)

	store := new(healthmocks.MockSnapshotStore)

	result, err := newMonitor(repo, store).Execute(context.Background())

	assert.Nil(t, result)
	assert.Same(t, repoErr, err)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMonitorHealth_Trend(t *testing.T) {
	t.Run("first run has no trend but is saved", func(t *testing.T) {
		repo := new(healthmocks.MockRepository)
		hs := sample(domain.StatusHealthy)
		repo.On("MonitorHealth", mock.Anything).Return(hs, nil)

		store := new(healthmocks.MockSnapshotStore)
		store.On("Latest", mock.Anything).Return(nil, nil)
		store.On("Save", mock.Anything, hs).Return(nil)

		result, err := newMonitor(repo, store).Execute(context.Background())
		require.NoError(t, err)

		assert.Nil(t, result.Trend)
		store.AssertExpectations(t)
	})

	t.Run("compares against the previous snapshot", func(t *testing.T) {
		repo := new(healthmocks.MockRepository)
		hs := sample(domain.StatusHealthy, domain.StatusHealthy)
		repo.On("MonitorHealth", mock.Anything).Return(hs, nil)

		store := new(healthmocks.MockSnapshotStore)
		store.On("Latest", mock.Anything).Return(&history.Snapshot{
			Healths: sample(domain.StatusHealthy, domain.StatusUnhealthy),
		}, nil)
		store.On("Save", mock.Anything, hs).Return(nil)

		result, err := newMonitor(repo, store).Execute(context.Background())
		require.NoError(t, err)

		require.NotNil(t, result.Trend)
		assert.Equal(t, domain.TrendImproving, result.Trend.Direction)
		assert.Equal(t, "System health improved by 50.0%", result.Trend.Summary)
	})

	t.Run("history failures do not fail the run", func(t *testing.T) {
		repo := new(healthmocks.MockRepository)
		hs := sample(domain.StatusHealthy)
		repo.On("MonitorHealth", mock.Anything).Return(hs, nil)

		store := new(healthmocks.MockSnapshotStore)
		store.On("Latest", mock.Anything).Return(nil, errors.New("bucket missing"))
		store.On("Save", mock.Anything, hs).Return(errors.New("bucket missing"))

		logger := new(mocks.MockLogger)
		logger.On("Warn", mock.Anything, "Failed to load previous health snapshot", mock.Anything).Return().Once()
		logger.On("Warn", mock.Anything, "Failed to save health snapshot", mock.Anything).Return().Once()

		uc := NewMonitorHealth(repo, store, logger, mocks.NewNopMetrics())
		result, err := uc.Execute(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusHealthy, result.OverallStatus)
		assert.Nil(t, result.Trend)
		logger.AssertExpectations(t)
	})
}

func TestMonitorHealth_WithFileHistory(t *testing.T) {
	st, err := fs.NewStorage(t.TempDir(), mocks.NewNopLogger(), mocks.NewNopMetrics())
	require.NoError(t, err)
	store := history.NewStore(st, "", mocks.NewNopLogger(), mocks.NewNopMetrics())

	repo := new(healthmocks.MockRepository)
	repo.On("MonitorHealth", mock.Anything).Return(sample(domain.StatusHealthy, domain.StatusHealthy), nil).Once()
	repo.On("MonitorHealth", mock.Anything).Return(sample(domain.StatusHealthy, domain.StatusUnhealthy), nil).Once()

	uc := newMonitor(repo, store)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Nil(t, first.Trend)

	second, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second.Trend)
	assert.Equal(t, domain.TrendDegrading, second.Trend.Direction)
	assert.Equal(t, domain.StatusUnhealthy, second.OverallStatus)
}
