package mocks

import (
	"context"

	"healthdash/internal/health/domain"
	"healthdash/internal/health/history"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of domain.Repository.
type MockRepository struct {
	mock.Mock
}

var _ domain.Repository = (*MockRepository)(nil)

// GetHealth mocks the GetHealth method
func (m *MockRepository) GetHealth(ctx context.Context) (*domain.Health, error) {
	args := m.Called(ctx)
	if h, ok := args.Get(0).(*domain.Health); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

// MonitorHealth mocks the MonitorHealth method
func (m *MockRepository) MonitorHealth(ctx context.Context) ([]*domain.Health, error) {
	args := m.Called(ctx)
	if hs, ok := args.Get(0).([]*domain.Health); ok {
		return hs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSnapshotStore is a mock of the monitor snapshot store.
type MockSnapshotStore struct {
	mock.Mock
}

// Latest mocks the Latest method
func (m *MockSnapshotStore) Latest(ctx context.Context) (*history.Snapshot, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*history.Snapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// Save mocks the Save method
func (m *MockSnapshotStore) Save(ctx context.Context, healths []*domain.Health) error {
	args := m.Called(ctx, healths)
	return args.Error(0)
}
