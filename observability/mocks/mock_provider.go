package mocks

import (
	"healthdash/observability/types"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of types.Provider
type MockProvider struct {
	mock.Mock
}

// Logger mocks the Logger method
func (m *MockProvider) Logger(component string) types.Logger {
	args := m.Called(component)
	if l, ok := args.Get(0).(types.Logger); ok {
		return l
	}
	return nil
}

// Metrics mocks the Metrics method
func (m *MockProvider) Metrics(component string) types.Metrics {
	args := m.Called(component)
	if mt, ok := args.Get(0).(types.Metrics); ok {
		return mt
	}
	return nil
}

// Close mocks the Close method
func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewNopProvider returns a provider whose loggers and metrics accept any call.
func NewNopProvider() *MockProvider {
	p := new(MockProvider)
	p.On("Logger", mock.Anything).Return(NewNopLogger()).Maybe()
	p.On("Metrics", mock.Anything).Return(NewNopMetrics()).Maybe()
	p.On("Close").Return(nil).Maybe()
	return p
}
