package mocks

import (
	"context"

	"healthdash/handler"

	"github.com/stretchr/testify/mock"
)

// MockWorker is a testify mock of handler.Worker. Expectations are usually
// keyed by route: ExpectRoute("/api/health", ...) matches requests of type
// "health".
type MockWorker struct {
	mock.Mock
}

var _ handler.Worker = (*MockWorker)(nil)

// NewMockWorker returns a MockWorker answering Name with name.
func NewMockWorker(name string) *MockWorker {
	w := new(MockWorker)
	w.On("Name").Return(name).Maybe()
	return w
}

func (m *MockWorker) Name() string {
	return m.Called().String(0)
}

func (m *MockWorker) Process(ctx context.Context, request handler.Request) (handler.Response, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(handler.Response), args.Error(1)
}

func (m *MockWorker) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ExpectRoute expects a Process call for the request type derived from path.
func (m *MockWorker) ExpectRoute(path string, response handler.Response, err error) *mock.Call {
	requestType := handler.RequestTypeFromPath(path)
	return m.On("Process", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.Type == requestType
	})).Return(response, err)
}

// ExpectProcessAny expects a Process call of any type.
func (m *MockWorker) ExpectProcessAny(response handler.Response, err error) *mock.Call {
	return m.On("Process", mock.Anything, mock.Anything).Return(response, err)
}

// ExpectHealth sets the result of the upstream liveness check.
func (m *MockWorker) ExpectHealth(err error) *mock.Call {
	return m.On("Health", mock.Anything).Return(err)
}
