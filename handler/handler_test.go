package handler

import (
	"context"
	"errors"
	"testing"

	"healthdash/config"
	"healthdash/observability/mocks"
	"healthdash/observability/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWorker echoes the context values the handler populates.
type testWorker struct {
	name      string
	healthErr error
}

func (w *testWorker) Name() string { return w.name }

func (w *testWorker) Process(ctx context.Context, req Request) (Response, error) {
	return NewSuccessResponse(req.ID, map[string]interface{}{
		"processed_by": w.name,
		"worker":       WorkerName(ctx),
		"request_id":   ctx.Value(types.RequestIDKey),
		"endpoint":     ctx.Value(types.EndpointKey),
	})
}

func (w *testWorker) Health(ctx context.Context) error { return w.healthErr }

func TestHandler_Handle(t *testing.T) {
	cfg := config.DefaultHandlerConfig()
	h := NewHandler(&testWorker{name: "health"}, mocks.NewNopProvider(), &cfg)

	resp, err := h.Handle(context.Background(), Request{ID: "req-1", Type: "health.monitor", Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.True(t, resp.Success)

	assert.JSONEq(t, `{"processed_by":"health","worker":"health","request_id":"req-1","endpoint":"health.monitor"}`, string(resp.Data))
}

func TestHandler_MiddlewareOrder(t *testing.T) {
	cfg := config.DefaultHandlerConfig()
	h := NewHandler(&testWorker{name: "w"}, mocks.NewNopProvider(), &cfg)

	var order []string
	record := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req Request) (Response, error) {
				order = append(order, name+":before")
				resp, err := next(ctx, req)
				order = append(order, name+":after")
				return resp, err
			}
		}
	}

	h.Use(record("outer"))
	h.Use(record("inner"))

	_, err := h.Handle(context.Background(), Request{ID: "1", Type: "t"})
	require.NoError(t, err)

	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)
}

func TestHandler_Accessors(t *testing.T) {
	cfg := config.DefaultHandlerConfig()
	provider := mocks.NewNopProvider()
	worker := &testWorker{name: "w", healthErr: errors.New("backend down")}
	h := NewHandler(worker, provider, &cfg)

	assert.Same(t, &cfg, h.Config())
	assert.Equal(t, worker, h.Worker())
	assert.Equal(t, provider, h.Observability())
	assert.EqualError(t, h.Health(context.Background()), "backend down")
}
