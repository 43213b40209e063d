package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestNewProvider_Defaults(t *testing.T) {
	cfg := &Config{ServiceName: "healthdash"}

	p := NewProvider(cfg)

	assert.NotNil(t, p)
	assert.NotNil(t, cfg.LogOutput)
	assert.Equal(t, prometheus.DefaultRegisterer, cfg.Registerer)
}

func TestDefaultProvider_LoggerPerComponent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(&Config{
		ServiceName:      "healthdash",
		Environment:      "test",
		LogLevel:         "info",
		LogOutput:        &buf,
		Registerer:       prometheus.NewRegistry(),
		AdditionalFields: Fields{"version": "1.2.3"},
	})

	gw1 := p.Logger("gateway")
	gw2 := p.Logger("gateway")
	h := p.Logger("handler")

	assert.Same(t, gw1, gw2)
	assert.NotSame(t, gw1, h)

	gw1.Info(context.Background(), "hello", nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "healthdash.gateway", entry["service"])
	assert.Equal(t, "gateway", entry["component"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestDefaultProvider_MetricsPerComponent(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProvider(&Config{ServiceName: "healthdash", Registerer: reg})

	m1 := p.Metrics("gateway")
	m2 := p.Metrics("gateway")
	m3 := p.Metrics("handler")

	assert.Same(t, m1, m2)
	assert.NotSame(t, m1, m3)

	m1.RecordSuccess("health")
	m3.RecordSuccess("health")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "healthdash_gateway_processed_total")
	assert.Contains(t, names, "healthdash_handler_processed_total")
}

func TestDefaultProvider_Close(t *testing.T) {
	out := &closeRecorder{}
	p := NewProvider(&Config{ServiceName: "healthdash", LogOutput: out, Registerer: prometheus.NewRegistry()})

	require.NoError(t, p.Close())
	assert.True(t, out.closed)
}
