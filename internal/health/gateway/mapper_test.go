package gateway

import (
	"testing"
	"time"

	"healthdash/internal/health/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestToDomain(t *testing.T) {
	t.Run("with timestamp", func(t *testing.T) {
		h, err := ToDomain(HealthDTO{
			ID:        testID,
			Status:    "healthy",
			Timestamp: "2025-02-28T10:00:00Z",
			Details:   map[string]any{"service": "db"},
		}, fixedNow)
		require.NoError(t, err)

		assert.Equal(t, uuid.MustParse(testID), h.ID)
		assert.Equal(t, time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC), h.Timestamp)
		assert.Equal(t, "db", h.Details["service"])
	})

	t.Run("timestamp without offset is read as UTC", func(t *testing.T) {
		for raw, want := range map[string]time.Time{
			"2025-10-19T12:00:00.123456": time.Date(2025, 10, 19, 12, 0, 0, 123456000, time.UTC),
			"2025-10-19T12:00:00":        time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC),
		} {
			h, err := ToDomain(HealthDTO{ID: testID, Status: "healthy", Timestamp: raw}, fixedNow)
			require.NoError(t, err, raw)
			assert.True(t, want.Equal(h.Timestamp), raw)
		}
	})

	t.Run("missing timestamp uses now", func(t *testing.T) {
		h, err := ToDomain(HealthDTO{ID: testID, Status: "degraded"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, fixedNow, h.Timestamp)
	})

	tests := []struct {
		name string
		dto  HealthDTO
	}{
		{"bad id", HealthDTO{ID: "123", Status: "healthy"}},
		{"bad status", HealthDTO{ID: testID, Status: "ok"}},
		{"bad timestamp", HealthDTO{ID: testID, Status: "healthy", Timestamp: "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDomain(tt.dto, fixedNow)
			assert.ErrorIs(t, err, ErrInvalidDTO)
		})
	}
}

func TestToDTO_RoundTrip(t *testing.T) {
	h, err := NewDefaultHealth(domain.StatusUnhealthy, map[string]any{"service": "cache"}, fixedNow)
	require.NoError(t, err)

	dto, err := ToDTO(h)
	require.NoError(t, err)
	assert.Equal(t, "unhealthy", dto.Status)
	assert.Equal(t, "2025-03-01T12:00:00Z", dto.Timestamp)

	back, err := ToDomain(dto, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, h.ID, back.ID)
	assert.True(t, h.Timestamp.Equal(back.Timestamp))
}

func TestToDTOs_RejectsInvalidEntity(t *testing.T) {
	good, err := NewDefaultHealth(domain.StatusHealthy, nil, fixedNow)
	require.NoError(t, err)

	_, err = ToDTOs([]*domain.Health{good, {Status: "healthy", Timestamp: fixedNow}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestFromAPIResponse(t *testing.T) {
	h, err := FromAPIResponse([]byte(`{"status":"ok","data":{"id":"`+testID+`","status":"healthy"}}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHealthy, h.Status)

	_, err = FromAPIResponse([]byte(`{"status":"ok"}`), fixedNow)
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = FromAPIResponse([]byte(`{"data":{"id":"`+testID+`","status":"healthy"}}`), fixedNow)
	assert.ErrorIs(t, err, ErrInvalidDTO)

	_, err = FromAPIResponse([]byte(`[]`), fixedNow)
	assert.ErrorIs(t, err, ErrInvalidDTO)
}

func TestFromAPIResponse_NaiveTimestamp(t *testing.T) {
	raw := `{"status":"success","data":{"id":"` + testID + `","status":"healthy","timestamp":"2025-10-19T12:00:00.123456"}}`

	h, err := FromAPIResponse([]byte(raw), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 19, 12, 0, 0, 123456000, time.UTC), h.Timestamp)
}

func TestFromAPIListResponse(t *testing.T) {
	raw := `{"status":"ok","data":[
		{"id":"` + testID + `","status":"healthy"},
		{"id":"` + uuid.NewString() + `","status":"degraded","details":{"service":"db"}}
	]}`

	hs, err := FromAPIListResponse([]byte(raw), fixedNow)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, domain.StatusDegraded, hs[1].Status)

	empty, err := FromAPIListResponse([]byte(`{"status":"ok","data":[]}`), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = FromAPIListResponse([]byte(`{"status":"ok"}`), fixedNow)
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = FromAPIListResponse([]byte(`{"status":"ok","data":[{"id":"x","status":"healthy"}]}`), fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 0")
}
