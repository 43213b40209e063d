package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"healthdash/internal/health/domain"

	"github.com/google/uuid"
)

// ToDomain converts a DTO into a validated entity. A missing timestamp is
// filled with now.
func ToDomain(dto HealthDTO, now time.Time) (*domain.Health, error) {
	if err := dto.Validate(); err != nil {
		return nil, fmt.Errorf("DTO validation failed: %w", err)
	}

	ts := now
	if dto.Timestamp != "" {
		parsed, err := parseTimestamp(dto.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q: %v", ErrInvalidDTO, dto.Timestamp, err)
		}
		ts = parsed
	}

	h, err := domain.NewHealth(dto.ID, dto.Status, ts, dto.Details)
	if err != nil {
		return nil, fmt.Errorf("domain entity creation failed: %w", err)
	}
	return h, nil
}

// offsetlessLayouts are ISO 8601 forms without a zone, as emitted by
// backends that serialise naive datetimes. They are read as UTC.
var offsetlessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return ts, nil
	}
	for _, layout := range offsetlessLayouts {
		if ts, lerr := time.ParseInLocation(layout, value, time.UTC); lerr == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}

// ToDTO converts an entity to its wire form.
func ToDTO(h *domain.Health) (HealthDTO, error) {
	if err := h.Validate(); err != nil {
		return HealthDTO{}, fmt.Errorf("entity validation failed: %w", err)
	}
	return HealthDTO{
		ID:        h.ID.String(),
		Status:    h.Status.String(),
		Timestamp: h.Timestamp.UTC().Format(time.RFC3339Nano),
		Details:   h.Details,
	}, nil
}

// ToDTOs converts entities, failing on the first invalid one.
func ToDTOs(healths []*domain.Health) ([]HealthDTO, error) {
	out := make([]HealthDTO, 0, len(healths))
	for i, h := range healths {
		dto, err := ToDTO(h)
		if err != nil {
			return nil, fmt.Errorf("failed to convert entity at index %d: %w", i, err)
		}
		out = append(out, dto)
	}
	return out, nil
}

// FromAPIResponse decodes a single-report envelope.
func FromAPIResponse(raw []byte, now time.Time) (*domain.Health, error) {
	var resp ResponseDTO
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDTO, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMissingData
	}
	return ToDomain(*resp.Data, now)
}

// FromAPIListResponse decodes a multi-report envelope.
func FromAPIListResponse(raw []byte, now time.Time) ([]*domain.Health, error) {
	var resp ListResponseDTO
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDTO, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMissingData
	}

	out := make([]*domain.Health, 0, len(resp.Data))
	for i, dto := range resp.Data {
		h, err := ToDomain(dto, now)
		if err != nil {
			return nil, fmt.Errorf("failed to convert item at index %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// NewDefaultHealth builds a report with a fresh random ID.
func NewDefaultHealth(status domain.Status, details map[string]any, now time.Time) (*domain.Health, error) {
	return domain.NewHealth(uuid.NewString(), string(status), now, details)
}
