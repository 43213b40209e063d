package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity validation errors.
var (
	ErrInvalidID        = errors.New("invalid health ID format")
	ErrInvalidStatus    = errors.New("invalid health status")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Health is a single service's report.
type Health struct {
	ID        uuid.UUID      `json:"id"`
	Status    Status         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewHealth builds a validated Health from raw values.
func NewHealth(id string, status string, timestamp time.Time, details map[string]any) (*Health, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	s, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	h := &Health{
		ID:        parsedID,
		Status:    s,
		Timestamp: timestamp,
		Details:   details,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the entity invariants.
func (h *Health) Validate() error {
	if h.ID == uuid.Nil {
		return ErrInvalidID
	}
	if !h.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, h.Status)
	}
	if h.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

// IsHealthy reports whether the service is fully healthy.
func (h *Health) IsHealthy() bool {
	return h.Status == StatusHealthy
}
