// Package gateway implements domain.Repository against the backend API.
package gateway

import (
	"errors"
	"fmt"

	"healthdash/internal/health/domain"

	"github.com/google/uuid"
)

// DTO validation errors.
var (
	ErrInvalidDTO  = errors.New("invalid health DTO")
	ErrMissingData = errors.New("no data in API response")
)

// HealthDTO is the wire form of one service report.
type HealthDTO struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ResponseDTO wraps a single report.
type ResponseDTO struct {
	Status  string     `json:"status"`
	Message string     `json:"message,omitempty"`
	Data    *HealthDTO `json:"data,omitempty"`
}

// ListResponseDTO wraps a list of reports.
type ListResponseDTO struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    []HealthDTO `json:"data,omitempty"`
}

// Validate checks the ID format and status.
func (d HealthDTO) Validate() error {
	if _, err := uuid.Parse(d.ID); err != nil {
		return fmt.Errorf("%w: id %q is not a UUID", ErrInvalidDTO, d.ID)
	}
	if !domain.Status(d.Status).Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidDTO, d.Status)
	}
	return nil
}

// Validate requires the envelope status.
func (r ResponseDTO) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("%w: missing response status", ErrInvalidDTO)
	}
	return nil
}

// Validate requires the envelope status.
func (r ListResponseDTO) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("%w: missing response status", ErrInvalidDTO)
	}
	return nil
}
