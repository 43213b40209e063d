// Package domain holds the health entity, the rules that aggregate
// individual service reports into a system verdict, and the repository port
// the gateway implements.
package domain

import (
	"fmt"
	"strings"
)

// Status is the reported state of one service or of the whole system.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusHealthy, StatusUnhealthy, StatusDegraded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw status string. Matching is case-sensitive, as
// upstream services report lowercase values.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
