// Package history persists monitor snapshots so consecutive runs can be
// compared.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthdash/internal/health/domain"
	"healthdash/observability/types"
	storagetypes "healthdash/storage/types"
)

// DefaultKey is where the latest snapshot lives when no key is configured.
const DefaultKey = "health/latest.json"

// Snapshot is one persisted monitor run.
type Snapshot struct {
	SavedAt time.Time        `json:"savedAt"`
	Overall domain.Status    `json:"overallStatus"`
	Healths []*domain.Health `json:"healths"`
}

// Store reads and writes the latest snapshot under a fixed key.
type Store struct {
	storage storagetypes.ObjectStorage
	key     string
	logger  types.Logger
	metrics types.Metrics
	now     func() time.Time
}

// NewStore creates a snapshot store. An empty key selects DefaultKey.
func NewStore(storage storagetypes.ObjectStorage, key string, logger types.Logger, metrics types.Metrics) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		storage: storage,
		key:     key,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Key returns the object key snapshots are written to.
func (s *Store) Key() string {
	return s.key
}

// Save replaces the stored snapshot with healths.
func (s *Store) Save(ctx context.Context, healths []*domain.Health) error {
	snap := Snapshot{
		SavedAt: s.now().UTC(),
		Overall: domain.EvaluateSystemHealth(healths),
		Healths: healths,
	}

	body, err := json.Marshal(snap)
	if err != nil {
		s.metrics.RecordError("history_save", "encode")
		return fmt.Errorf("encode snapshot: %w", err)
	}

	err = s.storage.Put(ctx, s.key, bytes.NewReader(body), storagetypes.ObjectMetadata{
		ContentType:  "application/json",
		CacheControl: "no-cache",
		UserMetadata: map[string]string{"overall-status": snap.Overall.String()},
	})
	if err != nil {
		s.metrics.RecordError("history_save", "storage")
		return fmt.Errorf("store snapshot %s: %w", s.key, err)
	}

	s.metrics.RecordSuccess("history_save")
	s.metrics.RecordResponseSize("history_save", int64(len(body)))
	s.logger.Debug(ctx, "Saved health snapshot", types.Fields{
		"key":      s.key,
		"services": len(healths),
		"overall":  snap.Overall,
	})
	return nil
}

// Latest returns the stored snapshot, or nil when none has been saved yet.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	rc, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storagetypes.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		s.metrics.RecordError("history_load", "storage")
		return nil, fmt.Errorf("load snapshot %s: %w", s.key, err)
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		s.metrics.RecordError("history_load", "decode")
		return nil, fmt.Errorf("decode snapshot %s: %w", s.key, err)
	}

	s.metrics.RecordSuccess("history_load")
	return &snap, nil
}
