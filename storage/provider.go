// Package storage selects and manages the object store used for health
// snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"healthdash/config"
	"healthdash/observability/types"
	"healthdash/storage/adapters/fs"
	"healthdash/storage/adapters/s3"
	storagetypes "healthdash/storage/types"
)

// ObjectStorage is re-exported for callers that only need the contract.
type ObjectStorage = storagetypes.ObjectStorage

// ErrNotConfigured is returned when STORAGE_PROVIDER is "none".
var ErrNotConfigured = errors.New("storage is not configured")

// Provider manages storage lifecycle and ensures singleton behavior
type Provider struct {
	storage     ObjectStorage
	mu          sync.RWMutex
	initialized bool
}

var (
	instance *Provider
	once     sync.Once
)

// GetProvider returns the singleton storage provider instance
func GetProvider() *Provider {
	once.Do(func() {
		instance = &Provider{}
	})
	return instance
}

// Initialize creates the configured storage. Calling it again after a
// successful initialization is a no-op.
func (p *Provider) Initialize(ctx context.Context, cfg *config.Config, logger types.Logger, metrics types.Metrics) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	s, err := New(ctx, &cfg.Storage, logger, metrics)
	if err != nil {
		return err
	}

	p.storage = s
	p.initialized = true
	return nil
}

// GetStorage returns the storage instance
func (p *Provider) GetStorage() (ObjectStorage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized || p.storage == nil {
		return nil, fmt.Errorf("storage not initialized; call Initialize() first")
	}

	return p.storage, nil
}

// IsInitialized returns whether storage has been initialized
func (p *Provider) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}

// Close resets the provider. Neither adapter holds resources that need
// explicit release.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.storage = nil
	p.initialized = false
	return nil
}

// New builds the adapter named by cfg.Provider.
func New(ctx context.Context, cfg *config.StorageConfig, logger types.Logger, metrics types.Metrics) (ObjectStorage, error) {
	switch cfg.Provider {
	case "fs":
		s, err := fs.NewStorage(cfg.BasePath, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create fs storage: %w", err)
		}
		return s, nil
	case "s3":
		s, err := s3.NewClient(ctx, cfg, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		return s, nil
	case "", "none":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
