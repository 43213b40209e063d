// Package fs stores objects as files below a base directory.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"healthdash/observability/types"
	storagetypes "healthdash/storage/types"
)

const metadataSuffix = ".meta.json"

// Storage implements storagetypes.ObjectStorage on the local filesystem.
// Writes go to a temporary file that is renamed into place, so readers never
// observe a partially written object.
type Storage struct {
	basePath string
	logger   types.Logger
	metrics  types.Metrics
}

// NewStorage creates basePath if needed and returns a Storage rooted there.
func NewStorage(basePath string, logger types.Logger, metrics types.Metrics) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &Storage{
		basePath: basePath,
		logger:   logger.WithFields(types.Fields{"storage": "fs"}),
		metrics:  metrics,
	}, nil
}

// Put stores an object
func (s *Storage) Put(ctx context.Context, key string, reader io.Reader, metadata storagetypes.ObjectMetadata) error {
	start := time.Now()
	defer func() {
		s.metrics.RecordDuration("fs.put", time.Since(start).Seconds())
	}()

	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o755); err != nil {
		s.metrics.RecordError("fs.put", "mkdir")
		return fmt.Errorf("failed to create directory: %w", err)
	}

	written, err := writeAtomic(objectPath, reader)
	if err != nil {
		s.metrics.RecordError("fs.put", "write")
		s.logger.Error(ctx, "failed to write object", err, types.Fields{"key": key})
		return err
	}

	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if _, err := writeAtomic(objectPath+metadataSuffix, strings.NewReader(string(meta))); err != nil {
		s.metrics.RecordError("fs.put", "metadata")
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	s.metrics.RecordSuccess("fs.put")
	s.logger.Debug(ctx, "object stored", types.Fields{"key": key, "bytes": written})
	return nil
}

// Get retrieves an object
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(objectPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storagetypes.ErrObjectNotFound
		}
		s.metrics.RecordError("fs.get", "open")
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	s.metrics.RecordSuccess("fs.get")
	return file, nil
}

// Exists checks if an object exists
func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(objectPath)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
}

// Delete removes an object and its metadata
func (s *Storage) Delete(ctx context.Context, key string) error {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(objectPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.metrics.RecordError("fs.delete", "remove")
		return fmt.Errorf("failed to delete object: %w", err)
	}
	_ = os.Remove(objectPath + metadataSuffix)

	s.metrics.RecordSuccess("fs.delete")
	s.logger.Debug(ctx, "object deleted", types.Fields{"key": key})
	return nil
}

// List returns objects whose key starts with prefix, sorted by key.
func (s *Storage) List(_ context.Context, prefix string) ([]storagetypes.ObjectInfo, error) {
	var objects []storagetypes.ObjectInfo

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metadataSuffix) || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storagetypes.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		s.metrics.RecordError("fs.list", "walk")
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	return objects, nil
}

// objectPath maps key below basePath, rejecting keys that would escape it.
func (s *Storage) objectPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if key == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move object into place: %w", err)
	}
	return n, nil
}
