// Package mocks provides a testify mock of the object storage contract.
package mocks

import (
	"context"
	"io"

	"healthdash/storage/types"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of types.ObjectStorage
type MockStorage struct {
	mock.Mock
}

// Put mocks the Put method. The reader is drained and the expectation
// receives the stored bytes instead of the reader.
func (m *MockStorage) Put(ctx context.Context, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	body, _ := io.ReadAll(reader)
	args := m.Called(ctx, key, body, metadata)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

// Exists mocks the Exists method
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// List mocks the List method
func (m *MockStorage) List(ctx context.Context, prefix string) ([]types.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if infos, ok := args.Get(0).([]types.ObjectInfo); ok {
		return infos, args.Error(1)
	}
	return nil, args.Error(1)
}
