package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/episodes/internal/domain/events"
	"github.com/narwhalmedia/episodes/internal/search"
)

// MockIndex is a testify mock of search.Index
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Upsert(ctx context.Context, docs ...search.Document) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockIndex) Delete(ctx context.Context, ids ...string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockIndex) Search(ctx context.Context, filter search.Filter) (*search.Page, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Page), args.Error(1)
}

func (m *MockIndex) Get(ctx context.Context, id string) (*search.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Document), args.Error(1)
}

func (m *MockIndex) Stats(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockBlobStorage is a testify mock of the object storage
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) GenerateUploadURL(ctx context.Context, blobPath, contentType string) (string, error) {
	args := m.Called(ctx, blobPath, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStorage) GenerateReadURL(ctx context.Context, blobPath string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, blobPath, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStorage) GetPublicURL(blobPath string) string {
	return m.Called(blobPath).String(0)
}

func (m *MockBlobStorage) Exists(ctx context.Context, blobPath string) (bool, error) {
	args := m.Called(ctx, blobPath)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlobStorage) Delete(ctx context.Context, blobPath string) error {
	return m.Called(ctx, blobPath).Error(0)
}

// MockIntegrationPublisher is a testify mock of events.IntegrationEventPublisher
type MockIntegrationPublisher struct {
	mock.Mock
}

func (m *MockIntegrationPublisher) Publish(ctx context.Context, destination string, event *events.IntegrationEvent) error {
	return m.Called(ctx, destination, event).Error(0)
}
