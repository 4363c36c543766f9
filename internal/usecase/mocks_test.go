package usecase_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"edu-recommender/internal/domain"
)

// MockVideoRepository
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) ExistsByYoutubeID(ctx context.Context, youtubeID string) (bool, error) {
	args := m.Called(ctx, youtubeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) Insert(ctx context.Context, video *domain.Video) (bool, error) {
	args := m.Called(ctx, video)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) HasEmbeddings(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) CountSimilar(ctx context.Context, queryVector []float32, bucket domain.Bucket, threshold float64) (int, error) {
	args := m.Called(ctx, queryVector, bucket, threshold)
	return args.Int(0), args.Error(1)
}

func (m *MockVideoRepository) CountMatching(ctx context.Context, query string, bucket domain.Bucket) (int, error) {
	args := m.Called(ctx, query, bucket)
	return args.Int(0), args.Error(1)
}

func (m *MockVideoRepository) SearchByVector(ctx context.Context, queryVector []float32, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	args := m.Called(ctx, queryVector, bucket, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VideoMatch), args.Error(1)
}

func (m *MockVideoRepository) SearchByKeyword(ctx context.Context, query string, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	args := m.Called(ctx, query, bucket, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VideoMatch), args.Error(1)
}

func (m *MockVideoRepository) ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Video, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Video), args.Error(1)
}

func (m *MockVideoRepository) SetEmbedding(ctx context.Context, youtubeID string, embedding []float32) error {
	args := m.Called(ctx, youtubeID, embedding)
	return args.Error(0)
}

func (m *MockVideoRepository) ListAll(ctx context.Context) ([]domain.Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Video), args.Error(1)
}

func (m *MockVideoRepository) DeleteByYoutubeID(ctx context.Context, youtubeID string) error {
	args := m.Called(ctx, youtubeID)
	return args.Error(0)
}

// MockVectorEncoder
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockVectorEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Dimensions() int {
	return 3
}

// MockVideoSource
type MockVideoSource struct {
	mock.Mock
}

func (m *MockVideoSource) Search(ctx context.Context, query string, maxResults int, bucket domain.Bucket) ([]string, error) {
	args := m.Called(ctx, query, maxResults, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVideoSource) Details(ctx context.Context, ids []string) ([]domain.VideoDetail, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VideoDetail), args.Error(1)
}

// MockSearchLogRepository
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) Insert(ctx context.Context, userID uuid.UUID, query string) error {
	args := m.Called(ctx, userID, query)
	return args.Error(0)
}

func (m *MockSearchLogRepository) RecentQueries(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// passthroughTxManager runs the function directly without a transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
