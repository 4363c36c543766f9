package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edu-recommender/internal/domain"
	"edu-recommender/internal/infra/logger"

	"github.com/stretchr/testify/assert"
)

// --- stubs ---

type stubVideoRepo struct {
	mu       sync.Mutex
	pending  []domain.Video
	listErr  error
	setErr   error
	stored   map[string][]float32
	captured context.Context
}

func (s *stubVideoRepo) ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = ctx
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubVideoRepo) SetEmbedding(ctx context.Context, youtubeID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	if s.stored == nil {
		s.stored = make(map[string][]float32)
	}
	s.stored[youtubeID] = embedding
	s.pending = s.pending[1:]
	return nil
}

func (s *stubVideoRepo) ExistsByYoutubeID(ctx context.Context, youtubeID string) (bool, error) {
	return false, nil
}
func (s *stubVideoRepo) Insert(ctx context.Context, video *domain.Video) (bool, error) {
	return false, nil
}
func (s *stubVideoRepo) HasEmbeddings(ctx context.Context) (bool, error) { return false, nil }
func (s *stubVideoRepo) CountSimilar(ctx context.Context, queryVector []float32, bucket domain.Bucket, threshold float64) (int, error) {
	return 0, nil
}
func (s *stubVideoRepo) CountMatching(ctx context.Context, query string, bucket domain.Bucket) (int, error) {
	return 0, nil
}
func (s *stubVideoRepo) SearchByVector(ctx context.Context, queryVector []float32, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	return nil, nil
}
func (s *stubVideoRepo) SearchByKeyword(ctx context.Context, query string, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	return nil, nil
}
func (s *stubVideoRepo) ListAll(ctx context.Context) ([]domain.Video, error) { return nil, nil }
func (s *stubVideoRepo) DeleteByYoutubeID(ctx context.Context, youtubeID string) error {
	return nil
}

type stubEncoder struct {
	mu       sync.Mutex
	captured []string
	vectors  [][]float32
	err      error
}

func (s *stubEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = texts
	if s.err != nil {
		return nil, s.err
	}
	if s.vectors != nil {
		return s.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (s *stubEncoder) Dimensions() int { return 3 }

func pendingVideo(id, title, description string) domain.Video {
	return domain.Video{
		ID:          1,
		YoutubeID:   id,
		Title:       title,
		Description: description,
	}
}

func testLogs() *logger.ContextLogger {
	return logger.NewContextLogger("edu-recommender-test")
}

// --- tests ---

func TestProcessBatch_StoresEmbeddings(t *testing.T) {
	repo := &stubVideoRepo{
		pending: []domain.Video{
			pendingVideo("vid-1", "Intro to Calculus", "Limits and derivatives."),
			pendingVideo("vid-2", "Organic Chemistry", "Alkanes and alkenes."),
		},
	}
	enc := &stubEncoder{}

	w := NewEmbeddingWorker(repo, enc, testLogs(), time.Minute, 32)
	updated := w.ProcessBatch()

	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{
		"Intro to Calculus Limits and derivatives.",
		"Organic Chemistry Alkanes and alkenes.",
	}, enc.captured)
	assert.Contains(t, repo.stored, "vid-1")
	assert.Contains(t, repo.stored, "vid-2")
	assert.Equal(t, time.Duration(0), w.backoff)
}

func TestProcessBatch_ContextHasTimeout(t *testing.T) {
	repo := &stubVideoRepo{}
	w := NewEmbeddingWorker(repo, &stubEncoder{}, testLogs(), time.Minute, 32)

	w.ProcessBatch()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NotNil(t, repo.captured)
	deadline, ok := repo.captured.Deadline()
	assert.True(t, ok, "batch context must have a deadline")
	assert.WithinDuration(t, time.Now().Add(batchTimeout), deadline, 5*time.Second)
}

func TestProcessBatch_SkipsDroppedVectors(t *testing.T) {
	repo := &stubVideoRepo{
		pending: []domain.Video{
			pendingVideo("vid-1", "Kept", "a"),
			pendingVideo("vid-2", "Dropped", "b"),
		},
	}
	enc := &stubEncoder{vectors: [][]float32{{0.1, 0.2, 0.3}, nil}}

	w := NewEmbeddingWorker(repo, enc, testLogs(), time.Minute, 32)
	updated := w.ProcessBatch()

	assert.Equal(t, 1, updated)
	assert.Contains(t, repo.stored, "vid-1")
	assert.NotContains(t, repo.stored, "vid-2")
}

func TestProcessBatch_BacksOffOnConsecutiveFailures(t *testing.T) {
	repo := &stubVideoRepo{
		pending: []domain.Video{pendingVideo("vid-1", "x", "y")},
	}
	enc := &stubEncoder{err: errors.New("embedding api unreachable")}

	w := NewEmbeddingWorker(repo, enc, testLogs(), time.Minute, 32)

	w.ProcessBatch()
	assert.Equal(t, initialBackoff, w.backoff)

	w.ProcessBatch()
	assert.Equal(t, 2*time.Second, w.backoff)

	w.ProcessBatch()
	assert.Equal(t, 4*time.Second, w.backoff)
}

func TestProcessBatch_BackoffResetsOnSuccess(t *testing.T) {
	repo := &stubVideoRepo{
		pending: []domain.Video{pendingVideo("vid-1", "x", "y")},
	}
	enc := &stubEncoder{err: errors.New("fail")}

	w := NewEmbeddingWorker(repo, enc, testLogs(), time.Minute, 32)

	w.ProcessBatch()
	assert.Equal(t, initialBackoff, w.backoff)

	enc.mu.Lock()
	enc.err = nil
	enc.mu.Unlock()

	w.ProcessBatch()
	assert.Equal(t, time.Duration(0), w.backoff, "backoff should reset on success")
}

func TestProcessBatch_EmptyQueueIsQuiet(t *testing.T) {
	repo := &stubVideoRepo{}
	enc := &stubEncoder{}

	w := NewEmbeddingWorker(repo, enc, testLogs(), time.Minute, 32)
	updated := w.ProcessBatch()

	assert.Equal(t, 0, updated)
	assert.Equal(t, time.Duration(0), w.backoff)
	assert.Nil(t, enc.captured, "encoder should not be called for an empty queue")
}

func TestNextBackoff_CapsAtMax(t *testing.T) {
	w := NewEmbeddingWorker(&stubVideoRepo{}, &stubEncoder{}, testLogs(), time.Minute, 32)

	bo := time.Duration(0)
	for i := 0; i < 20; i++ {
		bo = w.nextBackoff(bo)
	}
	assert.Equal(t, maxBackoff, bo, "backoff must cap at maxBackoff")
}
