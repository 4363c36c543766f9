package worker

import (
	"context"
	"strings"
	"time"

	"edu-recommender/internal/domain"
	"edu-recommender/internal/infra/logger"
)

const (
	defaultPollInterval = 60 * time.Second
	batchTimeout        = 60 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// EmbeddingWorker backfills embeddings for catalog rows inserted without one.
// Ingestion writes rows with a NULL embedding so the write path never blocks
// on the embedding API; this worker fills them in asynchronously.
type EmbeddingWorker struct {
	videoRepo domain.VideoRepository
	encoder   domain.VectorEncoder
	logs      *logger.ContextLogger
	interval  time.Duration
	batchSize int
	stopChan  chan struct{}
	backoff   time.Duration
}

func NewEmbeddingWorker(
	videoRepo domain.VideoRepository,
	encoder domain.VectorEncoder,
	logs *logger.ContextLogger,
	interval time.Duration,
	batchSize int,
) *EmbeddingWorker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	return &EmbeddingWorker{
		videoRepo: videoRepo,
		encoder:   encoder,
		logs:      logs,
		interval:  interval,
		batchSize: batchSize,
		stopChan:  make(chan struct{}),
	}
}

func (w *EmbeddingWorker) Start() {
	w.logs.WithContext(context.Background()).Info("Starting EmbeddingWorker")
	go w.run()
}

func (w *EmbeddingWorker) Stop() {
	w.logs.WithContext(context.Background()).Info("Stopping EmbeddingWorker")
	close(w.stopChan)
}

func (w *EmbeddingWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.ProcessBatch()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.interval)
			}
		}
	}
}

// ProcessBatch encodes and stores embeddings for one batch of rows.
// It returns the number of rows updated.
func (w *EmbeddingWorker) ProcessBatch() int {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	ctx = logger.WithProcessingStage(ctx, "embedding-backfill")
	log := w.logs.WithContext(ctx)

	videos, err := w.videoRepo.ListMissingEmbeddings(ctx, w.batchSize)
	if err != nil {
		log.Error("Failed to list rows missing embeddings", "error", err)
		w.backoff = w.nextBackoff(w.backoff)
		return 0
	}
	if len(videos) == 0 {
		w.backoff = 0
		return 0
	}

	texts := make([]string, len(videos))
	for i, v := range videos {
		texts[i] = embeddingText(v)
	}

	vectors, err := w.encoder.EncodeBatch(ctx, texts)
	if err != nil {
		log.Error("Failed to encode batch", "batch_size", len(texts), "error", err)
		w.backoff = w.nextBackoff(w.backoff)
		return 0
	}

	updated := 0
	for i, v := range videos {
		if i >= len(vectors) || vectors[i] == nil {
			continue
		}
		if err := w.videoRepo.SetEmbedding(ctx, v.YoutubeID, vectors[i]); err != nil {
			w.logs.WithContext(logger.WithVideoID(ctx, v.YoutubeID)).
				Error("Failed to store embedding", "error", err)
			continue
		}
		updated++
	}

	if updated > 0 {
		w.backoff = 0
		log.Info("Backfilled embeddings", "updated", updated, "batch", len(videos))
	} else {
		w.backoff = w.nextBackoff(w.backoff)
		log.Warn("Backfill batch made no progress", "batch", len(videos), "backoff", w.backoff)
	}
	return updated
}

func (w *EmbeddingWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// embeddingText builds the text embedded for a catalog row. Title and
// description are joined so the vector reflects both.
func embeddingText(v domain.Video) string {
	return strings.TrimSpace(v.Title + " " + v.Description)
}
