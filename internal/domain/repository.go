package domain

import (
	"context"

	"github.com/google/uuid"
)

// VideoMatch is a catalog row returned by a search, including the
// similarity score when the vector path produced it.
type VideoMatch struct {
	Video      Video
	Similarity float64 // 1 - cosine distance; 0 for keyword matches
}

// VideoRepository defines the catalog store operations.
type VideoRepository interface {
	// ExistsByYoutubeID probes for a row with the given external ID.
	ExistsByYoutubeID(ctx context.Context, youtubeID string) (bool, error)

	// Insert adds a new catalog row, ignoring conflicts on the external ID.
	// Returns true if a row was actually inserted (first-write-wins).
	Insert(ctx context.Context, video *Video) (bool, error)

	// HasEmbeddings reports whether any catalog row carries an embedding.
	HasEmbeddings(ctx context.Context) (bool, error)

	// CountSimilar counts rows in the bucket whose cosine similarity to the
	// query vector exceeds the threshold.
	CountSimilar(ctx context.Context, queryVector []float32, bucket Bucket, threshold float64) (int, error)

	// CountMatching counts rows in the bucket whose title or description
	// contains the query substring, case-insensitively.
	CountMatching(ctx context.Context, query string, bucket Bucket) (int, error)

	// SearchByVector returns up to limit embedding-bearing rows in the
	// bucket ordered by ascending cosine distance to the query vector.
	SearchByVector(ctx context.Context, queryVector []float32, bucket Bucket, limit int) ([]VideoMatch, error)

	// SearchByKeyword returns up to limit rows in the bucket matching the
	// query substring, ordered by view count then like count descending.
	SearchByKeyword(ctx context.Context, query string, bucket Bucket, limit int) ([]VideoMatch, error)

	// ListMissingEmbeddings returns up to limit rows with a NULL embedding,
	// oldest first, for the embedding backfill worker.
	ListMissingEmbeddings(ctx context.Context, limit int) ([]Video, error)

	// SetEmbedding attaches an embedding to an existing row.
	SetEmbedding(ctx context.Context, youtubeID string, embedding []float32) error

	// ListAll streams every catalog row's identity and short-form relevant
	// fields for maintenance scans.
	ListAll(ctx context.Context) ([]Video, error)

	// DeleteByYoutubeID removes a row. Maintenance only; never called from
	// the request pipeline.
	DeleteByYoutubeID(ctx context.Context, youtubeID string) error
}

// SearchLogRepository persists logged user searches.
type SearchLogRepository interface {
	Insert(ctx context.Context, userID uuid.UUID, query string) error

	// RecentQueries returns the user's most recent query texts, newest first.
	RecentQueries(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
}

// TransactionManager defines the interface for handling database transactions.
type TransactionManager interface {
	// RunInTx executes the given function within a transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
