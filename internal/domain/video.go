package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the catalog embedding column.
const EmbeddingDimensions = 384

// Video is a catalog entry keyed by its external platform ID.
type Video struct {
	ID          int64
	YoutubeID   string
	Title       string
	Description string
	Thumbnail   string
	Channel     string
	Category    string
	UploadDate  string // opaque ISO8601 string from upstream, never parsed for ordering
	Duration    int    // seconds
	ViewCount   int64
	LikeCount   int64
	Embedding   *pgvector.Vector // nil until the embedding backfill reaches this row
	CreatedAt   time.Time
}

// WatchURL returns the canonical watch link for an external video ID.
func WatchURL(youtubeID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", youtubeID)
}

// Candidate is a transient, scored ranking result. It is produced fresh per
// request and never persisted.
type Candidate struct {
	VideoID     string
	Title       string
	Description string
	Thumbnail   string
	Channel     string
	Link        string
	Score       float64
	Views       int64
	Likes       int64
}

// SearchQuery is a logged user search, retained for profile aggregation.
type SearchQuery struct {
	ID         int64
	UserID     uuid.UUID
	Query      string
	SearchTime time.Time
}
