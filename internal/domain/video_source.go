package domain

import (
	"context"
)

// EducationCategoryID is the upstream category marker for educational
// content (YouTube Data API category 27).
const EducationCategoryID = "27"

// VideoDetail is the full per-video record returned by the fetch gateway
// detail call. Duration stays in its raw ISO-8601 form until ingestion
// parses it.
type VideoDetail struct {
	YoutubeID   string
	Title       string
	Description string
	Thumbnail   string
	Channel     string
	CategoryID  string
	UploadDate  string
	ISODuration string
	ViewCount   int64
	LikeCount   int64
}

// VideoSource is the external video-platform gateway. Its server-side
// category and duration filtering is advisory only; ingestion re-checks
// every candidate.
type VideoSource interface {
	// Search returns up to maxResults candidate video IDs for a query.
	// The bucket is passed upstream as a filter hint.
	Search(ctx context.Context, query string, maxResults int, bucket Bucket) ([]string, error)

	// Details fetches full detail for a batch of video IDs. IDs unknown
	// upstream are silently absent from the result.
	Details(ctx context.Context, ids []string) ([]VideoDetail, error)
}
