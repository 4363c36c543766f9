package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"edu-recommender/internal/domain"
)

// DefaultBaseURL is the YouTube Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client is the fetch gateway against the YouTube Data API. Its server-side
// filters (category, duration) are hints only; ingestion re-validates every
// candidate.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a YouTube API client. Requests are rate limited to stay
// inside the daily quota even when many concurrent requests trigger
// ingestion at once.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			CategoryID   string `json:"categoryId"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int, bucket domain.Bucket) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("videoCategoryId", domain.EducationCategoryID)
	params.Set("key", c.APIKey)
	if hint := durationHint(bucket); hint != "" {
		params.Set("videoDuration", hint)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	c.logger.Info("youtube_search_completed",
		slog.String("query", query),
		slog.Int("result_count", len(ids)))
	return ids, nil
}

func (c *Client) Details(ctx context.Context, ids []string) ([]domain.VideoDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.APIKey)

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}

	details := make([]domain.VideoDetail, 0, len(resp.Items))
	for _, item := range resp.Items {
		details = append(details, domain.VideoDetail{
			YoutubeID:   item.ID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.High.URL,
			Channel:     item.Snippet.ChannelTitle,
			CategoryID:  item.Snippet.CategoryID,
			UploadDate:  item.Snippet.PublishedAt,
			ISODuration: item.ContentDetails.Duration,
			ViewCount:   parseCount(item.Statistics.ViewCount),
			LikeCount:   parseCount(item.Statistics.LikeCount),
		})
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger.Warn("youtube_request_failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return fmt.Errorf("failed to call youtube api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("youtube_bad_status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("youtube api returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// durationHint maps a bucket to the API's videoDuration parameter. The API
// uses the same 4 and 20 minute boundaries as the bucket thresholds.
func durationHint(bucket domain.Bucket) string {
	switch bucket {
	case domain.BucketShort:
		return "short"
	case domain.BucketMedium:
		return "medium"
	case domain.BucketLong:
		return "long"
	default:
		return ""
	}
}

// parseCount converts an upstream count string to int64, defaulting absent
// or malformed values to 0.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var _ domain.VideoSource = (*Client)(nil)
