package youtube

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-recommender/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "atoms", q.Get("q"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "27", q.Get("videoCategoryId"))
		assert.Equal(t, "medium", q.Get("videoDuration"))
		assert.Equal(t, "key-1", q.Get("key"))

		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"v1"}},
			{"id":{"videoId":"v2"}},
			{"id":{}}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "key-1", server.Client(), discardLogger())

	ids, err := c.Search(context.Background(), "atoms", 10, domain.BucketMedium)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids, "channel and playlist hits without a videoId are dropped")
}

func TestClient_Search_AnyBucketOmitsDurationHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("videoDuration"))
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", server.Client(), discardLogger())

	ids, err := c.Search(context.Background(), "atoms", 5, domain.BucketAny)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClient_Details(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))

		resp := map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id": "v1",
					"snippet": map[string]interface{}{
						"title":        "Atoms 101",
						"description":  "Intro lesson",
						"channelTitle": "SciChannel",
						"categoryId":   "27",
						"publishedAt":  "2024-03-01T00:00:00Z",
						"thumbnails":   map[string]interface{}{"high": map[string]string{"url": "https://img/v1.jpg"}},
					},
					"contentDetails": map[string]string{"duration": "PT5M30S"},
					"statistics":     map[string]string{"viewCount": "1200", "likeCount": "34"},
				},
				{
					"id":             "v2",
					"snippet":        map[string]interface{}{"title": "No stats", "categoryId": "27"},
					"contentDetails": map[string]string{"duration": "PT10M"},
					"statistics":     map[string]string{},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", server.Client(), discardLogger())

	details, err := c.Details(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "v1", details[0].YoutubeID)
	assert.Equal(t, "PT5M30S", details[0].ISODuration)
	assert.Equal(t, int64(1200), details[0].ViewCount)
	assert.Equal(t, int64(34), details[0].LikeCount)
	assert.Equal(t, "https://img/v1.jpg", details[0].Thumbnail)

	// Missing counts normalize to 0.
	assert.Zero(t, details[1].ViewCount)
	assert.Zero(t, details[1].LikeCount)
}

func TestClient_QuotaErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"quotaExceeded"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", server.Client(), discardLogger())

	_, err := c.Search(context.Background(), "atoms", 5, domain.BucketAny)
	assert.Error(t, err)
}

func TestClient_DetailsEmptyInput(t *testing.T) {
	c := NewClient("http://unused", "k", nil, discardLogger())
	details, err := c.Details(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, details)
}
