package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudflareEmbedder_Encode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/acc-1/ai/run/@cf/baai/bge-small-en-v1.5", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"atoms"}, req.Text)

		var resp embedResponse
		resp.Success = true
		resp.Result.Data = [][]float32{{0.1, 0.2, 0.3}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e := NewCloudflareEmbedder(server.URL, "acc-1", "@cf/baai/bge-small-en-v1.5", "token-1", 3, server.Client())

	vec, err := e.Encode(context.Background(), "atoms")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestCloudflareEmbedder_BadStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := NewCloudflareEmbedder(server.URL, "acc", "model", "tok", 3, server.Client())

	_, err := e.Encode(context.Background(), "atoms")
	assert.Error(t, err)
}

func TestCloudflareEmbedder_BatchDropsWrongWidthVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp embedResponse
		resp.Success = true
		resp.Result.Data = [][]float32{{0.1, 0.2, 0.3}, {0.9}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e := NewCloudflareEmbedder(server.URL, "acc", "model", "tok", 3, server.Client())

	vectors, err := e.EncodeBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotNil(t, vectors[0])
	assert.Nil(t, vectors[1], "wrong-width vector must be dropped, not stored")
}

type countingEncoder struct {
	calls atomic.Int64
	fail  bool
}

func (c *countingEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, errors.New("provider down")
	}
	return []float32{1, 2, 3}, nil
}

func (c *countingEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (c *countingEncoder) Dimensions() int { return 3 }

func TestCachedEncoder_HitAvoidsUpstreamCall(t *testing.T) {
	inner := &countingEncoder{}
	cached, err := NewCachedEncoder(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cached.Encode(ctx, "atoms")
	require.NoError(t, err)
	second, err := cached.Encode(ctx, "atoms")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedEncoder_FailuresAreNotCached(t *testing.T) {
	inner := &countingEncoder{fail: true}
	cached, err := NewCachedEncoder(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Encode(ctx, "atoms")
	assert.Error(t, err)

	inner.fail = false
	vec, err := cached.Encode(ctx, "atoms")
	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, int64(2), inner.calls.Load())
}
