package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"edu-recommender/internal/domain"
)

// DefaultBaseURL is the Cloudflare API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// CloudflareEmbedder calls the Workers AI text-embedding endpoint. Any
// failure is returned as an error; callers treat it as "no embedding
// available" and fall back to keyword search.
type CloudflareEmbedder struct {
	BaseURL   string
	AccountID string
	Model     string
	APIToken  string
	Dims      int
	Client    *http.Client
}

// NewCloudflareEmbedder creates an embedder for the given Workers AI
// account and model.
func NewCloudflareEmbedder(baseURL, accountID, model, apiToken string, dims int, client *http.Client) *CloudflareEmbedder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &CloudflareEmbedder{
		BaseURL:   baseURL,
		AccountID: accountID,
		Model:     model,
		APIToken:  apiToken,
		Dims:      dims,
		Client:    client,
	}
}

type embedRequest struct {
	Text []string `json:"text"`
}

type embedResponse struct {
	Result struct {
		Data [][]float32 `json:"data"`
	} `json:"result"`
	Success bool `json:"success"`
}

func (e *CloudflareEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, fmt.Errorf("embedding provider returned no vector")
	}
	return vectors[0], nil
}

func (e *CloudflareEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	jsonData, err := json.Marshal(embedRequest{Text: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", e.BaseURL, e.AccountID, e.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIToken)

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Warn("embed_request_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embedding provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("embedding provider returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !respBody.Success {
		return nil, fmt.Errorf("embedding provider reported failure")
	}

	// Index-align the result with the input; drop vectors of the wrong
	// width rather than letting them reach the vector column.
	vectors := make([][]float32, len(texts))
	for i, vec := range respBody.Result.Data {
		if i >= len(texts) {
			break
		}
		if len(vec) == e.Dims {
			vectors[i] = vec
		}
	}

	slog.Debug("embed_completed",
		slog.Int("text_count", len(texts)),
		slog.Duration("elapsed", time.Since(start)))
	return vectors, nil
}

func (e *CloudflareEmbedder) Dimensions() int {
	return e.Dims
}

var _ domain.VectorEncoder = (*CloudflareEmbedder)(nil)
