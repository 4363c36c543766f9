package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused across all pooled clients so the YouTube and
// embedding API clients draw from one connection pool instead of opening
// fresh TCP+TLS handshakes per request.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client that shares a connection pool
// with other pooled clients.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
