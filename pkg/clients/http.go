package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/apperrors"
)

// Fetcher retrieves a JSON document from a URL.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) (json.RawMessage, error)
}

// HTTPClient is the production Fetcher. It performs exactly one request per
// call: no retries, and no timeout of its own - deadlines belong to the
// injected http.Client and the caller's context.
type HTTPClient struct {
	client *http.Client
	logger *zap.Logger
}

var _ Fetcher = (*HTTPClient)(nil)

// NewHTTPClient creates a Fetcher around the given http.Client.
func NewHTTPClient(client *http.Client, logger *zap.Logger) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		client: client,
		logger: logger.Named("fetch"),
	}
}

// GetJSON issues a GET request and returns the raw JSON body.
// A non-success status yields *apperrors.FetchError; a transport failure
// yields *apperrors.NetworkError.
func (c *HTTPClient) GetJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("upstream returned non-success status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, &apperrors.FetchError{
			URL:        url,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: url, Err: err}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apperrors.NetworkError{URL: url, Err: err}
	}

	return raw, nil
}
