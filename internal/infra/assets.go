package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AssetClient resolves stored asset ids to servable URLs via the media
// sidecar. All calls run through the circuit breaker: when the sidecar is
// down, catalog responses simply omit image URLs instead of failing.
type AssetClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewAssetClient(baseURL string, cb *CircuitBreaker) *AssetClient {
	return &AssetClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

type assetResponse struct {
	URL string `json:"url"`
}

// ResolveURL returns the public URL for an asset id.
func (c *AssetClient) ResolveURL(ctx context.Context, assetID string) (string, error) {
	var out string
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/assets/"+url.PathEscape(assetID), nil)
		if err != nil {
			return fmt.Errorf("assets: create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("assets: sidecar unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("assets: sidecar returned %d", resp.StatusCode)
		}

		var body assetResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("assets: decode response: %w", err)
		}
		out = body.URL
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// BreakerState exposes the breaker for the health endpoint.
func (c *AssetClient) BreakerState() CBState { return c.cb.State() }
