package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"experience-gift-fulfillment/internal/core/domain"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the read-only catalog collaborator. The fulfillment pipeline only
// ever fetches items; it never mutates catalog state.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a catalog client. The http.Client supplied at process
// start should carry the configured catalog timeout.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// GetItem fetches a catalog item by id. Returns (nil, nil) when the catalog
// does not know the item; transport and server failures return an error the
// caller treats as retryable.
func (c *Client) GetItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/items/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("catalog returned status %d for item %s", resp.StatusCode, id)
	}

	var item domain.CatalogItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode catalog item: %w", err)
	}
	return &item, nil
}
