package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lullapp/lull/internal/model"
)

// fetchTimeout bounds a single catalog fetch.
const fetchTimeout = 15 * time.Second

// Client fetches a remote content catalog.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch downloads and parses the remote catalog.
func (c *Client) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}

	items, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("remote catalog: %w", err)
	}
	return items, nil
}
