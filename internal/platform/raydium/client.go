// Package raydium is the REST client for the Raydium pairs API, one of the
// pull-based pool data sources.
package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solsniper/internal/domain"
)

// SourceName identifies this client in pool snapshots and logs.
const SourceName = "raydium"

// Client fetches AMM pair states from the Raydium public API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client for the given pairs endpoint, e.g.
// "https://api.raydium.io/v2/main/pairs".
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier used to key this client's pools.
func (c *Client) Name() string { return SourceName }

// Fetch retrieves the current pair list and converts it to domain pool
// states. Pairs without an AMM id are skipped.
func (c *Client) Fetch(ctx context.Context) ([]domain.PoolState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("raydium: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("raydium: fetch pairs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("raydium: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raydium: fetch pairs: status %d", resp.StatusCode)
	}

	var pairs []APIPair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("raydium: decode pairs: %w", err)
	}

	now := time.Now()
	pools := make([]domain.PoolState, 0, len(pairs))
	for _, p := range pairs {
		if p.AmmID == "" {
			continue
		}
		pools = append(pools, p.ToDomainPool(now))
	}
	return pools, nil
}
