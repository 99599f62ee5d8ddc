// Package orca is the REST client for the Orca whirlpool list API, the second
// pull-based pool data source.
package orca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"solsniper/internal/domain"
)

// SourceName identifies this client in pool snapshots and logs.
const SourceName = "orca"

// Client fetches whirlpool states from the Orca public API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// apiWhirlpool is one pool row from the whirlpool list. Balances arrive as
// decimal strings.
type apiWhirlpool struct {
	Address string `json:"address"`
	TokenA  struct {
		Mint string `json:"mint"`
	} `json:"tokenA"`
	TokenB struct {
		Mint string `json:"mint"`
	} `json:"tokenB"`
	BalanceA  string  `json:"balanceA"`
	BalanceB  string  `json:"balanceB"`
	Price     float64 `json:"price"`
	Volume24h float64 `json:"volume24h"`
}

type listResponse struct {
	Data []apiWhirlpool `json:"data"`
}

// New creates a Client for the given whirlpool list endpoint, e.g.
// "https://api.orca.so/v2/solana/pools".
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

// Fetch retrieves the current whirlpool list and converts it to domain pool
// states. Rows without an address are skipped.
func (c *Client) Fetch(ctx context.Context) ([]domain.PoolState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("orca: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orca: fetch pools: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("orca: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orca: fetch pools: status %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("orca: decode pools: %w", err)
	}

	now := time.Now()
	pools := make([]domain.PoolState, 0, len(lr.Data))
	for _, wp := range lr.Data {
		if wp.Address == "" {
			continue
		}
		balA, _ := strconv.ParseFloat(wp.BalanceA, 64)
		balB, _ := strconv.ParseFloat(wp.BalanceB, 64)
		pools = append(pools, domain.PoolState{
			PoolID:      wp.Address,
			Source:      SourceName,
			TokenA:      wp.TokenA.Mint,
			TokenB:      wp.TokenB.Mint,
			LiquidityA:  balA,
			LiquidityB:  balB,
			Price:       wp.Price,
			Volume24h:   wp.Volume24h,
			LastUpdated: now,
		})
	}
	return pools, nil
}
