// Package jupiter is the REST client for the Jupiter swap aggregator, which
// provides quotes and swap execution for the executor. Signing and ledger
// submission belong to the external wallet collaborator; the client only sees
// the opaque receipt.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solsniper/internal/domain"
	"solsniper/internal/solana"
)

// Client is the REST client for the Jupiter v6 quote and swap endpoints.
type Client struct {
	host       string
	httpClient *http.Client
}

// New creates a Client for the given aggregator host, e.g.
// "https://quote-api.jup.ag". Every request is bounded by timeout.
func New(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Quote requests a fresh quote for swapping amountIn (whole tokens, SOL
// scale) of tokenIn into tokenOut at the given slippage tolerance.
func (c *Client) Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64, slippageBps int) (domain.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", tokenIn)
	params.Set("outputMint", tokenOut)
	params.Set("amount", strconv.FormatUint(solana.ToLamports(amountIn), 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	body, err := c.doGet(ctx, "/v6/quote?"+params.Encode())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter: quote %s->%s: %w", tokenIn, tokenOut, err)
	}

	var qr QuoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter: decode quote: %w", err)
	}

	return qr.ToDomainQuote(), nil
}

// Swap submits a previously verified quote for execution on behalf of
// signerPubkey and returns the opaque transaction signature.
func (c *Client) Swap(ctx context.Context, q domain.Quote, signerPubkey string) (string, error) {
	reqBody, err := json.Marshal(swapRequest{
		QuoteResponse:    fromDomainQuote(q),
		UserPublicKey:    signerPubkey,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", fmt.Errorf("jupiter: encode swap request: %w", err)
	}

	body, err := c.doPost(ctx, "/v6/swap", reqBody)
	if err != nil {
		return "", fmt.Errorf("jupiter: swap %s->%s: %w", q.TokenIn, q.TokenOut, err)
	}

	var sr swapResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("jupiter: decode swap response: %w", err)
	}

	sig := sr.Signature
	if sig == "" {
		sig = sr.Txid
	}
	if sig == "" {
		return "", fmt.Errorf("jupiter: %w: no signature in response", domain.ErrSwapFailed)
	}
	return sig, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return body, nil
}
