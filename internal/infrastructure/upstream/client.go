// Package upstream implements the HTTP client for the positions backend.
// Everything past this boundary deals in positions.RawPayload; the client
// itself never interprets position data.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/andrhp/lp-dashboard/internal/config"
	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/positions"
)

// Client talks to the LP positions backend with bounded retries
type Client struct {
	http    *http.Client
	baseURL string
	cfg     config.UpstreamConfig
	logger  *zap.Logger
}

// NewClient creates a new upstream client
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.BaseURL,
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchPositions retrieves the raw position payload for a wallet on a
// chain. The response is decoded through positions.RawPayload, so any of
// the three container shapes the backend is known to produce is accepted.
func (c *Client) FetchPositions(ctx context.Context, wallet string, chain entities.Chain) (*positions.RawPayload, error) {
	endpoint := fmt.Sprintf("%s/api/v1/lp/positions/%s?chain=%s",
		c.baseURL, url.PathEscape(wallet), url.QueryEscape(string(chain)))

	var payload positions.RawPayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	return &payload, nil
}

// actionResult is the backend response for collect/close actions
type actionResult struct {
	TransactionHash string `json:"transaction_hash"`
}

// CollectFees asks the backend to collect uncollected fees for a position
// and returns the transaction hash.
func (c *Client) CollectFees(ctx context.Context, positionID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/lp/positions/%s/collect-fees", c.baseURL, url.PathEscape(positionID))

	var result actionResult
	if err := c.postJSON(ctx, endpoint, &result); err != nil {
		return "", fmt.Errorf("failed to collect fees: %w", err)
	}
	return result.TransactionHash, nil
}

// ClosePosition asks the backend to close a position and returns the
// transaction hash.
func (c *Client) ClosePosition(ctx context.Context, positionID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/lp/positions/%s/close", c.baseURL, url.PathEscape(positionID))

	var result actionResult
	if err := c.postJSON(ctx, endpoint, &result); err != nil {
		return "", fmt.Errorf("failed to close position: %w", err)
	}
	return result.TransactionHash, nil
}

// HealthCheck probes the backend health endpoint without retries
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, dest)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, dest interface{}) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, dest)
}

// doJSON performs the request with up to MaxRetries additional attempts,
// sleeping RetryDelay between them unless the context is done first.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, dest interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying upstream request",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		lastErr = c.doOnce(ctx, method, endpoint, dest)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
