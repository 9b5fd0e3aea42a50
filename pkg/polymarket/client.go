// Package polymarket fetches wallet positions and open orders from the
// Polymarket data and CLOB APIs.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// RequestError is a non-2xx or transport failure. Message carries the
// response body's error field when the upstream provided one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	http       *http.Client
	dataAPI    string
	clobAPI    string
	maxElapsed time.Duration
}

func NewClient(dataAPI, clobAPI string, timeout, maxElapsed time.Duration) *Client {
	return &Client{
		http:       &http.Client{Timeout: timeout},
		dataAPI:    dataAPI,
		clobAPI:    clobAPI,
		maxElapsed: maxElapsed,
	}
}

// FetchSnapshot fetches positions and open orders for every address.
// A wallet whose lookup fails gets its Error field set; the snapshot itself
// only fails on context cancellation. Result order follows input order.
func (c *Client) FetchSnapshot(ctx context.Context, addresses []string) (*Snapshot, error) {
	snap := &Snapshot{
		RequestedAt: time.Now().UTC(),
		Results:     make([]WalletResult, 0, len(addresses)),
	}

	for _, addr := range addresses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap.Results = append(snap.Results, c.fetchWallet(ctx, addr))
	}
	return snap, nil
}

func (c *Client) fetchWallet(ctx context.Context, addr string) WalletResult {
	res := WalletResult{Address: addr}

	rawPos, err := c.getJSONArray(ctx, c.dataAPI+"/positions?user="+url.QueryEscape(addr))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	rawOrd, err := c.getJSONArray(ctx, c.clobAPI+"/data/orders?maker="+url.QueryEscape(addr))
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.RawPositions = rawPos
	res.RawOrders = rawOrd
	res.Positions = make([]Position, 0, len(rawPos))
	res.OpenOrders = make([]Order, 0, len(rawOrd))

	for _, r := range rawPos {
		var p dataAPIPosition
		if err := json.Unmarshal(r, &p); err != nil {
			log.Debug().Err(err).Str("addr", addr).Msg("skipping undecodable position")
			continue
		}
		res.Positions = append(res.Positions, p.toPosition())
	}
	for _, r := range rawOrd {
		var o clobOrder
		if err := json.Unmarshal(r, &o); err != nil {
			log.Debug().Err(err).Str("addr", addr).Msg("skipping undecodable order")
			continue
		}
		res.OpenOrders = append(res.OpenOrders, o.toOrder())
	}
	return res
}

// getJSONArray GETs a JSON array, retrying transient failures (network
// errors, 429, 5xx) with exponential backoff. 4xx responses are permanent.
func (c *Client) getJSONArray(ctx context.Context, u string) ([]json.RawMessage, error) {
	op := func() ([]json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			reqErr := &RequestError{Status: resp.StatusCode, Message: errorField(body)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, reqErr
			}
			return nil, backoff.Permanent(reqErr)
		}

		var arr []json.RawMessage
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return arr, nil
	}

	return backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
}

// errorField extracts the "error" field from an error response body.
func errorField(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return ""
}
