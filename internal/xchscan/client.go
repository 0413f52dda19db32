// Package xchscan reads native XCH balances from the xchscan explorer API.
package xchscan

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
)

// BalanceResponse is the JSON response from GET /account/balance.
type BalanceResponse struct {
	XCH domain.Amount `json:"xch"`
}

// Client is an xchscan API client.
type Client struct {
	baseURL string
	http    *fetch.Client
	timeout time.Duration
}

// NewClient creates a new xchscan client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    fetch.NewClient("xchscan"),
		timeout: timeout,
	}
}

// FetchBalance returns the XCH balance of address.
func (c *Client) FetchBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	var resp BalanceResponse
	u := c.baseURL + "/account/balance?address=" + url.QueryEscape(address)
	if err := c.http.GetJSON(ctx, u, c.timeout, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetching xch balance for %s: %w", address, err)
	}
	return resp.XCH.Decimal, nil
}
