// Package dexie reads CAT tickers and standing offers from the Dexie exchange API.
package dexie

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
)

// offerPageSize bounds the best-ask lookup; offers come back sorted by ascending price.
const offerPageSize = 5

// Timeouts holds per-endpoint deadlines.
type Timeouts struct {
	Tickers time.Duration
	Offers  time.Duration
}

// Client is a Dexie API client.
type Client struct {
	baseURL  string
	http     *fetch.Client
	timeouts Timeouts
}

// NewClient creates a new Dexie client.
func NewClient(baseURL string, timeouts Timeouts) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     fetch.NewClient("dexie"),
		timeouts: timeouts,
	}
}

// FetchTickerPrices returns XCH-denominated last prices keyed by lower-cased base asset id.
// Tickers without a base id or with a non-positive price are dropped.
func (c *Client) FetchTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	var resp TickersResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/v2/prices/tickers", c.timeouts.Tickers, &resp); err != nil {
		return nil, fmt.Errorf("%w: dexie tickers: %w", domain.ErrUnavailable, err)
	}

	prices := make(map[string]decimal.Decimal, len(resp.Tickers))
	for _, t := range resp.Tickers {
		key := domain.AssetID(t.BaseID).Key()
		if key == "" || !t.LastPrice.IsPositive() {
			continue
		}
		prices[key] = t.LastPrice.Decimal
	}
	return prices, nil
}

// FetchBestAsk returns the lowest positive XCH price among standing sell offers for id.
func (c *Client) FetchBestAsk(ctx context.Context, id domain.AssetID) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("offered", string(id))
	params.Set("requested", "xch")
	params.Set("page", "1")
	params.Set("page_size", fmt.Sprintf("%d", offerPageSize))
	params.Set("sort", "price")
	params.Set("order", "asc")

	var resp OffersResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/v1/offers?"+params.Encode(), c.timeouts.Offers, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: dexie offers %s: %w", domain.ErrUnavailable, id, err)
	}

	prices := lo.FilterMap(resp.Offers, func(o Offer, _ int) (decimal.Decimal, bool) {
		return o.Price.Decimal, o.Price.IsPositive()
	})
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no positive offers for %s", domain.ErrUnavailable, id)
	}
	return decimal.Min(prices[0], prices[1:]...), nil
}
