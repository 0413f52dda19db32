// Package coingecko fetches the XCH/USD conversion rate and proxies simple-price lookups.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
)

const chiaID = "chia"

// SimplePriceParams are the query parameters of /simple/price.
type SimplePriceParams struct {
	IDs               string
	VsCurrencies      string
	Include24hrChange bool
	IncludeMarketCap  bool
}

// Client fetches prices from the CoinGecko API.
type Client struct {
	baseURL      string
	http         *fetch.Client
	rateTimeout  time.Duration
	proxyTimeout time.Duration
}

// NewClient creates a new CoinGecko API client.
func NewClient(baseURL string, rateTimeout, proxyTimeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		http:         fetch.NewClient("coingecko"),
		rateTimeout:  rateTimeout,
		proxyTimeout: proxyTimeout,
	}
}

// FetchXCHUSD returns the current XCH price in USD.
func (c *Client) FetchXCHUSD(ctx context.Context) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, chiaID)

	// Parse: {"chia":{"usd":27.31}}
	var raw map[string]map[string]domain.Amount
	if err := c.http.GetJSON(ctx, u, c.rateTimeout, &raw); err != nil {
		return decimal.Zero, fmt.Errorf("%w: coingecko xch/usd: %w", domain.ErrUnavailable, err)
	}

	rate := raw[chiaID]["usd"].Decimal
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: coingecko returned no chia/usd rate", domain.ErrUnavailable)
	}
	return rate, nil
}

// SimplePrice returns the raw /simple/price body. Upstream HTTP failures are returned
// as *fetch.StatusError so callers can forward the status.
func (c *Client) SimplePrice(ctx context.Context, p SimplePriceParams) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("ids", p.IDs)
	params.Set("vs_currencies", p.VsCurrencies)
	params.Set("include_24hr_change", fmt.Sprintf("%t", p.Include24hrChange))
	params.Set("include_market_cap", fmt.Sprintf("%t", p.IncludeMarketCap))

	body, err := c.http.Get(ctx, c.baseURL+"/simple/price?"+params.Encode(), c.proxyTimeout)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: coingecko simple price body", fetch.ErrParse)
	}
	return body, nil
}
