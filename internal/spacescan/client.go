// Package spacescan reads CAT market data and address holdings from the Spacescan API.
package spacescan

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
)

// Timeouts holds per-endpoint deadlines.
type Timeouts struct {
	CATInfo      time.Duration
	NFTBalance   time.Duration
	TokenBalance time.Duration
}

// Client is a Spacescan API client. Spacescan often blocks datacenter IPs, so every call is best effort.
type Client struct {
	baseURL  string
	http     *fetch.Client
	timeouts Timeouts
}

// NewClient creates a new Spacescan client.
func NewClient(baseURL string, timeouts Timeouts) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     fetch.NewClient("spacescan"),
		timeouts: timeouts,
	}
}

// FetchCATQuote returns price, 24h change and supply for one CAT.
// A zero price is still returned as a quote; the caller decides whether it counts.
func (c *Client) FetchCATQuote(ctx context.Context, id domain.AssetID) (domain.Quote, error) {
	var resp CATInfoResponse
	u := c.baseURL + "/cat/info/" + url.PathEscape(string(id))
	if err := c.http.GetJSON(ctx, u, c.timeouts.CATInfo, &resp); err != nil {
		return domain.Quote{}, fmt.Errorf("%w: spacescan cat info %s: %w", domain.ErrUnavailable, id, err)
	}

	supply := resp.Data.CirculatingSupply.Decimal
	if !supply.IsPositive() {
		supply = resp.Data.TotalSupply.Decimal
	}

	return domain.Quote{
		Price:  resp.Data.AmountPrice.Decimal,
		Change: resp.Data.PricePercentage.Decimal,
		Supply: supply,
		Source: domain.SourceSpacescan,
	}, nil
}

// FetchNFTBalance returns the NFTs held by address.
func (c *Client) FetchNFTBalance(ctx context.Context, address string) ([]domain.NFTRef, error) {
	var resp NFTBalanceResponse
	u := c.baseURL + "/address/nft-balance/" + url.PathEscape(address)
	if err := c.http.GetJSON(ctx, u, c.timeouts.NFTBalance, &resp); err != nil {
		return nil, fmt.Errorf("fetching nft balance for %s: %w", address, err)
	}

	return lo.Map(resp.Balance, func(n NFTEntry, _ int) domain.NFTRef {
		return domain.NFTRef{
			NFTID:        n.NFTID,
			Name:         n.Name,
			CollectionID: n.CollectionID,
			PreviewURL:   n.PreviewURL,
		}
	}), nil
}

// FetchTokenBalance returns the CAT balances held by address. Entries with a non-positive balance are dropped.
func (c *Client) FetchTokenBalance(ctx context.Context, address string) ([]domain.TokenBalance, error) {
	var resp TokenBalanceResponse
	u := c.baseURL + "/address/token-balance/" + url.PathEscape(address)
	if err := c.http.GetJSON(ctx, u, c.timeouts.TokenBalance, &resp); err != nil {
		return nil, fmt.Errorf("fetching token balance for %s: %w", address, err)
	}

	return lo.FilterMap(resp.Data, func(t TokenEntry, _ int) (domain.TokenBalance, bool) {
		if !t.Balance.IsPositive() {
			return domain.TokenBalance{}, false
		}
		return domain.TokenBalance{
			AssetID:    t.AssetID,
			Name:       lo.CoalesceOrEmpty(t.Name, t.Symbol),
			Symbol:     lo.CoalesceOrEmpty(t.Symbol, t.Name),
			Balance:    t.Balance.Decimal,
			Price:      t.Price.Decimal,
			TotalValue: t.TotalValue.Decimal,
		}, true
	}), nil
}
