package price

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
)

// QuoteSource provides per-asset detail quotes (price, change, supply) in USD.
type QuoteSource interface {
	FetchCATQuote(ctx context.Context, id domain.AssetID) (domain.Quote, error)
}

// TickerSource provides XCH-denominated last prices for all assets, keyed by lower-cased asset id.
type TickerSource interface {
	FetchTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// OfferSource provides the XCH best ask for a single asset.
type OfferSource interface {
	FetchBestAsk(ctx context.Context, id domain.AssetID) (decimal.Decimal, error)
}

// RateSource provides the XCH/USD conversion rate.
type RateSource interface {
	FetchXCHUSD(ctx context.Context) (decimal.Decimal, error)
}

// Sources groups the upstreams used by the price pipeline.
type Sources struct {
	Quotes  QuoteSource
	Tickers TickerSource
	Offers  OfferSource
	Rates   RateSource
}
