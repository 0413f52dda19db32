package price

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
)

var errNotFetched = errors.New("quote not fetched")

// quoteResult is the outcome of one detail-quote lookup. A non-nil err means the source had no data.
type quoteResult struct {
	quote domain.Quote
	err   error
}

func pendingQuotes(n int) []quoteResult {
	out := make([]quoteResult, n)
	for i := range out {
		out[i].err = errNotFetched
	}
	return out
}

// tickerUSD converts XCH ticker prices to USD at rate.
func tickerUSD(native map[string]decimal.Decimal, rate decimal.Decimal) map[string]decimal.Decimal {
	usd := make(map[string]decimal.Decimal, len(native))
	for id, p := range native {
		if p.IsPositive() {
			usd[id] = p.Mul(rate)
		}
	}
	return usd
}

// merge resolves every tracked asset from detail quotes (by index) and USD ticker prices (by lower-cased id).
// A detail quote with a positive price always wins; tickers are the only other signal.
func merge(assets []domain.TrackedAsset, quotes []quoteResult, tickers map[string]decimal.Decimal) []domain.ResolvedAsset {
	out := make([]domain.ResolvedAsset, len(assets))
	for i, a := range assets {
		qr := quoteResult{err: errNotFetched}
		if i < len(quotes) {
			qr = quotes[i]
		}
		out[i] = resolveAsset(a.ID, qr, tickers[a.ID.Key()])
	}
	return out
}

func resolveAsset(id domain.AssetID, qr quoteResult, tickerPrice decimal.Decimal) domain.ResolvedAsset {
	r := domain.ResolvedAsset{
		ID:        id,
		Price:     decimal.Zero,
		Change:    decimal.Zero,
		MarketCap: decimal.Zero,
		Source:    domain.SourceNone,
	}

	hasQuote := qr.err == nil

	switch {
	case hasQuote && qr.quote.Price.IsPositive():
		r.Price = qr.quote.Price
		r.Change = qr.quote.Change
		r.Source = domain.SourceSpacescan
		if qr.quote.Supply.IsPositive() {
			r.MarketCap = qr.quote.Supply.Mul(qr.quote.Price)
		}
	case tickerPrice.IsPositive():
		r.Price = tickerPrice
		r.Source = domain.SourceDexie
		// A zero-price detail quote may still carry a 24h change; it is kept alongside the ticker price.
		if hasQuote && !qr.quote.Change.IsZero() {
			r.Change = qr.quote.Change
		}
	}

	return r
}
