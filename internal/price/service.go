package price

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/metrics"
)

// Service resolves USD prices for the tracked CATs on every call. Nothing is cached between calls.
type Service struct {
	sources     Sources
	assets      []domain.TrackedAsset
	stagger     time.Duration
	defaultRate decimal.Decimal
}

// NewService creates a new price Service. Detail lookups for asset i start after i*stagger.
func NewService(sources Sources, assets []domain.TrackedAsset, stagger time.Duration, defaultRate decimal.Decimal) *Service {
	if !defaultRate.IsPositive() {
		defaultRate = domain.DefaultXCHUSD
	}
	return &Service{
		sources:     sources,
		assets:      assets,
		stagger:     stagger,
		defaultRate: defaultRate,
	}
}

// Assets returns the tracked assets in resolution order.
func (s *Service) Assets() []domain.TrackedAsset {
	return s.assets
}

// Resolve fetches all sources, merges them by priority and runs the best-ask fallback for
// assets left without a price. Upstream failures degrade the result; only a failure while
// assembling the report is returned as an error.
func (s *Service) Resolve(ctx context.Context) (report domain.PriceReport, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			report = domain.PriceReport{}
			err = fmt.Errorf("assembling prices: %v", r)
		}
	}()

	rate, tickers, quotes := s.fetchAll(ctx)

	resolved := merge(s.assets, quotes, tickerUSD(tickers, rate))
	s.fallback(ctx, resolved, rate)

	for _, a := range resolved {
		metrics.RecordResolved(string(a.Source))
	}

	report = domain.PriceReport{
		Assets:  resolved,
		XCHUSD:  rate,
		Elapsed: time.Since(start),
	}
	slog.Info("prices resolved",
		"priced", report.PricedCount(),
		"total", len(resolved),
		"elapsed_ms", report.Elapsed.Milliseconds())
	return report, nil
}

// fetchAll runs the rate, ticker and per-asset detail fetches concurrently and waits for all of them.
func (s *Service) fetchAll(ctx context.Context) (decimal.Decimal, map[string]decimal.Decimal, []quoteResult) {
	var (
		rate    decimal.Decimal
		rateErr error
		tickers map[string]decimal.Decimal
		tickErr error
		quotes  = pendingQuotes(len(s.assets))
	)

	var g errgroup.Group
	g.Go(func() error {
		rate, rateErr = s.sources.Rates.FetchXCHUSD(ctx)
		return nil
	})
	g.Go(func() error {
		tickers, tickErr = s.sources.Tickers.FetchTickerPrices(ctx)
		return nil
	})
	for i, a := range s.assets {
		g.Go(func() error {
			if err := sleep(ctx, time.Duration(i)*s.stagger); err != nil {
				quotes[i] = quoteResult{err: err}
				return nil
			}
			q, err := s.sources.Quotes.FetchCATQuote(ctx, a.ID)
			quotes[i] = quoteResult{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if rateErr != nil || !rate.IsPositive() {
		slog.Warn("xch/usd rate unavailable, using default", "default", s.defaultRate, "error", rateErr)
		rate = s.defaultRate
	}
	if tickErr != nil {
		slog.Warn("dexie tickers unavailable", "error", tickErr)
		tickers = nil
	}
	for i, q := range quotes {
		if q.err != nil {
			slog.Warn("spacescan quote unavailable", "asset", s.assets[i].ID, "error", q.err)
		}
	}

	return rate, tickers, quotes
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
