package price

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/catprice/internal/domain"
)

type askResult struct {
	ask decimal.Decimal
	err error
}

// unresolved returns the indexes of assets whose price is exactly zero.
func unresolved(assets []domain.ResolvedAsset) []int {
	return lo.FilterMap(assets, func(a domain.ResolvedAsset, i int) (int, bool) {
		return i, a.Price.IsZero()
	})
}

// fallback looks up the best ask for every unresolved asset concurrently and folds positive results
// into resolved. Change and market cap stay zero.
func (s *Service) fallback(ctx context.Context, resolved []domain.ResolvedAsset, rate decimal.Decimal) {
	missing := unresolved(resolved)
	if len(missing) == 0 {
		return
	}

	asks := make([]askResult, len(missing))
	var g errgroup.Group
	for i, idx := range missing {
		g.Go(func() error {
			ask, err := s.sources.Offers.FetchBestAsk(ctx, resolved[idx].ID)
			asks[i] = askResult{ask: ask, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, idx := range missing {
		r := asks[i]
		if r.err != nil {
			slog.Warn("best ask fallback unavailable", "asset", resolved[idx].ID, "error", r.err)
			continue
		}
		if !r.ask.IsPositive() {
			continue
		}
		resolved[idx].Price = r.ask.Mul(rate)
		resolved[idx].Source = domain.SourceDexieOffer
	}
}
