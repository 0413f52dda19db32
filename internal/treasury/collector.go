// Package treasury collects wallet holdings from rate-limited upstreams one call at a time.
package treasury

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/mtlprog/catprice/internal/domain"
)

// BalanceSource provides native XCH balances.
type BalanceSource interface {
	FetchBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// HoldingsSource provides NFT and CAT holdings.
type HoldingsSource interface {
	FetchNFTBalance(ctx context.Context, address string) ([]domain.NFTRef, error)
	FetchTokenBalance(ctx context.Context, address string) ([]domain.TokenBalance, error)
}

// Pauses are the fixed delays after each step, applied whether the step succeeded or not.
type Pauses struct {
	AfterBalance time.Duration
	AfterNFTs    time.Duration
	AfterTokens  time.Duration
}

// DefaultPauses keeps the upstreams below their rate limits.
var DefaultPauses = Pauses{
	AfterBalance: 300 * time.Millisecond,
	AfterNFTs:    800 * time.Millisecond,
	AfterTokens:  800 * time.Millisecond,
}

// Collector gathers WalletRecords strictly sequentially. A single slot is shared by all callers,
// so concurrent collections queue instead of interleaving upstream calls.
type Collector struct {
	balances BalanceSource
	holdings HoldingsSource
	pauses   Pauses
	slot     *semaphore.Weighted
}

// NewCollector creates a new Collector.
func NewCollector(balances BalanceSource, holdings HoldingsSource, pauses Pauses) *Collector {
	return &Collector{
		balances: balances,
		holdings: holdings,
		pauses:   pauses,
		slot:     semaphore.NewWeighted(1),
	}
}

// Collect returns one record per wallet, in request order. Step failures leave the
// corresponding field empty; the only error is failing to obtain the upstream slot.
func (c *Collector) Collect(ctx context.Context, wallets []string) ([]domain.WalletRecord, error) {
	if err := c.slot.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for treasury upstream slot: %w", err)
	}
	defer c.slot.Release(1)

	records := make([]domain.WalletRecord, 0, len(wallets))
	for _, w := range wallets {
		records = append(records, c.collectWallet(ctx, w))
	}
	return records, nil
}

func (c *Collector) collectWallet(ctx context.Context, wallet string) domain.WalletRecord {
	rec := domain.NewWalletRecord(wallet)

	if bal, err := c.balances.FetchBalance(ctx, wallet); err != nil {
		slog.Warn("treasury: xch balance failed", "wallet", wallet, "error", err)
	} else {
		rec.XCHBalance = bal
	}
	pause(ctx, c.pauses.AfterBalance)

	if nfts, err := c.holdings.FetchNFTBalance(ctx, wallet); err != nil {
		slog.Warn("treasury: nft balance failed", "wallet", wallet, "error", err)
	} else if nfts != nil {
		rec.NFTs = nfts
	}
	pause(ctx, c.pauses.AfterNFTs)

	if tokens, err := c.holdings.FetchTokenBalance(ctx, wallet); err != nil {
		slog.Warn("treasury: token balance failed", "wallet", wallet, "error", err)
	} else if tokens != nil {
		rec.Tokens = lo.Filter(tokens, func(t domain.TokenBalance, _ int) bool {
			return t.Balance.IsPositive()
		})
	}
	pause(ctx, c.pauses.AfterTokens)

	slog.Info("treasury: wallet collected",
		"wallet", shortAddress(wallet),
		"xch", rec.XCHBalance.StringFixed(4),
		"nfts", len(rec.NFTs),
		"tokens", len(rec.Tokens))
	return rec
}

// ParseWallets splits a comma-separated wallet list, trimming whitespace and dropping empty entries.
func ParseWallets(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	}))
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[len(addr)-8:]
}
