package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/catprice/internal/domain"
)

// WalletCollector gathers treasury wallet records.
type WalletCollector interface {
	Collect(ctx context.Context, wallets []string) ([]domain.WalletRecord, error)
}

// PriceResolver runs the price pipeline.
type PriceResolver interface {
	Resolve(ctx context.Context) (domain.PriceReport, error)
}

// ReportWriter receives the collected reports.
type ReportWriter interface {
	WritePrices(ctx context.Context, report domain.PriceReport) error
	WriteTreasury(ctx context.Context, records []domain.WalletRecord) error
}

// TreasuryWorker periodically collects the configured wallets and exports them.
type TreasuryWorker struct {
	collector WalletCollector
	wallets   []string
	writer    ReportWriter
	interval  time.Duration
	prices    PriceResolver // optional
}

// NewTreasuryWorker creates a new TreasuryWorker. When prices is non-nil, each run also
// exports a fresh price report.
func NewTreasuryWorker(collector WalletCollector, wallets []string, writer ReportWriter, interval time.Duration, prices PriceResolver) *TreasuryWorker {
	return &TreasuryWorker{
		collector: collector,
		wallets:   wallets,
		writer:    writer,
		interval:  interval,
		prices:    prices,
	}
}

// Run starts the treasury worker loop. It blocks until the context is cancelled.
func (w *TreasuryWorker) Run(ctx context.Context) {
	slog.Info("TreasuryWorker: starting", "wallets", len(w.wallets), "interval", w.interval)

	// Export immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("TreasuryWorker: shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *TreasuryWorker) runOnce(ctx context.Context) {
	records, err := w.collector.Collect(ctx, w.wallets)
	if err != nil {
		slog.Error("TreasuryWorker: collect failed", "error", err)
		return
	}
	if err := w.writer.WriteTreasury(ctx, records); err != nil {
		slog.Error("TreasuryWorker: treasury export failed", "error", err)
	} else {
		slog.Info("TreasuryWorker: treasury export completed", "wallets", len(records))
	}

	w.exportPrices(ctx)
}

// exportPrices writes a price report if a resolver is configured.
func (w *TreasuryWorker) exportPrices(ctx context.Context) {
	if w.prices == nil {
		return
	}
	report, err := w.prices.Resolve(ctx)
	if err != nil {
		slog.Error("TreasuryWorker: price resolve failed", "error", err)
		return
	}
	if err := w.writer.WritePrices(ctx, report); err != nil {
		slog.Error("TreasuryWorker: price export failed", "error", err)
	} else {
		slog.Info("TreasuryWorker: price export completed", "priced", report.PricedCount(), "total", len(report.Assets))
	}
}
