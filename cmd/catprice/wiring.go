package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/catprice/internal/assets"
	"github.com/mtlprog/catprice/internal/coingecko"
	"github.com/mtlprog/catprice/internal/config"
	"github.com/mtlprog/catprice/internal/database"
	"github.com/mtlprog/catprice/internal/dexie"
	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/export"
	"github.com/mtlprog/catprice/internal/price"
	"github.com/mtlprog/catprice/internal/spacescan"
	"github.com/mtlprog/catprice/internal/treasury"
	"github.com/mtlprog/catprice/internal/xchscan"
)

// services holds the wired upstream clients and pipelines.
type services struct {
	prices    *price.Service
	collector *treasury.Collector
	coingecko *coingecko.Client
}

func newServices(cfg config.Config, tracked []domain.TrackedAsset) *services {
	ss := spacescan.NewClient(cfg.SpacescanURL, spacescan.Timeouts{
		CATInfo:      cfg.SpacescanTimeout,
		NFTBalance:   cfg.NFTTimeout,
		TokenBalance: cfg.TokenTimeout,
	})
	dx := dexie.NewClient(cfg.DexieURL, dexie.Timeouts{
		Tickers: cfg.TickersTimeout,
		Offers:  cfg.OffersTimeout,
	})
	cg := coingecko.NewClient(cfg.CoinGeckoURL, cfg.RateTimeout, cfg.ProxyTimeout)
	xs := xchscan.NewClient(cfg.XCHScanURL, cfg.BalanceTimeout)

	sources := price.Sources{Quotes: ss, Tickers: dx, Offers: dx, Rates: cg}

	return &services{
		prices: price.NewService(sources, tracked, cfg.SpacescanStagger, cfg.DefaultXCHUSD),
		collector: treasury.NewCollector(xs, ss, treasury.Pauses{
			AfterBalance: cfg.BalancePause,
			AfterNFTs:    cfg.NFTPause,
			AfterTokens:  cfg.TokenPause,
		}),
		coingecko: cg,
	}
}

// openRegistry connects to the database and applies migrations. It returns a nil pool when
// DATABASE_URL is unset.
func openRegistry(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return pool, nil
}

// loadTracked reads the tracked asset list, using the registry when one is configured and reachable.
func loadTracked(ctx context.Context, cfg config.Config) []domain.TrackedAsset {
	pool, err := openRegistry(ctx, cfg)
	if err != nil {
		slog.Warn("asset registry unavailable, using defaults", "error", err)
		return assets.Load(ctx, nil)
	}
	if pool == nil {
		return assets.Load(ctx, nil)
	}
	defer pool.Close()
	return assets.Load(ctx, assets.NewPgRepository(pool))
}

// reportWriters returns the configured export destinations.
func reportWriters(ctx context.Context, xlsxPath, sheetID, credentialsJSON string) ([]export.Writer, error) {
	var writers []export.Writer
	if xlsxPath != "" {
		writers = append(writers, export.NewXLSXWriter(xlsxPath))
	}
	if sheetID != "" {
		if credentialsJSON == "" {
			return nil, fmt.Errorf("sheet id given but GOOGLE_CREDENTIALS_JSON is not set")
		}
		sw, err := export.NewSheetsWriter(ctx, sheetID, credentialsJSON)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sw)
	}
	return writers, nil
}
