package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/catprice/internal/api"
	"github.com/mtlprog/catprice/internal/assets"
	"github.com/mtlprog/catprice/internal/config"
	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/export"
	"github.com/mtlprog/catprice/internal/treasury"
	"github.com/mtlprog/catprice/internal/worker"
)

func serveCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: cfg.HTTPPort, Usage: "HTTP listen port"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			svc := newServices(cfg, loadTracked(ctx, cfg))

			if len(cfg.TreasuryWallets) > 0 && cfg.SheetsEnabled() {
				writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsJSON)
				if err != nil {
					return fmt.Errorf("creating sheets writer: %w", err)
				}
				w := worker.NewTreasuryWorker(svc.collector, cfg.TreasuryWallets, writer, cfg.TreasuryExportInterval, svc.prices)
				go w.Run(ctx)
			} else {
				slog.Info("treasury export disabled", "wallets", len(cfg.TreasuryWallets), "sheets", cfg.SheetsEnabled())
			}

			handler := api.NewHandler(svc.prices, svc.collector, svc.coingecko)
			srv := api.NewServer(c.String("port"), handler)

			serveErr := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "port", c.String("port"), "assets", len(svc.prices.Assets()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			// Wait for shutdown signal
			select {
			case <-ctx.Done():
			case err := <-serveErr:
				return fmt.Errorf("HTTP server: %w", err)
			}
			slog.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}

			slog.Info("shutdown complete")
			return nil
		},
	}
}

func pricesCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "prices",
		Usage: "resolve prices once and print them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "also write the report to this .xlsx file"},
			&cli.StringFlag{Name: "sheet-id", Usage: "also write the report to this Google spreadsheet"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			svc := newServices(cfg, loadTracked(ctx, cfg))

			report, err := svc.prices.Resolve(ctx)
			if err != nil {
				return err
			}

			names := lo.SliceToMap(svc.prices.Assets(), func(a domain.TrackedAsset) (string, string) {
				return a.ID.Key(), a.Name
			})
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPRICE USD\tCHANGE\tMCAP\tSOURCE")
			for _, a := range report.Assets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					lo.CoalesceOrEmpty(names[a.ID.Key()], string(a.ID)),
					a.Price.StringFixed(6), a.Change.StringFixed(4), a.MarketCap.StringFixed(0), a.Source)
			}
			fmt.Fprintf(tw, "XCH/USD\t%s\n", report.XCHUSD.StringFixed(2))
			if err := tw.Flush(); err != nil {
				return err
			}

			writers, err := reportWriters(ctx, c.String("xlsx"), c.String("sheet-id"), cfg.GoogleCredentialsJSON)
			if err != nil {
				return err
			}
			for _, w := range writers {
				if err := w.WritePrices(ctx, report); err != nil {
					return fmt.Errorf("exporting prices: %w", err)
				}
			}
			return nil
		},
	}
}

func treasuryCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "treasury",
		Usage: "collect wallet holdings once and print them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wallets", Value: strings.Join(cfg.TreasuryWallets, ","), Usage: "comma-separated wallet addresses"},
			&cli.StringFlag{Name: "xlsx", Usage: "also write the holdings to this .xlsx file"},
			&cli.StringFlag{Name: "sheet-id", Value: cfg.SheetsSpreadsheetID, Usage: "also write the holdings to this Google spreadsheet"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			wallets := treasury.ParseWallets(c.String("wallets"))
			if len(wallets) == 0 {
				return errors.New("no wallets given (use --wallets or TREASURY_WALLETS)")
			}

			svc := newServices(cfg, nil)
			records, err := svc.collector.Collect(ctx, wallets)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WALLET\tXCH\tNFTS\tTOKENS")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Wallet, r.XCHBalance.StringFixed(4), len(r.NFTs), len(r.Tokens))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			writers, err := reportWriters(ctx, c.String("xlsx"), c.String("sheet-id"), cfg.GoogleCredentialsJSON)
			if err != nil {
				return err
			}
			for _, w := range writers {
				if err := w.WriteTreasury(ctx, records); err != nil {
					return fmt.Errorf("exporting treasury: %w", err)
				}
			}
			return nil
		},
	}
}

func assetsCommand(cfg config.Config) *cli.Command {
	withRepo := func(c *cli.Context, fn func(repo assets.Repository) error) error {
		pool, err := openRegistry(c.Context, cfg)
		if err != nil {
			return err
		}
		if pool == nil {
			return errors.New("DATABASE_URL is required for the asset registry")
		}
		defer pool.Close()
		return fn(assets.NewPgRepository(pool))
	}

	return &cli.Command{
		Name:  "assets",
		Usage: "manage the tracked asset registry",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the tracked assets",
				Action: func(c *cli.Context) error {
					return withRepo(c, func(repo assets.Repository) error {
						tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
						fmt.Fprintln(tw, "ASSET ID\tNAME")
						for _, a := range assets.Load(c.Context, repo) {
							fmt.Fprintf(tw, "%s\t%s\n", a.ID, a.Name)
						}
						return tw.Flush()
					})
				},
			},
			{
				Name:      "add",
				Usage:     "add or rename a tracked asset",
				ArgsUsage: "<asset-id> [name]",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return errors.New("asset id is required")
					}
					asset := domain.TrackedAsset{ID: domain.AssetID(c.Args().Get(0)), Name: c.Args().Get(1)}
					return withRepo(c, func(repo assets.Repository) error {
						if err := repo.Upsert(c.Context, asset); err != nil {
							return err
						}
						slog.Info("tracked asset saved", "asset", asset.ID.Key(), "name", asset.Name)
						return nil
					})
				},
			},
		},
	}
}
