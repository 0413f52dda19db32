package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/catprice/internal/coingecko"
	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
	"github.com/mtlprog/catprice/internal/treasury"
)

const (
	priceCacheControl = "s-maxage=60, stale-while-revalidate=300"
	proxyCacheControl = "s-maxage=60, stale-while-revalidate=120"
)

// PriceResolver runs the price pipeline.
type PriceResolver interface {
	Resolve(ctx context.Context) (domain.PriceReport, error)
}

// WalletCollector gathers treasury wallet records.
type WalletCollector interface {
	Collect(ctx context.Context, wallets []string) ([]domain.WalletRecord, error)
}

// SimplePricer proxies CoinGecko simple-price lookups.
type SimplePricer interface {
	SimplePrice(ctx context.Context, p coingecko.SimplePriceParams) (json.RawMessage, error)
}

// Handler provides the HTTP endpoints of the price API.
type Handler struct {
	prices    PriceResolver
	wallets   WalletCollector
	coingecko SimplePricer
}

// NewHandler creates a new API handler.
func NewHandler(prices PriceResolver, wallets WalletCollector, coingecko SimplePricer) *Handler {
	return &Handler{prices: prices, wallets: wallets, coingecko: coingecko}
}

type pricesResponse struct {
	Prices    map[string]float64 `json:"prices"`
	Changes   map[string]float64 `json:"changes"`
	MCaps     map[string]float64 `json:"mcaps"`
	XCHUSD    float64            `json:"xch_usd"`
	Sources   map[string]string  `json:"sources"`
	Success   bool               `json:"success"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Error     string             `json:"error,omitempty"`
}

type treasuryResponse struct {
	OK        bool         `json:"ok"`
	Wallets   []walletJSON `json:"wallets,omitempty"`
	ElapsedMS int64        `json:"elapsed_ms,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type walletJSON struct {
	Wallet     string          `json:"wallet"`
	XCHBalance float64         `json:"xchBal"`
	NFTs       []domain.NFTRef `json:"nfts"`
	Tokens     []tokenJSON     `json:"tokens"`
}

type tokenJSON struct {
	AssetID    string  `json:"asset_id"`
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Balance    float64 `json:"balance"`
	Price      float64 `json:"price"`
	TotalValue float64 `json:"total_value"`
}

// GetCATPrices handles GET /api/chia-cat-prices. With mode=treasury and a non-empty
// wallets list it returns wallet holdings instead of prices.
func (h *Handler) GetCATPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("mode") == "treasury" {
		if wallets := treasury.ParseWallets(q.Get("wallets")); len(wallets) > 0 {
			h.getTreasury(w, r, wallets)
			return
		}
	}
	h.getPrices(w, r)
}

func (h *Handler) getPrices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Cache-Control", priceCacheControl)

	report, err := h.prices.Resolve(r.Context())
	if err != nil {
		slog.Error("failed to resolve prices", "error", err)
		writeJSON(w, http.StatusOK, pricesResponse{
			Prices:    map[string]float64{},
			Changes:   map[string]float64{},
			MCaps:     map[string]float64{},
			XCHUSD:    domain.Float(domain.DefaultXCHUSD),
			Sources:   map[string]string{},
			Success:   false,
			ElapsedMS: time.Since(start).Milliseconds(),
			Error:     err.Error(),
		})
		return
	}

	resp := pricesResponse{
		Prices:    make(map[string]float64, len(report.Assets)),
		Changes:   make(map[string]float64, len(report.Assets)),
		MCaps:     make(map[string]float64, len(report.Assets)),
		XCHUSD:    domain.Float(report.XCHUSD),
		Sources:   make(map[string]string, len(report.Assets)),
		Success:   true,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	for _, a := range report.Assets {
		id := string(a.ID)
		resp.Prices[id] = domain.Float(a.Price)
		resp.Changes[id] = domain.Float(a.Change)
		resp.MCaps[id] = domain.Float(a.MarketCap)
		resp.Sources[id] = string(a.Source)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getTreasury(w http.ResponseWriter, r *http.Request, wallets []string) {
	start := time.Now()

	records, err := h.wallets.Collect(r.Context(), wallets)
	if err != nil {
		slog.Error("failed to collect treasury wallets", "wallets", len(wallets), "error", err)
		writeJSON(w, http.StatusInternalServerError, treasuryResponse{OK: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, treasuryResponse{
		OK:        true,
		Wallets:   lo.Map(records, func(rec domain.WalletRecord, _ int) walletJSON { return toWalletJSON(rec) }),
		ElapsedMS: time.Since(start).Milliseconds(),
	})
}

// GetCoinGeckoPrice handles GET /api/coingecko-proxy.
func (h *Handler) GetCoinGeckoPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := coingecko.SimplePriceParams{
		IDs:               lo.CoalesceOrEmpty(q.Get("ids"), "chia"),
		VsCurrencies:      lo.CoalesceOrEmpty(q.Get("vs_currencies"), "usd"),
		Include24hrChange: q.Get("include_24hr_change") != "",
		IncludeMarketCap:  q.Get("include_market_cap") != "",
	}

	body, err := h.coingecko.SimplePrice(r.Context(), params)
	if err != nil {
		if code, ok := fetch.StatusCode(err); ok {
			slog.Warn("coingecko proxy upstream status", "status", code)
			writeError(w, code, fmt.Sprintf("CoinGecko returned %d", code))
			return
		}
		slog.Error("coingecko proxy failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Cache-Control", proxyCacheControl)
	writeJSON(w, http.StatusOK, body)
}

func toWalletJSON(rec domain.WalletRecord) walletJSON {
	nfts := rec.NFTs
	if nfts == nil {
		nfts = []domain.NFTRef{}
	}
	return walletJSON{
		Wallet:     rec.Wallet,
		XCHBalance: domain.Float(rec.XCHBalance),
		NFTs:       nfts,
		Tokens: lo.Map(rec.Tokens, func(t domain.TokenBalance, _ int) tokenJSON {
			return tokenJSON{
				AssetID:    t.AssetID,
				Name:       t.Name,
				Symbol:     t.Symbol,
				Balance:    domain.Float(t.Balance),
				Price:      domain.Float(t.Price),
				TotalValue: domain.Float(t.TotalValue),
			}
		}),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
