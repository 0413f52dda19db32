package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPPort string

	SpacescanURL string
	DexieURL     string
	CoinGeckoURL string
	XCHScanURL   string

	SpacescanTimeout time.Duration
	TickersTimeout   time.Duration
	OffersTimeout    time.Duration
	RateTimeout      time.Duration
	ProxyTimeout     time.Duration
	BalanceTimeout   time.Duration
	NFTTimeout       time.Duration
	TokenTimeout     time.Duration

	SpacescanStagger time.Duration
	BalancePause     time.Duration
	NFTPause         time.Duration
	TokenPause       time.Duration

	DefaultXCHUSD decimal.Decimal

	DatabaseURL            string
	TreasuryWallets        []string
	TreasuryExportInterval time.Duration
	SheetsSpreadsheetID    string
	GoogleCredentialsJSON  string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		HTTPPort: envOrDefault("HTTP_PORT", "8080"),

		SpacescanURL: envOrDefault("SPACESCAN_URL", "https://api.spacescan.io"),
		DexieURL:     envOrDefault("DEXIE_URL", "https://dexie.space"),
		CoinGeckoURL: envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		XCHScanURL:   envOrDefault("XCHSCAN_URL", "https://xchscan.com/api"),

		SpacescanTimeout: envOrDefaultDuration("SPACESCAN_TIMEOUT", 5*time.Second),
		TickersTimeout:   envOrDefaultDuration("TICKERS_TIMEOUT", 8*time.Second),
		OffersTimeout:    envOrDefaultDuration("OFFERS_TIMEOUT", 7*time.Second),
		RateTimeout:      envOrDefaultDuration("RATE_TIMEOUT", 6*time.Second),
		ProxyTimeout:     envOrDefaultDuration("PROXY_TIMEOUT", 8*time.Second),
		BalanceTimeout:   envOrDefaultDuration("BALANCE_TIMEOUT", 10*time.Second),
		NFTTimeout:       envOrDefaultDuration("NFT_TIMEOUT", 12*time.Second),
		TokenTimeout:     envOrDefaultDuration("TOKEN_TIMEOUT", 25*time.Second),

		SpacescanStagger: envOrDefaultDuration("SPACESCAN_STAGGER", 300*time.Millisecond),
		BalancePause:     envOrDefaultDuration("BALANCE_PAUSE", 300*time.Millisecond),
		NFTPause:         envOrDefaultDuration("NFT_PAUSE", 800*time.Millisecond),
		TokenPause:       envOrDefaultDuration("TOKEN_PAUSE", 800*time.Millisecond),

		DefaultXCHUSD: envOrDefaultDecimal("DEFAULT_XCH_USD", decimal.NewFromInt(3)),

		DatabaseURL:            envOrDefault("DATABASE_URL", ""),
		TreasuryWallets:        envList("TREASURY_WALLETS"),
		TreasuryExportInterval: envOrDefaultDuration("TREASURY_EXPORT_INTERVAL", 6*time.Hour),
		SheetsSpreadsheetID:    envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON:  envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),

		LogLevel:  envOrDefaultLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}
}

// SheetsEnabled reports whether Google Sheets export is configured.
func (c Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.GoogleCredentialsJSON != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		if d < 0 {
			slog.Warn("negative duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal.String())
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultLevel(key string, defaultVal slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return lvl
	}
	return defaultVal
}

func envList(key string) []string {
	return lo.Compact(lo.Map(strings.Split(os.Getenv(key), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
