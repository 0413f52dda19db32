package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable marks a source that produced no usable data for a lookup.
// It is never fatal to the price pipeline.
var ErrUnavailable = errors.New("source unavailable")

// SourceTag names the upstream that supplied a resolved price.
type SourceTag string

const (
	SourceSpacescan  SourceTag = "spacescan"
	SourceDexie      SourceTag = "dexie"
	SourceDexieOffer SourceTag = "dexie-offer"
	SourceNone       SourceTag = "none"
)

// DefaultXCHUSD is substituted when the conversion rate cannot be fetched.
var DefaultXCHUSD = decimal.NewFromInt(3)

// Quote is a single source's answer for one asset. Prices are in USD.
type Quote struct {
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
	Supply decimal.Decimal `json:"supply"`
	Source SourceTag       `json:"source"`
}

// ResolvedAsset is the pipeline's final answer for one tracked asset.
type ResolvedAsset struct {
	ID        AssetID         `json:"assetId"`
	Price     decimal.Decimal `json:"price"`
	Change    decimal.Decimal `json:"change"`
	MarketCap decimal.Decimal `json:"marketCap"`
	Source    SourceTag       `json:"source"`
}

// Priced reports whether the asset ended with a positive price.
func (r ResolvedAsset) Priced() bool {
	return r.Price.IsPositive()
}

// PriceReport is the result of one price resolution run.
type PriceReport struct {
	Assets  []ResolvedAsset `json:"assets"`
	XCHUSD  decimal.Decimal `json:"xchUsd"`
	Elapsed time.Duration   `json:"elapsed"`
}

// PricedCount returns how many assets ended with a positive price.
func (r PriceReport) PricedCount() int {
	n := 0
	for _, a := range r.Assets {
		if a.Priced() {
			n++
		}
	}
	return n
}
