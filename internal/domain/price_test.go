package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceReportPricedCount(t *testing.T) {
	r := PriceReport{Assets: []ResolvedAsset{
		{ID: "a", Price: decimal.RequireFromString("1.5"), Source: SourceSpacescan},
		{ID: "b", Price: decimal.Zero, Source: SourceNone},
		{ID: "c", Price: decimal.RequireFromString("0.3"), Source: SourceDexieOffer},
	}}

	if got := r.PricedCount(); got != 2 {
		t.Errorf("PricedCount() = %d, want 2", got)
	}
}

func TestNewWalletRecordHasEmptyLists(t *testing.T) {
	rec := NewWalletRecord("xch1abc")
	if rec.NFTs == nil || rec.Tokens == nil {
		t.Fatal("lists must be non-nil so they encode as []")
	}
	if !rec.XCHBalance.IsZero() {
		t.Errorf("XCHBalance = %s, want 0", rec.XCHBalance)
	}
}
