// Package export writes price reports and treasury snapshots to spreadsheets.
package export

import (
	"context"

	"github.com/samber/lo"

	"github.com/mtlprog/catprice/internal/domain"
)

// Sheet names shared by every Writer.
const (
	SheetPrices   = "PRICES"
	SheetTreasury = "TREASURY"
	SheetTokens   = "TOKENS"
	SheetNFTs     = "NFTS"
)

// Writer writes reports to a spreadsheet destination. Each call replaces the sheets it owns.
type Writer interface {
	WritePrices(ctx context.Context, report domain.PriceReport) error
	WriteTreasury(ctx context.Context, records []domain.WalletRecord) error
}

// table is one sheet's full contents, header row first.
type table struct {
	name string
	rows [][]any
}

// priceTables builds the PRICES sheet.
// Columns: Asset ID | Price USD | Change 24h | Market Cap | Source
// A trailing row carries the XCH/USD rate used for conversions.
func priceTables(report domain.PriceReport) []table {
	rows := make([][]any, 0, len(report.Assets)+3)
	rows = append(rows, []any{"Asset ID", "Price USD", "Change 24h", "Market Cap", "Source"})
	for _, a := range report.Assets {
		rows = append(rows, []any{
			string(a.ID),
			domain.Float(a.Price),
			domain.Float(a.Change),
			domain.Float(a.MarketCap),
			string(a.Source),
		})
	}
	rows = append(rows, []any{}, []any{"XCH/USD", domain.Float(report.XCHUSD)})
	return []table{{name: SheetPrices, rows: rows}}
}

// treasuryTables builds the TREASURY, TOKENS and NFTS sheets.
func treasuryTables(records []domain.WalletRecord) []table {
	summary := [][]any{{"Wallet", "XCH Balance", "NFTs", "Tokens"}}
	tokens := [][]any{{"Wallet", "Asset ID", "Name", "Symbol", "Balance", "Price", "Total Value"}}
	nfts := [][]any{{"Wallet", "NFT ID", "Name", "Collection ID", "Preview URL"}}

	for _, rec := range records {
		summary = append(summary, []any{rec.Wallet, domain.Float(rec.XCHBalance), len(rec.NFTs), len(rec.Tokens)})

		tokens = append(tokens, lo.Map(rec.Tokens, func(t domain.TokenBalance, _ int) []any {
			return []any{
				rec.Wallet, t.AssetID, t.Name, t.Symbol,
				domain.Float(t.Balance), domain.Float(t.Price), domain.Float(t.TotalValue),
			}
		})...)

		nfts = append(nfts, lo.Map(rec.NFTs, func(n domain.NFTRef, _ int) []any {
			return []any{rec.Wallet, n.NFTID, n.Name, n.CollectionID, n.PreviewURL}
		})...)
	}

	return []table{
		{name: SheetTreasury, rows: summary},
		{name: SheetTokens, rows: tokens},
		{name: SheetNFTs, rows: nfts},
	}
}

func tableNames(tables []table) []string {
	return lo.Map(tables, func(t table, _ int) string { return t.name })
}
