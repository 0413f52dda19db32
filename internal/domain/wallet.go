package domain

import "github.com/shopspring/decimal"

// NFTRef is a single NFT held by a wallet.
type NFTRef struct {
	NFTID        string `json:"nft_id"`
	Name         string `json:"name"`
	CollectionID string `json:"collection_id"`
	PreviewURL   string `json:"preview_url"`
}

// TokenBalance is a CAT balance held by a wallet.
type TokenBalance struct {
	AssetID    string          `json:"asset_id"`
	Name       string          `json:"name"`
	Symbol     string          `json:"symbol"`
	Balance    decimal.Decimal `json:"balance"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// WalletRecord aggregates the holdings of one address. Fields whose fetch failed stay at zero values.
type WalletRecord struct {
	Wallet     string          `json:"wallet"`
	XCHBalance decimal.Decimal `json:"xchBal"`
	NFTs       []NFTRef        `json:"nfts"`
	Tokens     []TokenBalance  `json:"tokens"`
}

// NewWalletRecord returns an empty record with non-nil lists.
func NewWalletRecord(wallet string) WalletRecord {
	return WalletRecord{
		Wallet:     wallet,
		XCHBalance: decimal.Zero,
		NFTs:       []NFTRef{},
		Tokens:     []TokenBalance{},
	}
}
