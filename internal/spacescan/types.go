package spacescan

import "github.com/mtlprog/catprice/internal/domain"

// CATInfoResponse is the JSON response from GET /cat/info/{assetId}.
type CATInfoResponse struct {
	Data struct {
		AmountPrice       domain.Amount `json:"amount_price"`
		PricePercentage   domain.Amount `json:"pricepercentage"`
		CirculatingSupply domain.Amount `json:"circulating_supply"`
		TotalSupply       domain.Amount `json:"total_supply"`
	} `json:"data"`
}

// NFTBalanceResponse is the JSON response from GET /address/nft-balance/{address}.
type NFTBalanceResponse struct {
	Balance []NFTEntry `json:"balance"`
}

// NFTEntry is a single NFT in an address balance.
type NFTEntry struct {
	NFTID        string `json:"nft_id"`
	Name         string `json:"name"`
	CollectionID string `json:"collection_id"`
	PreviewURL   string `json:"preview_url"`
}

// TokenBalanceResponse is the JSON response from GET /address/token-balance/{address}.
type TokenBalanceResponse struct {
	Data []TokenEntry `json:"data"`
}

// TokenEntry is a single CAT balance.
type TokenEntry struct {
	AssetID    string        `json:"asset_id"`
	Name       string        `json:"name"`
	Symbol     string        `json:"symbol"`
	Balance    domain.Amount `json:"balance"`
	Price      domain.Amount `json:"price"`
	TotalValue domain.Amount `json:"total_value"`
}
