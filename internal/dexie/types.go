package dexie

import "github.com/mtlprog/catprice/internal/domain"

// TickersResponse is the JSON response from GET /v2/prices/tickers.
type TickersResponse struct {
	Tickers []Ticker `json:"tickers"`
}

// Ticker is a single market ticker. LastPrice is denominated in XCH.
type Ticker struct {
	TickerID  string        `json:"ticker_id"`
	BaseID    string        `json:"base_id"`
	TargetID  string        `json:"target_id"`
	LastPrice domain.Amount `json:"last_price"`
}

// OffersResponse is the JSON response from GET /v1/offers.
type OffersResponse struct {
	Offers []Offer `json:"offers"`
}

// Offer is a standing offer. Price is XCH per offered unit.
type Offer struct {
	ID    string        `json:"id"`
	Price domain.Amount `json:"price"`
}
