package dexie

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
)

var testTimeouts = Timeouts{Tickers: time.Second, Offers: time.Second}

func TestFetchTickerPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/prices/tickers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"tickers":[
			{"ticker_id":"A_XCH","base_id":"AAAA","target_id":"xch","last_price":"0.3"},
			{"ticker_id":"B_XCH","base_id":"bbbb","target_id":"xch","last_price":0},
			{"ticker_id":"C_XCH","base_id":"cccc","target_id":"xch","last_price":null},
			{"ticker_id":"D_XCH","base_id":"","target_id":"xch","last_price":1}
		]}`))
	}))
	defer server.Close()

	prices, err := NewClient(server.URL, testTimeouts).FetchTickerPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(prices), prices)
	}
	if p, ok := prices["aaaa"]; !ok || !p.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("prices[aaaa] = %s (present %v), want 0.3 under lower-cased key", p, ok)
	}
}

func TestFetchTickerPricesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, testTimeouts).FetchTickerPrices(context.Background())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchBestAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("offered") != "abc" || q.Get("requested") != "xch" || q.Get("sort") != "price" || q.Get("order") != "asc" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"offers":[{"id":"1","price":0},{"id":"2","price":0.25},{"id":"3","price":"0.1"},{"id":"4","price":-2}]}`))
	}))
	defer server.Close()

	ask, err := NewClient(server.URL, testTimeouts).FetchBestAsk(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ask.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("ask = %s, want 0.1", ask)
	}
}

func TestFetchBestAskNoOffers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"offers":[{"price":0}]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, testTimeouts).FetchBestAsk(context.Background(), "abc")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
