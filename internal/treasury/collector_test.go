package treasury

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/catprice/internal/domain"
	"github.com/mtlprog/catprice/internal/fetch"
)

// recorder logs every upstream call in order and tracks how many are in flight.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (r *recorder) enter(call string) func() {
	n := r.inFlight.Add(1)
	for {
		m := r.maxSeen.Load()
		if n <= m || r.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	return func() { r.inFlight.Add(-1) }
}

type mockBalances struct {
	rec      *recorder
	balances map[string]decimal.Decimal
	err      error
	delay    time.Duration
}

func (m *mockBalances) FetchBalance(_ context.Context, address string) (decimal.Decimal, error) {
	defer m.rec.enter("balance:" + address)()
	time.Sleep(m.delay)
	if m.err != nil {
		return decimal.Zero, m.err
	}
	return m.balances[address], nil
}

type mockHoldings struct {
	rec      *recorder
	nfts     map[string][]domain.NFTRef
	tokens   map[string][]domain.TokenBalance
	nftErr   error
	tokenErr error
}

func (m *mockHoldings) FetchNFTBalance(_ context.Context, address string) ([]domain.NFTRef, error) {
	defer m.rec.enter("nft:" + address)()
	if m.nftErr != nil {
		return nil, m.nftErr
	}
	return m.nfts[address], nil
}

func (m *mockHoldings) FetchTokenBalance(_ context.Context, address string) ([]domain.TokenBalance, error) {
	defer m.rec.enter("token:" + address)()
	if m.tokenErr != nil {
		return nil, m.tokenErr
	}
	return m.tokens[address], nil
}

var noPauses = Pauses{}

func TestCollectPartialFailure(t *testing.T) {
	rec := &recorder{}
	balances := &mockBalances{rec: rec, err: fmt.Errorf("xchscan: %w", fetch.ErrTimeout)}
	holdings := &mockHoldings{
		rec: rec,
		nfts: map[string][]domain.NFTRef{
			"xch1abc": {{NFTID: "nft1"}, {NFTID: "nft2"}},
		},
		tokenErr: errors.New("spacescan 500"),
	}

	records, err := NewCollector(balances, holdings, noPauses).Collect(context.Background(), []string{"xch1abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	r := records[0]
	if r.Wallet != "xch1abc" {
		t.Errorf("Wallet = %q", r.Wallet)
	}
	if !r.XCHBalance.IsZero() {
		t.Errorf("XCHBalance = %s, want 0 after timeout", r.XCHBalance)
	}
	if len(r.NFTs) != 2 {
		t.Errorf("NFTs = %d, want 2", len(r.NFTs))
	}
	if r.Tokens == nil || len(r.Tokens) != 0 {
		t.Errorf("Tokens = %v, want empty non-nil list", r.Tokens)
	}
}

func TestCollectAllFailingKeepsEveryWallet(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("down")
	balances := &mockBalances{rec: rec, err: boom}
	holdings := &mockHoldings{rec: rec, nftErr: boom, tokenErr: boom}

	wallets := []string{"w1", "w2", "w3", "w4"}
	records, err := NewCollector(balances, holdings, noPauses).Collect(context.Background(), wallets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != len(wallets) {
		t.Fatalf("records = %d, want %d", len(records), len(wallets))
	}
	for i, r := range records {
		if r.Wallet != wallets[i] {
			t.Errorf("records[%d].Wallet = %q, want %q (request order)", i, r.Wallet, wallets[i])
		}
		if !r.XCHBalance.IsZero() || len(r.NFTs) != 0 || len(r.Tokens) != 0 {
			t.Errorf("records[%d] = %+v, want zero record", i, r)
		}
	}
}

func TestCollectStrictlySequential(t *testing.T) {
	rec := &recorder{}
	balances := &mockBalances{rec: rec, balances: map[string]decimal.Decimal{"a": decimal.NewFromInt(1)}}
	holdings := &mockHoldings{rec: rec}

	_, err := NewCollector(balances, holdings, noPauses).Collect(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"balance:a", "nft:a", "token:a", "balance:b", "nft:b", "token:b"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestCollectFiltersNonPositiveTokens(t *testing.T) {
	rec := &recorder{}
	holdings := &mockHoldings{rec: rec, tokens: map[string][]domain.TokenBalance{
		"a": {
			{AssetID: "t1", Balance: decimal.NewFromInt(5)},
			{AssetID: "t2", Balance: decimal.Zero},
		},
	}}

	records, err := NewCollector(&mockBalances{rec: rec}, holdings, noPauses).Collect(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records[0].Tokens) != 1 || records[0].Tokens[0].AssetID != "t1" {
		t.Errorf("Tokens = %+v, want only t1", records[0].Tokens)
	}
}

func TestCollectAppliesPauses(t *testing.T) {
	rec := &recorder{}
	pauses := Pauses{AfterBalance: 20 * time.Millisecond, AfterNFTs: 30 * time.Millisecond, AfterTokens: 30 * time.Millisecond}

	start := time.Now()
	_, err := NewCollector(&mockBalances{rec: rec}, &mockHoldings{rec: rec}, pauses).Collect(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 160*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 160ms (pauses after every step of every wallet)", elapsed)
	}
}

func TestCollectConcurrentCallersDoNotInterleave(t *testing.T) {
	rec := &recorder{}
	c := NewCollector(&mockBalances{rec: rec, delay: 5 * time.Millisecond}, &mockHoldings{rec: rec}, noPauses)

	var wg sync.WaitGroup
	for _, w := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Collect(context.Background(), []string{w}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := rec.maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent upstream calls = %d, want 1", got)
	}
	if len(rec.calls) != 9 {
		t.Errorf("calls = %d, want 9", len(rec.calls))
	}
}

func TestCollectCancelledBeforeSlot(t *testing.T) {
	rec := &recorder{}
	c := NewCollector(&mockBalances{rec: rec}, &mockHoldings{rec: rec}, noPauses)

	// Hold the slot so the next caller has to wait.
	if err := c.slot.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer c.slot.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Collect(ctx, []string{"a"}); err == nil {
		t.Fatal("expected error when slot cannot be acquired")
	}
}

func TestParseWallets(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "xch1a", []string{"xch1a"}},
		{"trim and drop empty", " xch1a , ,xch1b,, ", []string{"xch1a", "xch1b"}},
		{"empty", "", []string{}},
		{"only separators", " , ,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWallets(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseWallets(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseWallets(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
