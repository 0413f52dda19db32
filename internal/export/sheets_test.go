package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type sheetsAPI struct {
	mu       sync.Mutex
	existing []string
	calls    []string
	bodies   map[string]map[string]any
}

func (s *sheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	s.calls = append(s.calls, call)

	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			s.bodies[call] = body
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		sheetList := make([]map[string]any, 0, len(s.existing))
		for _, name := range s.existing {
			sheetList = append(sheetList, map[string]any{"properties": map[string]any{"title": name}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheetList})
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func newTestSheetsWriter(t *testing.T, api *sheetsAPI) *SheetsWriter {
	t.Helper()
	api.bodies = map[string]map[string]any{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	w, err := newSheetsWriter(context.Background(), "sheet-1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return w
}

func TestSheetsWriterTreasuryCreatesMissingTabs(t *testing.T) {
	api := &sheetsAPI{existing: []string{SheetTreasury}}
	w := newTestSheetsWriter(t, api)

	require.NoError(t, w.WriteTreasury(context.Background(), sampleRecords()))

	assert.Equal(t, []string{
		"GET /v4/spreadsheets/sheet-1",
		"POST /v4/spreadsheets/sheet-1:batchUpdate",
		"POST /v4/spreadsheets/sheet-1/values:batchClear",
		"POST /v4/spreadsheets/sheet-1/values:batchUpdate",
	}, api.calls)

	requests := api.bodies["POST /v4/spreadsheets/sheet-1:batchUpdate"]["requests"].([]any)
	assert.Len(t, requests, 2, "TOKENS and NFTS are missing")

	ranges := api.bodies["POST /v4/spreadsheets/sheet-1/values:batchClear"]["ranges"].([]any)
	assert.Equal(t, []any{"TREASURY!A:Z", "TOKENS!A:Z", "NFTS!A:Z"}, ranges)

	data := api.bodies["POST /v4/spreadsheets/sheet-1/values:batchUpdate"]["data"].([]any)
	require.Len(t, data, 3)
	first := data[0].(map[string]any)
	assert.Equal(t, "TREASURY!A1", first["range"])
	assert.Len(t, first["values"], 3)
}

func TestSheetsWriterPricesSkipsExistingTab(t *testing.T) {
	api := &sheetsAPI{existing: []string{SheetPrices}}
	w := newTestSheetsWriter(t, api)

	require.NoError(t, w.WritePrices(context.Background(), sampleReport()))

	assert.Equal(t, []string{
		"GET /v4/spreadsheets/sheet-1",
		"POST /v4/spreadsheets/sheet-1/values:batchClear",
		"POST /v4/spreadsheets/sheet-1/values:batchUpdate",
	}, api.calls)
}
