package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestLoadHTTPHistoricPaginates(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		cursor := r.URL.Query().Get("cursor")
		w.Header().Set("Content-Type", "application/json")
		if cursor == "" {
			json.NewEncoder(w).Encode(httpBarsPage{
				Bars:       []httpBar{{Symbol: "AAPL", Timestamp: 1000, Close: 100}},
				NextCursor: "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(httpBarsPage{
			Bars: []httpBar{{Symbol: "AAPL", Timestamp: 1060, Close: 101}},
		})
	}))
	defer srv.Close()

	asset := types.NewAsset("AAPL", "US", "USD")
	h, err := LoadHTTPHistoric(context.Background(), HTTPLoaderConfig{BaseURL: srv.URL}, asset, time.Unix(0, 0), time.Unix(2000, 0))
	if err != nil {
		t.Fatalf("LoadHTTPHistoric: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected 2 paginated requests, got %d", calls)
	}
	if len(h.events) != 2 {
		t.Fatalf("expected 2 events assembled across pages, got %d", len(h.events))
	}
	if !h.events[0].Time.Before(h.events[1].Time) {
		t.Errorf("expected events in timestamp order")
	}
}

func TestLoadHTTPHistoricPropagatesServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	asset := types.NewAsset("AAPL", "US", "USD")
	_, err := LoadHTTPHistoric(context.Background(), HTTPLoaderConfig{BaseURL: srv.URL, Timeout: time.Second}, asset, time.Unix(0, 0), time.Unix(100, 0))
	if err == nil {
		t.Fatal("expected error from a 500 response")
	}
}
