package steam

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.SteamConfig {
	return config.SteamConfig{Country: "US", Language: "english", Timeout: 5 * time.Second}
}

func TestProvider_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/storesearch/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("term"); got != "portal" {
			t.Errorf("term = %q, want portal", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":620,"name":"Portal 2"},{"id":400,"name":"Portal"}]}`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	hits, err := p.Search(context.Background(), "portal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].AppID != 620 || hits[0].Name != "Portal 2" {
		t.Errorf("hits[0] = %+v, want {620 Portal 2}", hits[0])
	}
}

func TestProvider_AppDetails(t *testing.T) {
	t.Parallel()

	body := `{"620":{"success":true,"data":{
		"name":"Portal 2",
		"is_free":false,
		"header_image":"https://cdn.example/620.jpg",
		"release_date":{"coming_soon":true,"date":"Q3 2026"},
		"platforms":{"windows":true,"mac":true,"linux":false},
		"price_overview":{"discount_percent":50,"initial_formatted":"$19.99","final_formatted":"$9.99"}
	}}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appids"); got != "620" {
			t.Errorf("appids = %q, want 620", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	details, err := p.AppDetails(context.Background(), 620)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.Name != "Portal 2" {
		t.Errorf("Name = %q, want Portal 2", details.Name)
	}
	if details.ReleaseText != "Q3 2026" || !details.ComingSoon {
		t.Errorf("release = (%q, coming_soon=%v), want (Q3 2026, true)", details.ReleaseText, details.ComingSoon)
	}
	if !details.Windows || !details.Mac || details.Linux {
		t.Errorf("platforms = %v/%v/%v, want true/true/false", details.Windows, details.Mac, details.Linux)
	}
	if details.Price == nil || details.Price.DiscountPercent != 50 {
		t.Errorf("Price = %+v, want 50%% discount", details.Price)
	}
	if details.StoreURL != srv.URL+"/app/620" {
		t.Errorf("StoreURL = %q", details.StoreURL)
	}
}

func TestProvider_AppDetails_UnknownID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"99999":{"success":false}}`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	_, err := p.AppDetails(context.Background(), 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestProvider_PriceSnapshot_Free(t *testing.T) {
	t.Parallel()

	body := `{"570":{"success":true,"data":{
		"name":"Dota 2","is_free":true,
		"release_date":{"coming_soon":false,"date":"Jul 9, 2013"},
		"platforms":{"windows":true}
	}}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	snap, err := p.PriceSnapshot(context.Background(), 570)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.IsFree || snap.OnSale() {
		t.Errorf("snap = %+v, want free and not on sale", snap)
	}
}

func TestProvider_RetriesOn5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	hits, err := p.Search(context.Background(), "portal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0", len(hits))
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls.Load())
	}
}
