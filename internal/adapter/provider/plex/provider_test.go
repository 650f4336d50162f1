package plex

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.PlexConfig {
	return config.PlexConfig{Token: "plex-token", Timeout: 5 * time.Second}
}

func searchServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Plex-Token"); got != "plex-token" {
			t.Errorf("X-Plex-Token = %q, want plex-token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

const matrixBody = `{"MediaContainer":{"Metadata":[
	{"type":"movie","title":"The Matrix","year":1999},
	{"type":"show","title":"The Matrix Show","year":2003}
]}}`

func TestProvider_HasMovie_FuzzyMatch(t *testing.T) {
	t.Parallel()

	srv := searchServer(t, matrixBody)
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())

	// Case and punctuation differences still match.
	got, err := p.HasMovie(context.Background(), "the matrix!", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("HasMovie = false, want true for fuzzy title match")
	}
}

func TestProvider_HasMovie_YearMismatch(t *testing.T) {
	t.Parallel()

	srv := searchServer(t, matrixBody)
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())

	got, err := p.HasMovie(context.Background(), "The Matrix", 2021)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("HasMovie = true, want false when the year disambiguates away")
	}
}

func TestProvider_HasShow_IgnoresMovies(t *testing.T) {
	t.Parallel()

	srv := searchServer(t, matrixBody)
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())

	got, err := p.HasShow(context.Background(), "The Matrix", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("HasShow = true, want false: only a movie carries that exact title")
	}
}

func TestProvider_HasMovie_EmptyLibrary(t *testing.T) {
	t.Parallel()

	srv := searchServer(t, `{"MediaContainer":{}}`)
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())

	got, err := p.HasMovie(context.Background(), "Amélie", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("HasMovie = true, want false for empty results")
	}
}
