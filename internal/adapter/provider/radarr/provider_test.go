package radarr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.ArrConfig {
	return config.ArrConfig{
		APIKey:           "test-key",
		RootFolder:       "/movies",
		QualityProfileID: 2,
		Timeout:          5 * time.Second,
	}
}

func TestProvider_Lookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/movie/lookup" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title":"The Matrix","year":1999,"tmdbId":603,"titleSlug":"the-matrix-603"}]`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	movies, err := p.Lookup(context.Background(), "matrix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 1 || movies[0].TmdbID != 603 {
		t.Errorf("movies = %+v, want one hit with tmdbId 603", movies)
	}
}

func TestProvider_GetByTMDBID_NotInLibrary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	_, err := p.GetByTMDBID(context.Background(), 603)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestProvider_Add(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/movie" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["rootFolderPath"] != "/movies" {
			t.Errorf("rootFolderPath = %v, want /movies", req["rootFolderPath"])
		}
		if req["qualityProfileId"] != float64(2) {
			t.Errorf("qualityProfileId = %v, want 2", req["qualityProfileId"])
		}
		if req["monitored"] != true {
			t.Error("monitored should be true")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	err := p.Add(context.Background(), Movie{Title: "The Matrix", Year: 1999, TmdbID: 603, TitleSlug: "the-matrix-603"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProvider_Add_AlreadyInLibrary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[{"errorMessage":"This movie has already been added"}]`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, testConfig(), newTestLogger())
	err := p.Add(context.Background(), Movie{Title: "The Matrix", TmdbID: 603})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("got %v, want ErrAlreadyExists", err)
	}
}
