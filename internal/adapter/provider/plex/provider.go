// Package plex answers library presence questions against a Plex server:
// does a movie or show with roughly this title (and optionally this year)
// already exist.
package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Provider queries one Plex server.
type Provider struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from PlexConfig.
func NewProvider(cfg config.PlexConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "plex"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, cfg config.PlexConfig, logger *slog.Logger) *Provider {
	cfg.URL = baseURL
	return NewProvider(cfg, logger)
}

// HasMovie reports whether a movie with the title is in the library.
// Matching is case and punctuation insensitive; year 0 matches any year.
func (p *Provider) HasMovie(ctx context.Context, title string, year int) (bool, error) {
	return p.hasItem(ctx, title, year, domain.MediaMovie)
}

// HasShow reports whether a show with the title is in the library.
// Matching is case and punctuation insensitive; year 0 matches any year.
func (p *Provider) HasShow(ctx context.Context, title string, year int) (bool, error) {
	return p.hasItem(ctx, title, year, domain.MediaShow)
}

func (p *Provider) hasItem(ctx context.Context, title string, year int, kind domain.MediaKind) (bool, error) {
	q := url.Values{}
	q.Set("query", title)
	reqURL := p.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("plex: create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("plex: search %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return false, fmt.Errorf("plex: search %q: unexpected status %d: %s", title, resp.StatusCode, snippet)
	}

	var res searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, fmt.Errorf("plex: decode json: %w", err)
	}

	wantType := "movie"
	if kind == domain.MediaShow {
		wantType = "show"
	}
	wantTitle := domain.NormalizeTitle(title)

	for _, md := range res.MediaContainer.Metadata {
		if md.Type != wantType {
			continue
		}
		if domain.NormalizeTitle(md.Title) != wantTitle {
			continue
		}
		if year != 0 && md.Year != 0 && md.Year != year {
			continue
		}

		p.log.DebugContext(ctx, "plex match",
			slog.String("title", md.Title),
			slog.Int("year", md.Year),
			slog.String("type", md.Type),
		)
		return true, nil
	}

	return false, nil
}

type searchResponse struct {
	MediaContainer struct {
		Metadata []searchMetadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

type searchMetadata struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}
