// Package sonarr talks to a Sonarr series-manager instance: lookup by term,
// library membership by TVDB id, and monitored adds.
package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Series is one Sonarr lookup or library record.
type Series struct {
	Title        string `json:"title"`
	Year         int    `json:"year"`
	TvdbID       int64  `json:"tvdbId"`
	TitleSlug    string `json:"titleSlug"`
	Overview     string `json:"overview"`
	RemotePoster string `json:"remotePoster"`
}

// Provider talks to one Sonarr instance.
type Provider struct {
	baseURL          string
	apiKey           string
	rootFolder       string
	qualityProfileID int
	httpClient       *http.Client
	log              *slog.Logger
}

// NewProvider creates a Provider from ArrConfig.
func NewProvider(cfg config.ArrConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:          strings.TrimRight(cfg.URL, "/"),
		apiKey:           cfg.APIKey,
		rootFolder:       cfg.RootFolder,
		qualityProfileID: cfg.QualityProfileID,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		log:              logger.With("adapter", "sonarr"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, cfg config.ArrConfig, logger *slog.Logger) *Provider {
	cfg.URL = baseURL
	return NewProvider(cfg, logger)
}

// Lookup returns remote candidates for a search term.
func (p *Provider) Lookup(ctx context.Context, term string) ([]Series, error) {
	reqURL := p.baseURL + "/api/v3/series/lookup?term=" + url.QueryEscape(term)

	var series []Series
	if err := p.doJSON(ctx, http.MethodGet, reqURL, nil, &series); err != nil {
		return nil, fmt.Errorf("sonarr: lookup %q: %w", term, err)
	}

	p.log.DebugContext(ctx, "sonarr lookup",
		slog.String("term", term),
		slog.Int("candidates", len(series)),
	)

	return series, nil
}

// GetByTVDBID returns the library record for a TVDB id.
// Returns domain.ErrNotFound when the series is not in the library.
func (p *Provider) GetByTVDBID(ctx context.Context, tvdbID int64) (*Series, error) {
	reqURL := p.baseURL + "/api/v3/series?tvdbId=" + strconv.FormatInt(tvdbID, 10)

	var series []Series
	if err := p.doJSON(ctx, http.MethodGet, reqURL, nil, &series); err != nil {
		return nil, fmt.Errorf("sonarr: get tvdb %d: %w", tvdbID, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("sonarr: get tvdb %d: %w", tvdbID, domain.ErrNotFound)
	}

	return &series[0], nil
}

// Add submits a monitored add with the configured root folder and quality
// profile. A remote "already exists" rejection maps to
// domain.ErrAlreadyExists, not failure.
func (p *Provider) Add(ctx context.Context, s Series) error {
	payload := addRequest{
		Title:            s.Title,
		Year:             s.Year,
		TvdbID:           s.TvdbID,
		TitleSlug:        s.TitleSlug,
		RootFolderPath:   p.rootFolder,
		QualityProfileID: p.qualityProfileID,
		Monitored:        true,
		AddOptions:       addOptions{SearchForMissingEpisodes: true},
	}

	err := p.doJSON(ctx, http.MethodPost, p.baseURL+"/api/v3/series", payload, nil)
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("sonarr: add %q: %w", s.Title, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("sonarr: add %q: %w", s.Title, err)
	}

	p.log.InfoContext(ctx, "sonarr series added",
		slog.String("title", s.Title),
		slog.Int64("tvdb_id", s.TvdbID),
	)

	return nil
}

type addRequest struct {
	Title            string     `json:"title"`
	Year             int        `json:"year"`
	TvdbID           int64      `json:"tvdbId"`
	TitleSlug        string     `json:"titleSlug"`
	RootFolderPath   string     `json:"rootFolderPath"`
	QualityProfileID int        `json:"qualityProfileId"`
	Monitored        bool       `json:"monitored"`
	AddOptions       addOptions `json:"addOptions"`
}

type addOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
}

// isAlreadyExists recognizes the remote's duplicate-add rejection by its
// message text, the only signal the API gives.
func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already been added") || strings.Contains(msg, "already exists")
}

func (p *Provider) doJSON(ctx context.Context, method, reqURL string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}

	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors, rewinding the body via GetBody before the second attempt.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "sonarr retry", slog.String("url", req.URL.Path), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	if req.GetBody != nil {
		body, gbErr := req.GetBody()
		if gbErr != nil {
			return nil, fmt.Errorf("rewind request body: %w", gbErr)
		}
		req.Body = body
	}

	return p.httpClient.Do(req)
}
