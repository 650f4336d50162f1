// Package steam fetches catalog data from the Steam storefront API:
// search, app details (release text for the date normalizer), and price
// snapshots for the sale digest.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

// SearchHit is one ranked storefront search result.
type SearchHit struct {
	AppID int64
	Name  string
}

// AppDetails is the catalog record for one item.
type AppDetails struct {
	AppID       int64
	Name        string
	ReleaseText string
	ComingSoon  bool
	IsFree      bool
	Windows     bool
	Mac         bool
	Linux       bool
	HeaderImage string
	StoreURL    string
	Price       *PriceSnapshot
}

// PriceSnapshot is the current price state of one item.
type PriceSnapshot struct {
	DiscountPercent  int
	FinalFormatted   string
	InitialFormatted string
	IsFree           bool
}

// OnSale reports whether the item is currently discounted.
func (p PriceSnapshot) OnSale() bool { return p.DiscountPercent > 0 }

// Provider fetches catalog data from the Steam storefront.
type Provider struct {
	baseURL    string
	country    string
	language   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from SteamConfig.
func NewProvider(cfg config.SteamConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    cfg.StoreBaseURL,
		country:    cfg.Country,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "steam"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, cfg config.SteamConfig, logger *slog.Logger) *Provider {
	p := NewProvider(cfg, logger)
	p.baseURL = baseURL
	return p
}

// Search returns ranked storefront matches for a term. An empty result is
// not an error.
func (p *Provider) Search(ctx context.Context, term string) ([]SearchHit, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("l", p.language)
	q.Set("cc", p.country)
	reqURL := p.baseURL + "/api/storesearch/?" + q.Encode()

	var res searchResponse
	if err := p.getJSON(ctx, reqURL, &res); err != nil {
		return nil, fmt.Errorf("steam: search %q: %w", term, err)
	}

	hits := make([]SearchHit, 0, len(res.Items))
	for _, it := range res.Items {
		hits = append(hits, SearchHit{AppID: it.ID, Name: it.Name})
	}

	p.log.DebugContext(ctx, "steam search",
		slog.String("term", term),
		slog.Int("hits", len(hits)),
	)

	return hits, nil
}

// AppDetails fetches the catalog record for an item.
// Returns domain.ErrNotFound when the storefront does not know the id.
func (p *Provider) AppDetails(ctx context.Context, appID int64) (*AppDetails, error) {
	q := url.Values{}
	q.Set("appids", strconv.FormatInt(appID, 10))
	q.Set("l", p.language)
	q.Set("cc", p.country)
	reqURL := p.baseURL + "/api/appdetails?" + q.Encode()

	var res map[string]appDetailsEnvelope
	if err := p.getJSON(ctx, reqURL, &res); err != nil {
		return nil, fmt.Errorf("steam: details %d: %w", appID, err)
	}

	env, ok := res[strconv.FormatInt(appID, 10)]
	if !ok || !env.Success || env.Data == nil {
		return nil, fmt.Errorf("steam: details %d: %w", appID, domain.ErrNotFound)
	}
	d := env.Data

	details := &AppDetails{
		AppID:       appID,
		Name:        d.Name,
		ReleaseText: d.ReleaseDate.Date,
		ComingSoon:  d.ReleaseDate.ComingSoon,
		IsFree:      d.IsFree,
		Windows:     d.Platforms.Windows,
		Mac:         d.Platforms.Mac,
		Linux:       d.Platforms.Linux,
		HeaderImage: d.HeaderImage,
		StoreURL:    p.baseURL + "/app/" + strconv.FormatInt(appID, 10),
	}
	if d.PriceOverview != nil {
		details.Price = &PriceSnapshot{
			DiscountPercent:  d.PriceOverview.DiscountPercent,
			FinalFormatted:   d.PriceOverview.FinalFormatted,
			InitialFormatted: d.PriceOverview.InitialFormatted,
		}
	}

	return details, nil
}

// PriceSnapshot fetches the current price state for an item. Free items
// report IsFree with no discount.
func (p *Provider) PriceSnapshot(ctx context.Context, appID int64) (*PriceSnapshot, error) {
	details, err := p.AppDetails(ctx, appID)
	if err != nil {
		return nil, err
	}

	snap := &PriceSnapshot{IsFree: details.IsFree}
	if details.Price != nil {
		snap.DiscountPercent = details.Price.DiscountPercent
		snap.FinalFormatted = details.Price.FinalFormatted
		snap.InitialFormatted = details.Price.InitialFormatted
	}

	return snap, nil
}

func (p *Provider) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "steam retry", slog.String("url", req.URL.Path), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	return p.httpClient.Do(req)
}
