// Package media implements the protected media-library actions: searching
// the movie/show managers and submitting monitored adds, with a library
// presence pre-check so already-owned items are reported instead of queued.
package media

import (
	"context"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

// Interfaces are exported so the caller can pass a nil interface for an
// unconfigured backend without the typed-nil trap.

// MovieManager is the Radarr-shaped backend.
type MovieManager interface {
	Lookup(ctx context.Context, term string) ([]radarr.Movie, error)
	Add(ctx context.Context, m radarr.Movie) error
}

// ShowManager is the Sonarr-shaped backend.
type ShowManager interface {
	Lookup(ctx context.Context, term string) ([]sonarr.Series, error)
	Add(ctx context.Context, s sonarr.Series) error
}

// Library answers presence checks against the media shelf.
type Library interface {
	HasMovie(ctx context.Context, title string, year int) (bool, error)
	HasShow(ctx context.Context, title string, year int) (bool, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the media-library business logic. A nil manager or
// library means that backend is not configured; its operations return
// domain.ErrNotConfigured (managers) or skip the presence check (library).
type Service struct {
	log     *slog.Logger
	movies  MovieManager
	shows   ShowManager
	library Library
}

// NewService creates a new media service.
func NewService(logger *slog.Logger, movies MovieManager, shows ShowManager, lib Library) *Service {
	return &Service{
		log:     logger.With("service", "media"),
		movies:  movies,
		shows:   shows,
		library: lib,
	}
}
