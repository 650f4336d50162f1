package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
	"github.com/mheller/gamekeeper/internal/domain"
)

// AddMovie queues a movie for download. The library server is consulted
// first; an item already on the shelf is reported, not re-queued. A
// library outage degrades to skipping the check rather than blocking the
// add.
func (s *Service) AddMovie(ctx context.Context, m radarr.Movie) (AddOutcome, error) {
	if s.movies == nil {
		return 0, fmt.Errorf("movie manager: %w", domain.ErrNotConfigured)
	}

	if s.hasInLibrary(ctx, domain.MediaMovie, m.Title, m.Year) {
		return OutcomeAlreadyInLibrary, nil
	}

	if err := s.movies.Add(ctx, m); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return OutcomeAlreadyQueued, nil
		}
		return 0, fmt.Errorf("add movie: %w", err)
	}
	return OutcomeAdded, nil
}

// AddShow queues a show for download. Same presence semantics as AddMovie.
func (s *Service) AddShow(ctx context.Context, sr sonarr.Series) (AddOutcome, error) {
	if s.shows == nil {
		return 0, fmt.Errorf("show manager: %w", domain.ErrNotConfigured)
	}

	if s.hasInLibrary(ctx, domain.MediaShow, sr.Title, sr.Year) {
		return OutcomeAlreadyInLibrary, nil
	}

	if err := s.shows.Add(ctx, sr); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return OutcomeAlreadyQueued, nil
		}
		return 0, fmt.Errorf("add show: %w", err)
	}
	return OutcomeAdded, nil
}

// hasInLibrary runs the optional presence pre-check. Errors are logged and
// treated as "not present" so a library outage never blocks adds.
func (s *Service) hasInLibrary(ctx context.Context, kind domain.MediaKind, title string, year int) bool {
	if s.library == nil {
		return false
	}

	var (
		has bool
		err error
	)
	switch kind {
	case domain.MediaMovie:
		has, err = s.library.HasMovie(ctx, title, year)
	case domain.MediaShow:
		has, err = s.library.HasShow(ctx, title, year)
	}
	if err != nil {
		s.log.WarnContext(ctx, "library presence check failed",
			slog.String("kind", kind.String()),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return false
	}
	return has
}
