package media

import (
	"context"
	"fmt"

	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
	"github.com/mheller/gamekeeper/internal/domain"
)

// SearchMovie returns movie-manager candidates for a term.
func (s *Service) SearchMovie(ctx context.Context, term string) ([]radarr.Movie, error) {
	if s.movies == nil {
		return nil, fmt.Errorf("movie manager: %w", domain.ErrNotConfigured)
	}

	movies, err := s.movies.Lookup(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("lookup movie: %w", err)
	}
	return movies, nil
}

// SearchShow returns show-manager candidates for a term.
func (s *Service) SearchShow(ctx context.Context, term string) ([]sonarr.Series, error) {
	if s.shows == nil {
		return nil, fmt.Errorf("show manager: %w", domain.ErrNotConfigured)
	}

	series, err := s.shows.Lookup(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("lookup show: %w", err)
	}
	return series, nil
}
