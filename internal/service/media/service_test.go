package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
	"github.com/mheller/gamekeeper/internal/domain"
)

// ===========================================================================
// Manual mocks (func fields)
// ===========================================================================

type mockMovieManager struct {
	LookupFunc func(ctx context.Context, term string) ([]radarr.Movie, error)
	AddFunc    func(ctx context.Context, m radarr.Movie) error
}

func (m *mockMovieManager) Lookup(ctx context.Context, term string) ([]radarr.Movie, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, term)
	}
	return nil, nil
}

func (m *mockMovieManager) Add(ctx context.Context, mv radarr.Movie) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, mv)
	}
	return nil
}

type mockShowManager struct {
	LookupFunc func(ctx context.Context, term string) ([]sonarr.Series, error)
	AddFunc    func(ctx context.Context, s sonarr.Series) error
}

func (m *mockShowManager) Lookup(ctx context.Context, term string) ([]sonarr.Series, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, term)
	}
	return nil, nil
}

func (m *mockShowManager) Add(ctx context.Context, s sonarr.Series) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, s)
	}
	return nil
}

type mockLibrary struct {
	HasMovieFunc func(ctx context.Context, title string, year int) (bool, error)
	HasShowFunc  func(ctx context.Context, title string, year int) (bool, error)
}

func (m *mockLibrary) HasMovie(ctx context.Context, title string, year int) (bool, error) {
	if m.HasMovieFunc != nil {
		return m.HasMovieFunc(ctx, title, year)
	}
	return false, nil
}

func (m *mockLibrary) HasShow(ctx context.Context, title string, year int) (bool, error) {
	if m.HasShowFunc != nil {
		return m.HasShowFunc(ctx, title, year)
	}
	return false, nil
}

// ===========================================================================
// Helpers
// ===========================================================================

func newTestService(movies *mockMovieManager, shows *mockShowManager, lib *mockLibrary) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Build up the interface args so a nil mock stays a nil interface.
	var mm MovieManager
	if movies != nil {
		mm = movies
	}
	var sm ShowManager
	if shows != nil {
		sm = shows
	}
	var l Library
	if lib != nil {
		l = lib
	}
	return NewService(logger, mm, sm, l)
}

var matrix = radarr.Movie{Title: "The Matrix", Year: 1999, TmdbID: 603}

// ===========================================================================
// Search
// ===========================================================================

func TestSearchMovie(t *testing.T) {
	t.Parallel()

	movies := &mockMovieManager{LookupFunc: func(_ context.Context, term string) ([]radarr.Movie, error) {
		assert.Equal(t, "matrix", term)
		return []radarr.Movie{matrix}, nil
	}}
	svc := newTestService(movies, nil, nil)

	got, err := svc.SearchMovie(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "The Matrix", got[0].Title)
}

func TestSearchMovie_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil, nil)

	_, err := svc.SearchMovie(context.Background(), "matrix")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSearchShow_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil, nil)

	_, err := svc.SearchShow(context.Background(), "expanse")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

// ===========================================================================
// Add
// ===========================================================================

func TestAddMovie(t *testing.T) {
	t.Parallel()

	var added radarr.Movie
	movies := &mockMovieManager{AddFunc: func(_ context.Context, m radarr.Movie) error {
		added = m
		return nil
	}}
	svc := newTestService(movies, nil, nil)

	outcome, err := svc.AddMovie(context.Background(), matrix)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.Equal(t, int64(603), added.TmdbID)
}

func TestAddMovie_AlreadyQueued(t *testing.T) {
	t.Parallel()

	movies := &mockMovieManager{AddFunc: func(_ context.Context, _ radarr.Movie) error {
		return domain.ErrAlreadyExists
	}}
	svc := newTestService(movies, nil, nil)

	outcome, err := svc.AddMovie(context.Background(), matrix)
	require.NoError(t, err, "duplicate rejection is a normal outcome")
	assert.Equal(t, OutcomeAlreadyQueued, outcome)
}

func TestAddMovie_AlreadyInLibrary(t *testing.T) {
	t.Parallel()

	addCalled := false
	movies := &mockMovieManager{AddFunc: func(_ context.Context, _ radarr.Movie) error {
		addCalled = true
		return nil
	}}
	lib := &mockLibrary{HasMovieFunc: func(_ context.Context, title string, year int) (bool, error) {
		assert.Equal(t, "The Matrix", title)
		assert.Equal(t, 1999, year)
		return true, nil
	}}
	svc := newTestService(movies, nil, lib)

	outcome, err := svc.AddMovie(context.Background(), matrix)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyInLibrary, outcome)
	assert.False(t, addCalled, "owned items are never re-queued")
}

func TestAddMovie_LibraryOutageDoesNotBlock(t *testing.T) {
	t.Parallel()

	movies := &mockMovieManager{}
	lib := &mockLibrary{HasMovieFunc: func(_ context.Context, _ string, _ int) (bool, error) {
		return false, errors.New("plex down")
	}}
	svc := newTestService(movies, nil, lib)

	outcome, err := svc.AddMovie(context.Background(), matrix)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
}

func TestAddShow_ChecksShowsNotMovies(t *testing.T) {
	t.Parallel()

	shows := &mockShowManager{}
	lib := &mockLibrary{
		HasMovieFunc: func(_ context.Context, _ string, _ int) (bool, error) {
			t.Fatal("movie check for a show add")
			return false, nil
		},
		HasShowFunc: func(_ context.Context, _ string, _ int) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(nil, shows, lib)

	outcome, err := svc.AddShow(context.Background(), sonarr.Series{Title: "The Expanse", Year: 2015})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyInLibrary, outcome)
}

func TestAddShow_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil, nil)

	_, err := svc.AddShow(context.Background(), sonarr.Series{Title: "The Expanse"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
