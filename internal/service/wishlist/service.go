// Package wishlist implements per-channel storefront watchlists and the
// daily sale-digest assembly: price snapshots per watched item, filtered
// to live discounts and ranked steepest-first.
package wishlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/mheller/gamekeeper/internal/adapter/provider/steam"
	"github.com/mheller/gamekeeper/internal/domain"
)

// MaxDigestItems caps one digest message; anything beyond the steepest
// discounts is noise.
const MaxDigestItems = 10

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type wishlistRepo interface {
	Add(ctx context.Context, e domain.WishlistEntry) error
	Remove(ctx context.Context, guildID, channelID, appID int64) (bool, error)
	ListForChannel(ctx context.Context, guildID, channelID int64) ([]domain.WishlistEntry, error)
	ListChannels(ctx context.Context, guildID int64) ([]int64, error)
}

type catalog interface {
	AppDetails(ctx context.Context, appID int64) (*steam.AppDetails, error)
	PriceSnapshot(ctx context.Context, appID int64) (*steam.PriceSnapshot, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the wishlist business logic.
type Service struct {
	log     *slog.Logger
	entries wishlistRepo
	catalog catalog
	now     func() time.Time
}

// NewService creates a new wishlist service.
func NewService(logger *slog.Logger, entries wishlistRepo, catalog catalog) *Service {
	return &Service{
		log:     logger.With("service", "wishlist"),
		entries: entries,
		catalog: catalog,
		now:     time.Now,
	}
}

// SetClock overrides the time source (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
