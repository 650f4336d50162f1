package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/domain"
)

// Toggle flips an item's watched state for a channel. Returns the entry's
// resulting state: added true means the item is now watched. The resolved
// item name is returned for the caller's confirmation message.
//
// Removal needs no catalog round-trip, so it is checked first.
func (s *Service) Toggle(ctx context.Context, guildID, channelID, appID int64, addedBy string) (added bool, name string, err error) {
	removed, err := s.entries.Remove(ctx, guildID, channelID, appID)
	if err != nil {
		return false, "", fmt.Errorf("remove entry: %w", err)
	}
	if removed {
		s.log.InfoContext(ctx, "wishlist entry removed",
			slog.Int64("guild_id", guildID),
			slog.Int64("channel_id", channelID),
			slog.Int64("app_id", appID),
		)
		return false, "", nil
	}

	details, err := s.catalog.AppDetails(ctx, appID)
	if err != nil {
		return false, "", fmt.Errorf("app details %d: %w", appID, err)
	}

	entry := domain.WishlistEntry{
		GuildID:   guildID,
		ChannelID: channelID,
		AppID:     appID,
		Name:      details.Name,
		AddedBy:   addedBy,
		AddedAt:   s.now(),
	}
	if err := s.entries.Add(ctx, entry); err != nil {
		// A concurrent toggle beat us to the insert; the item is watched
		// either way.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return true, details.Name, nil
		}
		return false, "", fmt.Errorf("add entry: %w", err)
	}

	s.log.InfoContext(ctx, "wishlist entry added",
		slog.Int64("guild_id", guildID),
		slog.Int64("channel_id", channelID),
		slog.Int64("app_id", appID),
	)
	return true, details.Name, nil
}
