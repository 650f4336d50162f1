package wishlist

import (
	"context"
	"fmt"

	"github.com/mheller/gamekeeper/internal/domain"
)

// List returns the channel's watched items, ordered by name.
func (s *Service) List(ctx context.Context, guildID, channelID int64) ([]domain.WishlistEntry, error) {
	entries, err := s.entries.ListForChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Channels returns the guild's channels that have at least one watched
// item. The digest job visits each.
func (s *Service) Channels(ctx context.Context, guildID int64) ([]int64, error) {
	channels, err := s.entries.ListChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}
