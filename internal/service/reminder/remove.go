package reminder

import (
	"context"
	"fmt"
	"log/slog"
)

// Remove deletes the pending reminder for an item in a channel. Returns
// false when nothing was pending; that is not an error.
func (s *Service) Remove(ctx context.Context, guildID, appID, channelID int64) (bool, error) {
	removed, err := s.reminders.RemovePending(ctx, guildID, appID, channelID)
	if err != nil {
		return false, fmt.Errorf("remove pending: %w", err)
	}

	if removed {
		s.log.InfoContext(ctx, "reminder removed",
			slog.Int64("guild_id", guildID),
			slog.Int64("app_id", appID),
			slog.Int64("channel_id", channelID),
		)
	}
	return removed, nil
}
