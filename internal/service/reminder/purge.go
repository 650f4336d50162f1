package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Purge hard-deletes the guild's sent reminders and day-precision pending
// reminders whose release anchor aged past the grace window without a
// successful send. Returns the number of rows removed.
func (s *Service) Purge(ctx context.Context, guildID int64, grace time.Duration) (int64, error) {
	removed, err := s.reminders.PurgeExpired(ctx, guildID, s.now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}

	if removed > 0 {
		s.log.InfoContext(ctx, "expired reminders purged",
			slog.Int64("guild_id", guildID),
			slog.Int64("removed", removed),
		)
	}
	return removed, nil
}
