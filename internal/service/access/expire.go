package access

import (
	"context"
	"fmt"
	"log/slog"
)

// ExpirePending sweeps pending requests whose expiry has passed. Requests
// with a live in-process wait clean themselves up; this catches rows left
// behind by a crash or restart. Returns the number of rows removed.
func (s *Service) ExpirePending(ctx context.Context) (int, error) {
	expired, err := s.approvals.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}

	removed := 0
	for _, req := range expired {
		if err := s.approvals.DeletePending(ctx, req.GuildID, req.ActorID); err != nil {
			s.log.WarnContext(ctx, "delete expired pending",
				slog.Int64("guild_id", req.GuildID),
				slog.String("actor_id", req.ActorID),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.InfoContext(ctx, "expired pending requests swept", slog.Int("removed", removed))
	}

	return removed, nil
}
