package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/domain"
)

// Refresh re-fetches release text from the catalog for the guild's pending
// reminders and writes back only on change, sharpening precision over time
// (year to quarter to day) without user action. Day-exact reminders are
// final and skipped. One fetch and at most one write per distinct item.
//
// A single item's fetch failure is logged and skipped; it never aborts the
// rest of the run. Returns the number of items whose fields were updated.
func (s *Service) Refresh(ctx context.Context, guildID int64) (int, error) {
	candidates, err := s.reminders.RefreshCandidates(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("refresh candidates: %w", err)
	}

	seen := make(map[int64]bool, len(candidates))
	updated := 0
	for _, rem := range candidates {
		if seen[rem.AppID] || rem.Precision == domain.PrecisionDay {
			continue
		}
		seen[rem.AppID] = true

		details, err := s.catalog.AppDetails(ctx, rem.AppID)
		if err != nil {
			s.log.WarnContext(ctx, "refresh fetch failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("app_id", rem.AppID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if details.ReleaseText == rem.ReleaseText {
			continue
		}

		parsed, precision := domain.ParseReleaseDate(details.ReleaseText)
		releaseAt := domain.AnchorOrFarFuture(parsed)

		if _, err := s.reminders.UpdateFields(ctx, guildID, rem.AppID, releaseAt, precision, details.ReleaseText, s.now()); err != nil {
			s.log.WarnContext(ctx, "refresh write failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("app_id", rem.AppID),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.log.InfoContext(ctx, "release date refreshed",
			slog.Int64("guild_id", guildID),
			slog.Int64("app_id", rem.AppID),
			slog.String("from", rem.Precision.String()),
			slog.String("to", precision.String()),
		)
		updated++
	}

	return updated, nil
}
