package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mheller/gamekeeper/internal/domain"
)

// Add creates a pending reminder for a catalog item in a channel. The
// item's release text is fetched from the catalog and normalized at
// creation time; unknown dates get the far-future sentinel so ordering
// stays total. At most one pending reminder exists per (item, channel).
//
// The returned Reminder carries the resolved name and parsed release data
// for the caller's confirmation message; it is nil unless the outcome is
// OutcomeAdded.
func (s *Service) Add(ctx context.Context, guildID, appID, channelID int64, createdBy string) (AddOutcome, *domain.Reminder, error) {
	exists, err := s.reminders.ExistsPending(ctx, guildID, appID, channelID)
	if err != nil {
		return 0, nil, fmt.Errorf("exists pending: %w", err)
	}
	if exists {
		return OutcomeAlreadyPending, nil, nil
	}

	details, err := s.catalog.AppDetails(ctx, appID)
	if err != nil {
		return 0, nil, fmt.Errorf("app details %d: %w", appID, err)
	}

	now := s.now()
	parsed, precision := domain.ParseReleaseDate(details.ReleaseText)
	releaseAt := domain.AnchorOrFarFuture(parsed)

	// A day-exact date in the past means the item is already out; a
	// reminder for it would only ever be purged, never delivered.
	if precision == domain.PrecisionDay && releaseAt.Before(now.Truncate(24*time.Hour)) {
		return OutcomeAlreadyReleased, nil, nil
	}

	rem := domain.Reminder{
		ID:            uuid.New(),
		GuildID:       guildID,
		AppID:         appID,
		Name:          details.Name,
		ReleaseAt:     releaseAt,
		Precision:     precision,
		ReleaseText:   details.ReleaseText,
		LastCheckedAt: now,
		ChannelID:     channelID,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	if err := s.reminders.Add(ctx, rem); err != nil {
		// Lost a race with a concurrent add for the same pair.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return OutcomeAlreadyPending, nil, nil
		}
		return 0, nil, fmt.Errorf("add reminder: %w", err)
	}

	s.log.InfoContext(ctx, "reminder added",
		slog.Int64("guild_id", guildID),
		slog.Int64("app_id", appID),
		slog.Int64("channel_id", channelID),
		slog.String("precision", precision.String()),
	)
	return OutcomeAdded, &rem, nil
}
