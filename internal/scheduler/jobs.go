package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/reminder"
	"github.com/mheller/gamekeeper/internal/service/wishlist"
)

// refreshJob re-checks every pending reminder's release date against the
// catalog so precision sharpens over time. Runs first so the remind job
// sees fresh data.
func (s *Scheduler) refreshJob(ctx context.Context, guildID int64, _ *time.Location) error {
	updated, err := s.reminders.Refresh(ctx, guildID)
	if err != nil {
		return err
	}
	if updated > 0 {
		s.log.InfoContext(ctx, "release dates refreshed",
			slog.Int64("guild_id", guildID), slog.Int("updated", updated))
	}
	return nil
}

// remindJob purges aged-out records, then delivers every reminder whose
// release falls on the guild's local tomorrow, soonest first. A failed
// send leaves the record pending; it gets one more window before the
// purge grace ages it out.
func (s *Scheduler) remindJob(ctx context.Context, guildID int64, loc *time.Location) error {
	if _, err := s.reminders.Purge(ctx, guildID, s.cfg.PurgeGrace); err != nil {
		s.log.WarnContext(ctx, "purge failed",
			slog.Int64("guild_id", guildID), slog.String("error", err.Error()))
	}

	from, to := reminder.DueWindow(s.now(), loc)
	due, err := s.reminders.ListDue(ctx, guildID, from, to)
	if err != nil {
		return err
	}

	for _, rem := range due {
		channelID, ok := s.resolveChannel(ctx, guildID, rem.ChannelID)
		if !ok {
			s.log.WarnContext(ctx, "reminder has no deliverable channel",
				slog.Int64("guild_id", guildID),
				slog.Int64("app_id", rem.AppID),
				slog.String("name", rem.Name))
			continue
		}

		if err := s.notifier.Send(ctx, channelID, formatReminder(rem)); err != nil {
			s.log.WarnContext(ctx, "reminder send failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("app_id", rem.AppID),
				slog.String("error", err.Error()))
			continue
		}
		if err := s.reminders.MarkSent(ctx, rem.ID); err != nil {
			s.log.WarnContext(ctx, "mark sent failed",
				slog.Int64("guild_id", guildID),
				slog.String("reminder_id", rem.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// digestJob sends each watching channel its ranked sale digest. Channels
// with nothing on sale get no message.
func (s *Scheduler) digestJob(ctx context.Context, guildID int64, _ *time.Location) error {
	channels, err := s.wishlists.Channels(ctx, guildID)
	if err != nil {
		return err
	}

	for _, channelID := range channels {
		deals, err := s.wishlists.Digest(ctx, guildID, channelID)
		if err != nil {
			s.log.WarnContext(ctx, "digest assembly failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("channel_id", channelID),
				slog.String("error", err.Error()))
			continue
		}
		if len(deals) == 0 {
			continue
		}

		if err := s.notifier.Send(ctx, channelID, formatDigest(deals)); err != nil {
			s.log.WarnContext(ctx, "digest send failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("channel_id", channelID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// resolveChannel picks the reminder's own channel when set, else the
// guild's configured channel. False means nowhere to deliver.
func (s *Scheduler) resolveChannel(ctx context.Context, guildID, reminderChannel int64) (int64, bool) {
	if reminderChannel != 0 {
		return reminderChannel, true
	}

	fallback, err := s.guilds.AllowedChannel(ctx, guildID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "resolve fallback channel failed",
				slog.Int64("guild_id", guildID), slog.String("error", err.Error()))
		}
		return 0, false
	}
	return fallback, true
}

func formatReminder(rem domain.Reminder) string {
	return fmt.Sprintf("**%s** releases tomorrow (%s)!", rem.Name, rem.ReleaseText)
}

func formatDigest(deals []wishlist.Deal) string {
	var b strings.Builder
	b.WriteString("Wishlist items on sale today:\n")
	for _, d := range deals {
		b.WriteString(fmt.Sprintf("• **%s**: %d%% off", d.Name, d.DiscountPercent))
		if d.FinalPrice != "" {
			b.WriteString(fmt.Sprintf(" (%s)", d.FinalPrice))
		}
		b.WriteString("\n")
	}
	return b.String()
}
