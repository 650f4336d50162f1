// Package scheduler drives the three daily per-guild jobs: release-date
// refresh, reminder delivery, and the wishlist sale digest. A low-frequency
// tick checks every scheduled guild's local clock; a job fires when local
// time is inside its trigger window and its persisted last-run marker is
// not today's date. The marker is the sole idempotency gate, which makes
// runs crash-safe: a restart mid-window re-checks the marker and never
// double-runs, while a job that never completed runs as soon as the
// process resumes inside the window. Missed windows are not caught up
// same-day; the job simply waits for tomorrow.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/guildcfg"
	"github.com/mheller/gamekeeper/internal/service/wishlist"
)

const ymdLayout = "2006-01-02"

// Notifier delivers scheduler output to a chat channel. Send failures are
// logged by the scheduler; they never abort a job.
type Notifier interface {
	Send(ctx context.Context, channelID int64, content string) error
}

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type guildConfig interface {
	ScheduledGuilds(ctx context.Context) ([]int64, error)
	Timezone(ctx context.Context, guildID int64) (*time.Location, error)
	AllowedChannel(ctx context.Context, guildID int64) (int64, error)
	LastRun(ctx context.Context, guildID int64, marker string) (string, error)
	MarkRun(ctx context.Context, guildID int64, marker, ymd string) error
}

type reminderService interface {
	Refresh(ctx context.Context, guildID int64) (int, error)
	Purge(ctx context.Context, guildID int64, grace time.Duration) (int64, error)
	ListDue(ctx context.Context, guildID int64, from, to time.Time) ([]domain.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

type wishlistService interface {
	Channels(ctx context.Context, guildID int64) ([]int64, error)
	Digest(ctx context.Context, guildID, channelID int64) ([]wishlist.Deal, error)
}

type accessService interface {
	ExpirePending(ctx context.Context) (int, error)
}

// ---------------------------------------------------------------------------
// Scheduler
// ---------------------------------------------------------------------------

// Scheduler owns the tick loop and the per-guild job dispatch.
type Scheduler struct {
	log       *slog.Logger
	cfg       config.SchedulerConfig
	guilds    guildConfig
	reminders reminderService
	wishlists wishlistService
	access    accessService
	notifier  Notifier
	now       func() time.Time
}

// New creates a Scheduler.
func New(
	logger *slog.Logger,
	cfg config.SchedulerConfig,
	guilds guildConfig,
	reminders reminderService,
	wishlists wishlistService,
	access accessService,
	notifier Notifier,
) *Scheduler {
	return &Scheduler{
		log:       logger.With("component", "scheduler"),
		cfg:       cfg,
		guilds:    guilds,
		reminders: reminders,
		wishlists: wishlists,
		access:    access,
		notifier:  notifier,
		now:       time.Now,
	}
}

// SetClock overrides the time source (for testing).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "scheduler started",
		slog.Duration("tick_interval", s.cfg.TickInterval))

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one pass over every scheduled guild, fanning out with bounded
// concurrency. A guild's failure never affects another guild.
func (s *Scheduler) Tick(ctx context.Context) {
	if _, err := s.access.ExpirePending(ctx); err != nil {
		s.log.WarnContext(ctx, "expire pending sweep failed", slog.String("error", err.Error()))
	}

	guilds, err := s.guilds.ScheduledGuilds(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "list scheduled guilds failed", slog.String("error", err.Error()))
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.GuildConcurrency)
	for _, guildID := range guilds {
		g.Go(func() error {
			s.runGuild(gctx, guildID)
			return nil
		})
	}
	_ = g.Wait()
}

// job binds a daily job to its trigger time and idempotency marker.
type job struct {
	name   string
	marker string
	at     config.ClockTime
	run    func(ctx context.Context, guildID int64, loc *time.Location) error
}

// runGuild evaluates the guild's three job windows against its local clock.
func (s *Scheduler) runGuild(ctx context.Context, guildID int64) {
	loc, err := s.guilds.Timezone(ctx, guildID)
	if err != nil {
		// Guilds lose their scheduled behavior only by never configuring
		// a timezone; Tick already filtered on the key, so this is a
		// real failure.
		s.log.WarnContext(ctx, "resolve timezone failed",
			slog.Int64("guild_id", guildID), slog.String("error", err.Error()))
		return
	}

	local := s.now().In(loc)
	today := local.Format(ymdLayout)

	jobs := []job{
		{name: "refresh", marker: guildcfg.MarkerRefresh, at: s.cfg.RefreshAt, run: s.refreshJob},
		{name: "remind", marker: guildcfg.MarkerReminders, at: s.cfg.RemindAt, run: s.remindJob},
		{name: "digest", marker: guildcfg.MarkerWishlist, at: s.cfg.DigestAt, run: s.digestJob},
	}
	for _, j := range jobs {
		if !inWindow(local, j.at, s.cfg.Window) {
			continue
		}

		lastRun, err := s.guilds.LastRun(ctx, guildID, j.marker)
		if err != nil {
			s.log.WarnContext(ctx, "read last-run marker failed",
				slog.Int64("guild_id", guildID),
				slog.String("job", j.name),
				slog.String("error", err.Error()))
			continue
		}
		if lastRun == today {
			continue
		}

		start := s.now()
		if err := j.run(ctx, guildID, loc); err != nil {
			// Marker stays on yesterday: the job retries on the next
			// tick while the window is still open.
			s.log.ErrorContext(ctx, "daily job failed",
				slog.Int64("guild_id", guildID),
				slog.String("job", j.name),
				slog.String("error", err.Error()))
			continue
		}

		if err := s.guilds.MarkRun(ctx, guildID, j.marker, today); err != nil {
			s.log.ErrorContext(ctx, "write last-run marker failed",
				slog.Int64("guild_id", guildID),
				slog.String("job", j.name),
				slog.String("error", err.Error()))
			continue
		}

		s.log.InfoContext(ctx, "daily job completed",
			slog.Int64("guild_id", guildID),
			slog.String("job", j.name),
			slog.String("day", today),
			slog.Duration("took", s.now().Sub(start)))
	}
}

// inWindow reports whether local time is within [trigger, trigger+window)
// for today's occurrence of the trigger time.
func inWindow(local time.Time, at config.ClockTime, window time.Duration) bool {
	target := time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, local.Location())
	return !local.Before(target) && local.Sub(target) < window
}
