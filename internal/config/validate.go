package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Bot.validate(); err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	if err := c.Scheduler.validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}

func (b *BotConfig) validate() error {
	b.OwnerIDs = splitCSV(b.OwnerIDsRaw)
	if len(b.OwnerIDs) == 0 {
		return fmt.Errorf("owner_ids must list at least one actor id")
	}
	if strings.TrimSpace(b.ApprovalToken) == "" {
		return fmt.Errorf("approval_token must not be empty")
	}
	if b.ApprovalTimeout <= 0 {
		return fmt.Errorf("approval_timeout must be > 0 (got %v)", b.ApprovalTimeout)
	}
	if b.InactivityDays <= 0 {
		return fmt.Errorf("inactivity_days must be > 0 (got %d)", b.InactivityDays)
	}
	if b.RequestCooldown < 0 {
		return fmt.Errorf("request_cooldown must be >= 0 (got %v)", b.RequestCooldown)
	}
	return nil
}

func (s *SchedulerConfig) validate() error {
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be > 0 (got %v)", s.TickInterval)
	}
	if s.Window <= 0 {
		return fmt.Errorf("window must be > 0 (got %v)", s.Window)
	}
	if s.PurgeGrace <= 0 {
		return fmt.Errorf("purge_grace must be > 0 (got %v)", s.PurgeGrace)
	}
	if s.GuildConcurrency <= 0 {
		return fmt.Errorf("guild_concurrency must be > 0 (got %d)", s.GuildConcurrency)
	}

	var err error
	if s.RefreshAt, err = ParseClock(s.RefreshAtRaw); err != nil {
		return fmt.Errorf("refresh_at: %w", err)
	}
	if s.RemindAt, err = ParseClock(s.RemindAtRaw); err != nil {
		return fmt.Errorf("remind_at: %w", err)
	}
	if s.DigestAt, err = ParseClock(s.DigestAtRaw); err != nil {
		return fmt.Errorf("digest_at: %w", err)
	}

	// Refresh must run before remind so reminders fire on today's
	// storefront data, and the digest last so it never races either.
	if s.RefreshAt.MinuteOfDay() >= s.RemindAt.MinuteOfDay() {
		return fmt.Errorf("refresh_at %s must be before remind_at %s", s.RefreshAtRaw, s.RemindAtRaw)
	}
	if s.RemindAt.MinuteOfDay() >= s.DigestAt.MinuteOfDay() {
		return fmt.Errorf("remind_at %s must be before digest_at %s", s.RemindAtRaw, s.DigestAtRaw)
	}

	return nil
}

// ParseClock parses a "HH:MM" wall-clock string (24-hour) into a ClockTime.
func ParseClock(raw string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q, want HH:MM", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", raw)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}
