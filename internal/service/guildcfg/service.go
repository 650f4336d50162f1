// Package guildcfg implements per-guild configuration: the IANA timezone
// that drives the daily scheduler, the channel the bot listens in, and the
// last-run markers that make the daily jobs idempotent.
package guildcfg

import (
	"context"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/adapter/postgres/settings"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type settingsRepo interface {
	Get(ctx context.Context, guildID int64, key string) (string, error)
	Set(ctx context.Context, guildID int64, key, value string) error
	ListGuildsWithKey(ctx context.Context, key string) ([]int64, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the guild configuration business logic.
type Service struct {
	log      *slog.Logger
	settings settingsRepo
}

// NewService creates a new guild configuration service.
func NewService(logger *slog.Logger, repo settingsRepo) *Service {
	return &Service{
		log:      logger.With("service", "guildcfg"),
		settings: repo,
	}
}

// ScheduledGuilds returns every guild with a timezone configured. Guilds
// without one get no scheduled behavior; no default timezone is assumed.
func (s *Service) ScheduledGuilds(ctx context.Context) ([]int64, error) {
	return s.settings.ListGuildsWithKey(ctx, settings.KeyTimezone)
}
