package guildcfg

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mheller/gamekeeper/internal/adapter/postgres/settings"
)

// SetChannel stores the channel the bot listens and notifies in.
func (s *Service) SetChannel(ctx context.Context, guildID, channelID int64) error {
	if err := s.settings.Set(ctx, guildID, settings.KeyAllowedChannel, strconv.FormatInt(channelID, 10)); err != nil {
		return fmt.Errorf("set channel: %w", err)
	}

	s.log.InfoContext(ctx, "guild channel set",
		slog.Int64("guild_id", guildID),
		slog.Int64("channel_id", channelID),
	)
	return nil
}

// AllowedChannel returns the guild's configured channel.
// Returns domain.ErrNotFound when no channel was ever set.
func (s *Service) AllowedChannel(ctx context.Context, guildID int64) (int64, error) {
	raw, err := s.settings.Get(ctx, guildID, settings.KeyAllowedChannel)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse channel id %q: %w", raw, err)
	}
	return id, nil
}
