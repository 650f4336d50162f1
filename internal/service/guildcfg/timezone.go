package guildcfg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mheller/gamekeeper/internal/adapter/postgres/settings"
	"github.com/mheller/gamekeeper/internal/domain"
)

// tzAliases maps the shorthand people actually type to IANA names.
var tzAliases = map[string]string{
	"utc":      "UTC",
	"gmt":      "Etc/GMT",
	"mt":       "America/Denver",
	"mst":      "America/Denver",
	"mdt":      "America/Denver",
	"mountain": "America/Denver",
	"denver":   "America/Denver",
	"pt":       "America/Los_Angeles",
	"pst":      "America/Los_Angeles",
	"pacific":  "America/Los_Angeles",
	"ct":       "America/Chicago",
	"cst":      "America/Chicago",
	"central":  "America/Chicago",
	"et":       "America/New_York",
	"est":      "America/New_York",
	"eastern":  "America/New_York",
}

// SetTimezone validates and stores the guild's timezone, returning the
// canonical IANA name. Accepts exact IANA names, common US shorthand, and
// case-sloppy IANA spellings like "america/denver".
func (s *Service) SetTimezone(ctx context.Context, guildID int64, name string) (string, error) {
	canonical, err := resolveTimezone(name)
	if err != nil {
		return "", err
	}

	if err := s.settings.Set(ctx, guildID, settings.KeyTimezone, canonical); err != nil {
		return "", fmt.Errorf("set timezone: %w", err)
	}

	s.log.InfoContext(ctx, "guild timezone set",
		slog.Int64("guild_id", guildID),
		slog.String("timezone", canonical),
	)
	return canonical, nil
}

// Timezone returns the guild's configured location.
// Returns domain.ErrNotFound when no timezone was ever set.
func (s *Service) Timezone(ctx context.Context, guildID int64) (*time.Location, error) {
	name, err := s.settings.Get(ctx, guildID, settings.KeyTimezone)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return loc, nil
}

// resolveTimezone maps the user's input to a loadable IANA name.
func resolveTimezone(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.NewValidationError("timezone", "timezone is required")
	}

	if _, err := time.LoadLocation(trimmed); err == nil {
		return trimmed, nil
	}
	if alias, ok := tzAliases[strings.ToLower(trimmed)]; ok {
		return alias, nil
	}
	if fixed := capitalizeIANA(trimmed); fixed != trimmed {
		if _, err := time.LoadLocation(fixed); err == nil {
			return fixed, nil
		}
	}

	return "", domain.NewValidationError("timezone", fmt.Sprintf("unknown timezone %q", trimmed))
}

// capitalizeIANA fixes case-sloppy IANA input: each underscore-separated
// word of each slash-separated segment gets a leading capital, so
// "america/new_york" becomes "America/New_York".
func capitalizeIANA(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		words := strings.Split(seg, "_")
		for j, w := range words {
			if w == "" {
				continue
			}
			words[j] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		segments[i] = strings.Join(words, "_")
	}
	return strings.Join(segments, "/")
}
