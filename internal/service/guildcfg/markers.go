package guildcfg

import (
	"context"
	"errors"
	"fmt"

	"github.com/mheller/gamekeeper/internal/adapter/postgres/settings"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Marker keys for the three daily jobs, re-exported so callers need not
// reach into the storage package.
const (
	MarkerRefresh   = settings.KeyLastRunRefresh
	MarkerReminders = settings.KeyLastRunReminders
	MarkerWishlist  = settings.KeyLastRunWishlist
)

// LastRun returns the local calendar-date string persisted for a job
// marker, or "" when the job never ran. The marker is the scheduler's sole
// idempotency gate.
func (s *Service) LastRun(ctx context.Context, guildID int64, marker string) (string, error) {
	ymd, err := s.settings.Get(ctx, guildID, marker)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get marker %s: %w", marker, err)
	}
	return ymd, nil
}

// MarkRun persists today's local calendar-date string for a job marker,
// consuming the trigger window for the rest of the day.
func (s *Service) MarkRun(ctx context.Context, guildID int64, marker, ymd string) error {
	if err := s.settings.Set(ctx, guildID, marker, ymd); err != nil {
		return fmt.Errorf("set marker %s: %w", marker, err)
	}
	return nil
}
