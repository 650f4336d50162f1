package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mheller/gamekeeper/internal/domain"
)

// DueWindow is the closed UTC interval the remind job scans: tomorrow as a
// full calendar day in the guild's local timezone. Anchors are UTC
// midnights, so converting the local day bounds to UTC catches exactly the
// releases a local reader would call "tomorrow".
func DueWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	local := now.In(loc)
	from = time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc).UTC()
	to = time.Date(local.Year(), local.Month(), local.Day()+2, 0, 0, 0, 0, loc).Add(-time.Nanosecond).UTC()
	return from, to
}

// ListDue returns the guild's pending reminders whose release anchor falls
// inside the closed [from, to] interval, soonest first.
func (s *Service) ListDue(ctx context.Context, guildID int64, from, to time.Time) ([]domain.Reminder, error) {
	due, err := s.reminders.ListDue(ctx, guildID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	return due, nil
}

// MarkSent records the terminal delivered transition. Idempotent; marking
// an already-sent reminder is a no-op.
func (s *Service) MarkSent(ctx context.Context, id uuid.UUID) error {
	if err := s.reminders.MarkSent(ctx, id, s.now()); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
