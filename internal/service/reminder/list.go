package reminder

import (
	"context"
	"fmt"

	"github.com/mheller/gamekeeper/internal/domain"
)

// List returns the channel's pending reminders, soonest release first.
// Unknown release dates carry the far-future sentinel and so sort last.
func (s *Service) List(ctx context.Context, guildID, channelID int64) ([]domain.Reminder, error) {
	reminders, err := s.reminders.ListPendingForChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return reminders, nil
}
