// Package reminder implements the release-reminder ledger logic: creating
// and listing reminders, re-sharpening fuzzy release dates against the
// catalog, and the due/sent/purge lifecycle driven by the daily scheduler.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mheller/gamekeeper/internal/adapter/provider/steam"
	"github.com/mheller/gamekeeper/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type reminderRepo interface {
	ExistsPending(ctx context.Context, guildID, appID, channelID int64) (bool, error)
	Add(ctx context.Context, rem domain.Reminder) error
	RemovePending(ctx context.Context, guildID, appID, channelID int64) (bool, error)
	ListPendingForChannel(ctx context.Context, guildID, channelID int64) ([]domain.Reminder, error)
	ListDue(ctx context.Context, guildID int64, from, to time.Time) ([]domain.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	RefreshCandidates(ctx context.Context, guildID int64) ([]domain.Reminder, error)
	UpdateFields(ctx context.Context, guildID, appID int64, releaseAt time.Time, precision domain.ReleasePrecision, releaseText string, checkedAt time.Time) (int64, error)
	PurgeExpired(ctx context.Context, guildID int64, before time.Time) (int64, error)
}

type catalog interface {
	AppDetails(ctx context.Context, appID int64) (*steam.AppDetails, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the reminder ledger business logic.
type Service struct {
	log       *slog.Logger
	reminders reminderRepo
	catalog   catalog
	now       func() time.Time
}

// NewService creates a new reminder service.
func NewService(logger *slog.Logger, reminders reminderRepo, catalog catalog) *Service {
	return &Service{
		log:       logger.With("service", "reminder"),
		reminders: reminders,
		catalog:   catalog,
		now:       time.Now,
	}
}

// SetClock overrides the time source (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
