// Package access implements the approval gate: a per-guild state machine
// that gates protected actions behind a time-boxed, admin-confirmed
// approval handshake, with lazy auto-revocation on inactivity.
package access

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
)

// ErrApprovalTimeout is returned by AwaitApproval when no admin confirms
// within the configured timeout.
var ErrApprovalTimeout = errors.New("approval timed out")

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

// txRunner executes a function inside one database transaction. The gate's
// check-then-insert runs through it so the critical section holds across
// processes, not just within this one.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type approvalRepo interface {
	Get(ctx context.Context, guildID int64, actorID string) (*domain.Approval, error)
	Approve(ctx context.Context, guildID int64, actorID, approvedBy string, note *string, at time.Time) error
	Revoke(ctx context.Context, guildID int64, actorID, revokedBy string, at time.Time) (bool, error)
	TouchUse(ctx context.Context, guildID int64, actorID string, at time.Time) error
	ListActive(ctx context.Context, guildID int64) ([]domain.Approval, error)

	CreatePending(ctx context.Context, req domain.ApprovalRequest) error
	GetPending(ctx context.Context, guildID int64, actorID string) (*domain.ApprovalRequest, error)
	DeletePending(ctx context.Context, guildID int64, actorID string) error
	ListExpired(ctx context.Context, now time.Time) ([]domain.ApprovalRequest, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// waiter is one in-flight AwaitApproval call, registered so Confirm can
// resolve it from the admin's message.
type waiter struct {
	actorID     string
	channelID   int64
	requestedAt time.Time
	ch          chan string // receives the confirming admin's id
}

// Service implements the approval gate business logic.
type Service struct {
	log       *slog.Logger
	approvals approvalRepo
	tx        txRunner
	cfg       config.BotConfig
	now       func() time.Time

	// mu guards the per-guild locks, the waiter registry, and the
	// notification cooldown map.
	mu           sync.Mutex
	guildLocks   map[int64]*sync.Mutex
	waiters      map[int64][]*waiter
	lastNotified map[notifyKey]time.Time
}

type notifyKey struct {
	guildID int64
	actorID string
}

// NewService creates a new access service.
func NewService(logger *slog.Logger, approvals approvalRepo, tx txRunner, cfg config.BotConfig) *Service {
	return &Service{
		log:          logger.With("service", "access"),
		approvals:    approvals,
		tx:           tx,
		cfg:          cfg,
		now:          time.Now,
		guildLocks:   make(map[int64]*sync.Mutex),
		waiters:      make(map[int64][]*waiter),
		lastNotified: make(map[notifyKey]time.Time),
	}
}

// SetClock overrides the time source (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// guildLock returns the mutex serializing gate evaluations for one guild.
// Check-then-insert on the pending table is a critical section.
func (s *Service) guildLock(guildID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.guildLocks[guildID]
	if !ok {
		mu = &sync.Mutex{}
		s.guildLocks[guildID] = mu
	}
	return mu
}

// registerWaiter adds an in-flight wait so Confirm can find it.
func (s *Service) registerWaiter(guildID int64, w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiters[guildID] = append(s.waiters[guildID], w)
}

// removeWaiter drops a waiter from the registry; idempotent.
func (s *Service) removeWaiter(guildID int64, w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.waiters[guildID]
	for i, cand := range ws {
		if cand == w {
			s.waiters[guildID] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

// oldestWaiterInChannel returns the earliest-requested waiter bound to the
// channel, or nil. Confirmation is scoped to the originating channel.
func (s *Service) oldestWaiterInChannel(guildID, channelID int64) *waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *waiter
	for _, w := range s.waiters[guildID] {
		if w.channelID != channelID {
			continue
		}
		if oldest == nil || w.requestedAt.Before(oldest.requestedAt) {
			oldest = w
		}
	}
	return oldest
}

// shouldNotify applies the per-(guild, actor) notification cooldown so a
// repeatedly denied actor does not re-spam admins. Updates the mark when it
// answers true.
func (s *Service) shouldNotify(guildID int64, actorID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := notifyKey{guildID: guildID, actorID: actorID}
	if last, ok := s.lastNotified[key]; ok && now.Sub(last) < s.cfg.RequestCooldown {
		return false
	}
	s.lastNotified[key] = now
	return true
}
