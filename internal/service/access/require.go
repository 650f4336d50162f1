package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mheller/gamekeeper/internal/domain"
)

// Require evaluates the approval gate for a protected-action attempt.
//
// Owners bypass the gate entirely and are never persisted as pending or
// revoked. An active approval whose last activity is older than the
// configured inactivity span is auto-revoked (revoker "system") and the
// attempt re-evaluates as unapproved, forcing a fresh handshake.
//
// The evaluation runs inside one transaction; check-then-insert on the
// pending table cannot interleave with another process.
func (s *Service) Require(ctx context.Context, guildID int64, actorID string, channelID, messageID int64) (Decision, error) {
	if s.cfg.IsOwner(actorID) {
		return Decision{Outcome: OutcomeAllowed}, nil
	}

	mu := s.guildLock(guildID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()

	var dec Decision
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		d, evalErr := s.evaluateGate(ctx, guildID, actorID, channelID, messageID, now)
		if evalErr != nil {
			return evalErr
		}
		dec = d
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	if dec.Outcome == OutcomePendingCreated {
		// Cooldown marks only after the commit; a rolled-back attempt
		// must not eat the actor's next admin ping.
		dec.NotifyAdmins = s.shouldNotify(guildID, actorID, now)
		s.log.InfoContext(ctx, "approval requested",
			slog.Int64("guild_id", guildID),
			slog.String("actor_id", actorID),
			slog.Int64("channel_id", channelID),
		)
	}
	return dec, nil
}

func (s *Service) evaluateGate(ctx context.Context, guildID int64, actorID string, channelID, messageID int64, now time.Time) (Decision, error) {
	approval, err := s.approvals.Get(ctx, guildID, actorID)
	switch {
	case err == nil && approval.Active():
		idle := now.Sub(approval.LastActivity())
		maxIdle := time.Duration(s.cfg.InactivityDays) * 24 * time.Hour
		if idle < maxIdle {
			if touchErr := s.approvals.TouchUse(ctx, guildID, actorID, now); touchErr != nil {
				return Decision{}, fmt.Errorf("touch use: %w", touchErr)
			}
			return Decision{Outcome: OutcomeAllowed}, nil
		}

		// Stale approval: revoke and fall through to the pending path.
		if _, revErr := s.approvals.Revoke(ctx, guildID, actorID, domain.SystemActor, now); revErr != nil {
			return Decision{}, fmt.Errorf("auto-revoke: %w", revErr)
		}
		s.log.InfoContext(ctx, "approval auto-revoked for inactivity",
			slog.Int64("guild_id", guildID),
			slog.String("actor_id", actorID),
			slog.Duration("idle", idle),
		)

	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return Decision{}, fmt.Errorf("get approval: %w", err)
	}

	if _, err := s.approvals.GetPending(ctx, guildID, actorID); err == nil {
		return Decision{Outcome: OutcomeAlreadyPending}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return Decision{}, fmt.Errorf("get pending: %w", err)
	}

	req := domain.ApprovalRequest{
		GuildID:         guildID,
		ActorID:         actorID,
		RequestedAt:     now,
		ExpiresAt:       now.Add(s.cfg.ApprovalTimeout),
		OriginChannelID: channelID,
		OriginMessageID: messageID,
	}
	if err := s.approvals.CreatePending(ctx, req); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return Decision{Outcome: OutcomeAlreadyPending}, nil
		}
		return Decision{}, fmt.Errorf("create pending: %w", err)
	}

	return Decision{Outcome: OutcomePendingCreated}, nil
}
