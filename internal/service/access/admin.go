package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/domain"
)

// Approve is the explicit admin approval: it upserts an active approval,
// resurrecting a revoked record if present. If the actor is mid-handshake
// the live wait resolves too, so the blocked action completes.
func (s *Service) Approve(ctx context.Context, guildID int64, actorID, approvedBy string, note *string) error {
	if err := s.approvals.Approve(ctx, guildID, actorID, approvedBy, note, s.now()); err != nil {
		return fmt.Errorf("approve: %w", err)
	}

	s.resolveWaiterForActor(guildID, actorID, approvedBy)

	s.log.InfoContext(ctx, "actor approved",
		slog.Int64("guild_id", guildID),
		slog.String("actor_id", actorID),
		slog.String("approved_by", approvedBy),
	)
	return nil
}

// Revoke is the explicit admin revocation. Returns false when the actor was
// not active-approved; that is not an error.
func (s *Service) Revoke(ctx context.Context, guildID int64, actorID, revokedBy string) (bool, error) {
	revoked, err := s.approvals.Revoke(ctx, guildID, actorID, revokedBy, s.now())
	if err != nil {
		return false, fmt.Errorf("revoke: %w", err)
	}

	if revoked {
		s.log.InfoContext(ctx, "actor revoked",
			slog.Int64("guild_id", guildID),
			slog.String("actor_id", actorID),
			slog.String("revoked_by", revokedBy),
		)
	}
	return revoked, nil
}

// ListActive returns the guild's active approvals, oldest-approved first.
func (s *Service) ListActive(ctx context.Context, guildID int64) ([]domain.Approval, error) {
	return s.approvals.ListActive(ctx, guildID)
}

// TouchUse records a successful protected-action use. Silent no-op for
// unapproved actors and owners.
func (s *Service) TouchUse(ctx context.Context, guildID int64, actorID string) error {
	if s.cfg.IsOwner(actorID) {
		return nil
	}
	return s.approvals.TouchUse(ctx, guildID, actorID, s.now())
}

// resolveWaiterForActor delivers an explicit approval to the actor's live
// wait, if any.
func (s *Service) resolveWaiterForActor(guildID int64, actorID, approvedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.waiters[guildID] {
		if w.actorID != actorID {
			continue
		}
		ws := s.waiters[guildID]
		s.waiters[guildID] = append(ws[:i], ws[i+1:]...)
		w.ch <- approvedBy
		return
	}
}
