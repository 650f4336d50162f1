package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AwaitApproval blocks until an admin confirms the actor's pending request,
// the request expires, or ctx is cancelled. On confirmation it persists the
// approval, touches last-use (the original action completes as part of the
// same flow), and returns the confirming admin's id.
//
// The pending row is deleted on every exit path; no pending state leaks.
func (s *Service) AwaitApproval(ctx context.Context, guildID int64, actorID string) (string, error) {
	req, err := s.approvals.GetPending(ctx, guildID, actorID)
	if err != nil {
		return "", fmt.Errorf("get pending: %w", err)
	}

	w := &waiter{
		actorID:     actorID,
		channelID:   req.OriginChannelID,
		requestedAt: req.RequestedAt,
		ch:          make(chan string, 1),
	}
	s.registerWaiter(guildID, w)
	defer s.removeWaiter(guildID, w)

	timer := time.NewTimer(req.ExpiresAt.Sub(s.now()))
	defer timer.Stop()

	// Cleanup must run even when ctx is already cancelled.
	cleanupCtx := context.WithoutCancel(ctx)

	select {
	case adminID := <-w.ch:
		now := s.now()
		if err := s.approvals.Approve(ctx, guildID, actorID, adminID, nil, now); err != nil {
			return "", fmt.Errorf("persist approval: %w", err)
		}
		if err := s.approvals.TouchUse(ctx, guildID, actorID, now); err != nil {
			return "", fmt.Errorf("touch use: %w", err)
		}
		if err := s.approvals.DeletePending(cleanupCtx, guildID, actorID); err != nil {
			s.log.WarnContext(ctx, "delete pending after confirm",
				slog.String("actor_id", actorID), slog.String("error", err.Error()))
		}

		s.log.InfoContext(ctx, "approval confirmed",
			slog.Int64("guild_id", guildID),
			slog.String("actor_id", actorID),
			slog.String("approved_by", adminID),
		)
		return adminID, nil

	case <-timer.C:
		if err := s.approvals.DeletePending(cleanupCtx, guildID, actorID); err != nil {
			s.log.WarnContext(ctx, "delete pending after timeout",
				slog.String("actor_id", actorID), slog.String("error", err.Error()))
		}
		s.log.InfoContext(ctx, "approval timed out",
			slog.Int64("guild_id", guildID),
			slog.String("actor_id", actorID),
		)
		return "", ErrApprovalTimeout

	case <-ctx.Done():
		if err := s.approvals.DeletePending(cleanupCtx, guildID, actorID); err != nil {
			s.log.WarnContext(cleanupCtx, "delete pending after cancel",
				slog.String("actor_id", actorID), slog.String("error", err.Error()))
		}
		return "", ctx.Err()
	}
}

// Confirm resolves a pending wait from an inbound message. It answers true
// only when the sender is an owner, the content is exactly the approval
// token, and a wait is live in that channel; the oldest wait in the channel
// wins. The caller feeds every message through here; false means the
// message was not a confirmation.
func (s *Service) Confirm(guildID, channelID int64, senderID, content string) bool {
	if strings.TrimSpace(content) != s.cfg.ApprovalToken {
		return false
	}
	if !s.cfg.IsOwner(senderID) {
		return false
	}

	w := s.oldestWaiterInChannel(guildID, channelID)
	if w == nil {
		return false
	}

	s.removeWaiter(guildID, w)
	w.ch <- senderID
	return true
}
