// Package approval implements the access ledger using PostgreSQL: approval
// records (append-only audit rows, one per guild and actor) and live pending
// approval requests.
package approval

import (
	"context"
	"fmt"
	"time"

	postgres "github.com/mheller/gamekeeper/internal/adapter/postgres"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Repo provides approval persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new approval repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const getSQL = `
SELECT
    guild_id, actor_id, approved_at, approved_by,
    revoked_at, revoked_by, note, last_used_at
FROM approved_users
WHERE guild_id = $1 AND actor_id = $2`

const approveSQL = `
INSERT INTO approved_users (
    guild_id, actor_id, approved_at, approved_by, note
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (guild_id, actor_id) DO UPDATE SET
    approved_at = EXCLUDED.approved_at,
    approved_by = EXCLUDED.approved_by,
    note        = EXCLUDED.note,
    revoked_at  = NULL,
    revoked_by  = NULL`

const revokeSQL = `
UPDATE approved_users
SET revoked_at = $3, revoked_by = $4
WHERE guild_id = $1 AND actor_id = $2 AND revoked_at IS NULL`

const touchUseSQL = `
UPDATE approved_users
SET last_used_at = $3
WHERE guild_id = $1 AND actor_id = $2 AND revoked_at IS NULL`

const listActiveSQL = `
SELECT
    guild_id, actor_id, approved_at, approved_by,
    revoked_at, revoked_by, note, last_used_at
FROM approved_users
WHERE guild_id = $1 AND revoked_at IS NULL
ORDER BY approved_at`

const createPendingSQL = `
INSERT INTO approval_requests (
    guild_id, actor_id, requested_at, expires_at,
    origin_channel_id, origin_message_id
) VALUES ($1, $2, $3, $4, $5, $6)`

const getPendingSQL = `
SELECT
    guild_id, actor_id, requested_at, expires_at,
    origin_channel_id, origin_message_id
FROM approval_requests
WHERE guild_id = $1 AND actor_id = $2`

const deletePendingSQL = `
DELETE FROM approval_requests
WHERE guild_id = $1 AND actor_id = $2`

const listExpiredSQL = `
SELECT
    guild_id, actor_id, requested_at, expires_at,
    origin_channel_id, origin_message_id
FROM approval_requests
WHERE expires_at <= $1
ORDER BY expires_at`

// ---------------------------------------------------------------------------
// Approval records
// ---------------------------------------------------------------------------

// Get returns the approval record for an actor, revoked or not.
// Returns domain.ErrNotFound when the actor was never approved.
func (r *Repo) Get(ctx context.Context, guildID int64, actorID string) (*domain.Approval, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var a domain.Approval
	err := q.QueryRow(ctx, getSQL, guildID, actorID).Scan(
		&a.GuildID, &a.ActorID, &a.ApprovedAt, &a.ApprovedBy,
		&a.RevokedAt, &a.RevokedBy, &a.Note, &a.LastUsedAt,
	)
	if err != nil {
		return nil, mapError(err, guildID, actorID)
	}

	return &a, nil
}

// Approve upserts an approval: it creates a fresh record or resurrects a
// revoked one, clearing the revocation fields and refreshing approved_at/by.
// Idempotent on an already-active record.
func (r *Repo) Approve(ctx context.Context, guildID int64, actorID, approvedBy string, note *string, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, approveSQL, guildID, actorID, at, approvedBy, note); err != nil {
		return mapError(err, guildID, actorID)
	}

	return nil
}

// Revoke sets the revocation fields, only if the record is currently active.
// Returns false (no error) when the actor is not active-approved.
func (r *Repo) Revoke(ctx context.Context, guildID int64, actorID, revokedBy string, at time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, revokeSQL, guildID, actorID, at, revokedBy)
	if err != nil {
		return false, mapError(err, guildID, actorID)
	}

	return tag.RowsAffected() > 0, nil
}

// TouchUse bumps last_used_at on an active record. Silent no-op when the
// actor is not approved; called speculatively after every protected action.
func (r *Repo) TouchUse(ctx context.Context, guildID int64, actorID string, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, touchUseSQL, guildID, actorID, at); err != nil {
		return mapError(err, guildID, actorID)
	}

	return nil
}

// ListActive returns all active approvals for a guild, oldest-approved first.
// Returns an empty slice (not nil) when nobody is approved.
func (r *Repo) ListActive(ctx context.Context, guildID int64) ([]domain.Approval, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listActiveSQL, guildID)
	if err != nil {
		return nil, fmt.Errorf("list active approvals: %w", err)
	}
	defer rows.Close()

	out := []domain.Approval{}
	for rows.Next() {
		var a domain.Approval
		if err := rows.Scan(
			&a.GuildID, &a.ActorID, &a.ApprovedAt, &a.ApprovedBy,
			&a.RevokedAt, &a.RevokedBy, &a.Note, &a.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active approvals: %w", err)
	}

	return out, nil
}

// ---------------------------------------------------------------------------
// Pending approval requests
// ---------------------------------------------------------------------------

// CreatePending inserts a pending request. Returns domain.ErrAlreadyExists
// when the actor already has one live.
func (r *Repo) CreatePending(ctx context.Context, req domain.ApprovalRequest) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, createPendingSQL,
		req.GuildID, req.ActorID, req.RequestedAt, req.ExpiresAt,
		req.OriginChannelID, req.OriginMessageID,
	)
	if err != nil {
		return mapError(err, req.GuildID, req.ActorID)
	}

	return nil
}

// GetPending returns the live pending request for an actor, or domain.ErrNotFound.
func (r *Repo) GetPending(ctx context.Context, guildID int64, actorID string) (*domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var req domain.ApprovalRequest
	err := q.QueryRow(ctx, getPendingSQL, guildID, actorID).Scan(
		&req.GuildID, &req.ActorID, &req.RequestedAt, &req.ExpiresAt,
		&req.OriginChannelID, &req.OriginMessageID,
	)
	if err != nil {
		return nil, mapError(err, guildID, actorID)
	}

	return &req, nil
}

// DeletePending removes a pending request. No error when none exists; the
// wait path deletes on success, timeout, and cancellation alike.
func (r *Repo) DeletePending(ctx context.Context, guildID int64, actorID string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, deletePendingSQL, guildID, actorID); err != nil {
		return mapError(err, guildID, actorID)
	}

	return nil
}

// ListExpired returns pending requests whose expiry has passed, across all
// guilds, oldest expiry first. Used by the periodic sweep.
func (r *Repo) ListExpired(ctx context.Context, now time.Time) ([]domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listExpiredSQL, now)
	if err != nil {
		return nil, fmt.Errorf("list expired requests: %w", err)
	}
	defer rows.Close()

	out := []domain.ApprovalRequest{}
	for rows.Next() {
		var req domain.ApprovalRequest
		if err := rows.Scan(
			&req.GuildID, &req.ActorID, &req.RequestedAt, &req.ExpiresAt,
			&req.OriginChannelID, &req.OriginMessageID,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired requests: %w", err)
	}

	return out, nil
}
