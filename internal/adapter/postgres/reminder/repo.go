// Package reminder implements the release-reminder ledger using PostgreSQL.
// A partial unique index keeps at most one pending row per (guild, app,
// channel); sent rows are terminal and reclaimed by purge.
package reminder

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/mheller/gamekeeper/internal/adapter/postgres"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Repo provides reminder persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new reminder repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const reminderColumns = `
    id, guild_id, app_id, name, release_at, precision, release_text,
    last_checked_at, channel_id, created_by, created_at, sent_at`

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const existsPendingSQL = `
SELECT EXISTS (
    SELECT 1 FROM reminders
    WHERE guild_id = $1 AND app_id = $2 AND channel_id = $3 AND sent_at IS NULL
)`

const addSQL = `
INSERT INTO reminders (
    id, guild_id, app_id, name, release_at, precision, release_text,
    last_checked_at, channel_id, created_by, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const removePendingSQL = `
DELETE FROM reminders
WHERE guild_id = $1 AND app_id = $2 AND channel_id = $3 AND sent_at IS NULL`

const listPendingForChannelSQL = `
SELECT` + reminderColumns + `
FROM reminders
WHERE guild_id = $1 AND channel_id = $2 AND sent_at IS NULL
ORDER BY release_at, name`

const listDueSQL = `
SELECT` + reminderColumns + `
FROM reminders
WHERE guild_id = $1 AND sent_at IS NULL AND release_at >= $2 AND release_at <= $3
ORDER BY release_at, name`

const markSentSQL = `
UPDATE reminders
SET sent_at = $2
WHERE id = $1 AND sent_at IS NULL`

const refreshCandidatesSQL = `
SELECT` + reminderColumns + `
FROM reminders
WHERE guild_id = $1 AND sent_at IS NULL
ORDER BY release_at, name`

const updateFieldsSQL = `
UPDATE reminders
SET release_at = $3, precision = $4, release_text = $5, last_checked_at = $6
WHERE guild_id = $1 AND app_id = $2 AND sent_at IS NULL`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// ExistsPending reports whether a live reminder exists for the item in the
// channel.
func (r *Repo) ExistsPending(ctx context.Context, guildID, appID, channelID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, existsPendingSQL, guildID, appID, channelID).Scan(&exists); err != nil {
		return false, mapError(err, guildID, appID)
	}

	return exists, nil
}

// Add inserts a reminder row. The partial unique index enforces the
// at-most-one-pending invariant; a duplicate maps to domain.ErrAlreadyExists.
func (r *Repo) Add(ctx context.Context, rem domain.Reminder) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, addSQL,
		rem.ID, rem.GuildID, rem.AppID, rem.Name, rem.ReleaseAt, rem.Precision,
		rem.ReleaseText, rem.LastCheckedAt, rem.ChannelID, rem.CreatedBy, rem.CreatedAt,
	)
	if err != nil {
		return mapError(err, rem.GuildID, rem.AppID)
	}

	return nil
}

// RemovePending deletes the live reminder for the item in the channel.
// Returns false (no error) when none exists.
func (r *Repo) RemovePending(ctx context.Context, guildID, appID, channelID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, removePendingSQL, guildID, appID, channelID)
	if err != nil {
		return false, mapError(err, guildID, appID)
	}

	return tag.RowsAffected() > 0, nil
}

// ListPendingForChannel returns the channel's live reminders, soonest release
// first. Unknown dates carry the far-future sentinel and sort last.
func (r *Repo) ListPendingForChannel(ctx context.Context, guildID, channelID int64) ([]domain.Reminder, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listPendingForChannelSQL, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// ListDue returns pending reminders whose release instant falls in the
// closed interval [from, to], soonest first, each carrying its destination
// channel.
func (r *Repo) ListDue(ctx context.Context, guildID int64, from, to time.Time) ([]domain.Reminder, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listDueSQL, guildID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// MarkSent records the terminal sent transition. Idempotent: a second call
// for the same id affects no rows and returns no error.
func (r *Repo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, markSentSQL, id, at); err != nil {
		return postgres.MapError(err, "reminder", id.String())
	}

	return nil
}

// RefreshCandidates returns all pending reminders for the guild so the daily
// refresh job can re-parse their release text.
func (r *Repo) RefreshCandidates(ctx context.Context, guildID int64) ([]domain.Reminder, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, refreshCandidatesSQL, guildID)
	if err != nil {
		return nil, fmt.Errorf("list refresh candidates: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// UpdateFields rewrites the release fields on every pending row for the item
// (at most one per channel given the invariant, but defined over the set)
// and bumps last_checked_at. Returns the number of rows updated.
func (r *Repo) UpdateFields(ctx context.Context, guildID, appID int64, releaseAt time.Time, precision domain.ReleasePrecision, releaseText string, checkedAt time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateFieldsSQL, guildID, appID, releaseAt, precision, releaseText, checkedAt)
	if err != nil {
		return 0, mapError(err, guildID, appID)
	}

	return tag.RowsAffected(), nil
}

// PurgeExpired deletes the guild's sent rows plus day-precision pending rows
// whose anchor is older than before. Returns the count removed.
func (r *Repo) PurgeExpired(ctx context.Context, guildID int64, before time.Time) (int64, error) {
	return r.purge(ctx, sq.Eq{"guild_id": guildID}, before)
}

// PurgeExpiredAll is PurgeExpired across every guild, for the one-shot
// cleanup tool.
func (r *Repo) PurgeExpiredAll(ctx context.Context, before time.Time) (int64, error) {
	return r.purge(ctx, nil, before)
}

func (r *Repo) purge(ctx context.Context, scope sq.Sqlizer, before time.Time) (int64, error) {
	del := psql.Delete("reminders").
		Where(sq.Or{
			sq.NotEq{"sent_at": nil},
			sq.And{
				sq.Eq{"sent_at": nil},
				sq.Eq{"precision": domain.PrecisionDay},
				sq.Lt{"release_at": before},
			},
		})
	if scope != nil {
		del = del.Where(scope)
	}

	sqlStr, args, err := del.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("purge reminders: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanReminders(rows pgx.Rows) ([]domain.Reminder, error) {
	out := []domain.Reminder{}
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(
			&rem.ID, &rem.GuildID, &rem.AppID, &rem.Name, &rem.ReleaseAt,
			&rem.Precision, &rem.ReleaseText, &rem.LastCheckedAt,
			&rem.ChannelID, &rem.CreatedBy, &rem.CreatedAt, &rem.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}

	return out, nil
}

func mapError(err error, guildID, appID int64) error {
	return postgres.MapError(err, "reminder", fmt.Sprintf("guild %d app %d", guildID, appID))
}
