// Package settings implements the per-guild key/value store using
// PostgreSQL. It carries the guild timezone, the allowed channel, and the
// three daily-job last-run markers.
package settings

import (
	"context"
	"fmt"

	postgres "github.com/mheller/gamekeeper/internal/adapter/postgres"
)

// Well-known setting keys.
const (
	KeyTimezone       = "timezone"
	KeyAllowedChannel = "allowed_channel"

	KeyLastRunRefresh   = "last_run_refresh_ymd"
	KeyLastRunReminders = "last_run_reminders_ymd"
	KeyLastRunWishlist  = "last_run_wishlist_ymd"
)

// Repo provides guild settings persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new settings repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const getSQL = `
SELECT value FROM guild_settings
WHERE guild_id = $1 AND key = $2`

const setSQL = `
INSERT INTO guild_settings (guild_id, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id, key) DO UPDATE SET value = EXCLUDED.value`

const listGuildsWithKeySQL = `
SELECT guild_id FROM guild_settings
WHERE key = $1
ORDER BY guild_id`

// Get returns the value for a guild setting.
// Returns domain.ErrNotFound when the key was never set.
func (r *Repo) Get(ctx context.Context, guildID int64, key string) (string, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var value string
	if err := q.QueryRow(ctx, getSQL, guildID, key).Scan(&value); err != nil {
		return "", mapError(err, guildID, key)
	}

	return value, nil
}

// Set upserts a guild setting.
func (r *Repo) Set(ctx context.Context, guildID int64, key, value string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, setSQL, guildID, key, value); err != nil {
		return mapError(err, guildID, key)
	}

	return nil
}

// ListGuildsWithKey returns every guild that has the key set. The scheduler
// uses it with KeyTimezone: guilds without a timezone get no scheduled
// behavior.
func (r *Repo) ListGuildsWithKey(ctx context.Context, key string) ([]int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listGuildsWithKeySQL, key)
	if err != nil {
		return nil, fmt.Errorf("list guilds with %s: %w", key, err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan guild id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list guilds with %s: %w", key, err)
	}

	return out, nil
}

func mapError(err error, guildID int64, key string) error {
	return postgres.MapError(err, "setting", fmt.Sprintf("guild %d key %s", guildID, key))
}
