// Package wishlist implements the per-channel sale-watch list using
// PostgreSQL. (guild, channel, app) is the primary key; adding twice is how
// the toggle surfaces.
package wishlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	postgres "github.com/mheller/gamekeeper/internal/adapter/postgres"
	"github.com/mheller/gamekeeper/internal/domain"
)

// Repo provides wishlist persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new wishlist repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const addSQL = `
INSERT INTO channel_wishlist (guild_id, channel_id, app_id, name, added_by, added_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const removeSQL = `
DELETE FROM channel_wishlist
WHERE guild_id = $1 AND channel_id = $2 AND app_id = $3`

const listForChannelSQL = `
SELECT guild_id, channel_id, app_id, name, added_by, added_at
FROM channel_wishlist
WHERE guild_id = $1 AND channel_id = $2
ORDER BY name`

const listChannelsSQL = `
SELECT DISTINCT channel_id
FROM channel_wishlist
WHERE guild_id = $1
ORDER BY channel_id`

// Add inserts a wishlist entry. Returns domain.ErrAlreadyExists when the
// item is already watched in the channel.
func (r *Repo) Add(ctx context.Context, e domain.WishlistEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, addSQL, e.GuildID, e.ChannelID, e.AppID, e.Name, e.AddedBy, e.AddedAt)
	if err != nil {
		return mapError(err, e.GuildID, e.AppID)
	}

	return nil
}

// Remove deletes a wishlist entry. Returns false (no error) when the item
// was not watched.
func (r *Repo) Remove(ctx context.Context, guildID, channelID, appID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, removeSQL, guildID, channelID, appID)
	if err != nil {
		return false, mapError(err, guildID, appID)
	}

	return tag.RowsAffected() > 0, nil
}

// ListForChannel returns the channel's wishlist entries ordered by name.
// Returns an empty slice (not nil) when the channel watches nothing.
func (r *Repo) ListForChannel(ctx context.Context, guildID, channelID int64) ([]domain.WishlistEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listForChannelSQL, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListChannels returns the distinct channels in the guild that watch at
// least one item, for digest fan-out.
func (r *Repo) ListChannels(ctx context.Context, guildID int64) ([]int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listChannelsSQL, guildID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist channels: %w", err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan channel id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wishlist channels: %w", err)
	}

	return out, nil
}

func scanEntries(rows pgx.Rows) ([]domain.WishlistEntry, error) {
	out := []domain.WishlistEntry{}
	for rows.Next() {
		var e domain.WishlistEntry
		if err := rows.Scan(&e.GuildID, &e.ChannelID, &e.AppID, &e.Name, &e.AddedBy, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}

	return out, nil
}

func mapError(err error, guildID, appID int64) error {
	return postgres.MapError(err, "wishlist", fmt.Sprintf("guild %d app %d", guildID, appID))
}
