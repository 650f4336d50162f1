// Package command is the bot's command surface: it parses prefixed chat
// messages, enforces channel gating and owner checks, and routes to the
// services. Results come back as tagged Response values; rendering and
// the platform event loop live outside.
package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/steam"
	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/access"
	"github.com/mheller/gamekeeper/internal/service/media"
	"github.com/mheller/gamekeeper/internal/service/reminder"
)

// Prefix starts every bot command.
const Prefix = "*"

// Message is one inbound chat message, platform-agnostic.
type Message struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	AuthorID  string
	Content   string
}

// Notifier delivers deferred results (e.g. a protected action completing
// after its approval wait) back to a channel.
type Notifier interface {
	Send(ctx context.Context, channelID int64, content string) error
}

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type accessGate interface {
	Require(ctx context.Context, guildID int64, actorID string, channelID, messageID int64) (access.Decision, error)
	AwaitApproval(ctx context.Context, guildID int64, actorID string) (string, error)
	Confirm(guildID, channelID int64, senderID, content string) bool
	Approve(ctx context.Context, guildID int64, actorID, approvedBy string, note *string) error
	Revoke(ctx context.Context, guildID int64, actorID, revokedBy string) (bool, error)
	ListActive(ctx context.Context, guildID int64) ([]domain.Approval, error)
}

type catalogSearch interface {
	Search(ctx context.Context, term string) ([]steam.SearchHit, error)
}

type reminderOps interface {
	Add(ctx context.Context, guildID, appID, channelID int64, createdBy string) (reminder.AddOutcome, *domain.Reminder, error)
	Remove(ctx context.Context, guildID, appID, channelID int64) (bool, error)
	List(ctx context.Context, guildID, channelID int64) ([]domain.Reminder, error)
}

type wishlistOps interface {
	Toggle(ctx context.Context, guildID, channelID, appID int64, addedBy string) (bool, string, error)
	List(ctx context.Context, guildID, channelID int64) ([]domain.WishlistEntry, error)
}

type mediaOps interface {
	SearchMovie(ctx context.Context, term string) ([]radarr.Movie, error)
	SearchShow(ctx context.Context, term string) ([]sonarr.Series, error)
	AddMovie(ctx context.Context, m radarr.Movie) (media.AddOutcome, error)
	AddShow(ctx context.Context, s sonarr.Series) (media.AddOutcome, error)
}

type guildSettings interface {
	SetTimezone(ctx context.Context, guildID int64, name string) (string, error)
	SetChannel(ctx context.Context, guildID, channelID int64) error
	AllowedChannel(ctx context.Context, guildID int64) (int64, error)
	Timezone(ctx context.Context, guildID int64) (*time.Location, error)
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher routes parsed commands to the services.
type Dispatcher struct {
	log       *slog.Logger
	cfg       config.BotConfig
	gate      accessGate
	catalog   catalogSearch
	reminders reminderOps
	wishlists wishlistOps
	media     mediaOps
	settings  guildSettings
	notifier  Notifier
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	logger *slog.Logger,
	cfg config.BotConfig,
	gate accessGate,
	catalog catalogSearch,
	reminders reminderOps,
	wishlists wishlistOps,
	media mediaOps,
	settings guildSettings,
	notifier Notifier,
) *Dispatcher {
	return &Dispatcher{
		log:       logger.With("component", "dispatcher"),
		cfg:       cfg,
		gate:      gate,
		catalog:   catalog,
		reminders: reminders,
		wishlists: wishlists,
		media:     media,
		settings:  settings,
		notifier:  notifier,
	}
}

// Dispatch handles one inbound message. Run it on its own goroutine per
// message: a protected command blocks through its approval wait.
//
// Every message is first offered to the approval gate as a possible
// confirmation token; consumed tokens produce no further parsing.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Response, error) {
	if d.gate.Confirm(msg.GuildID, msg.ChannelID, msg.AuthorID, msg.Content) {
		return PlainText{Text: "Approval confirmed."}, nil
	}

	if !strings.HasPrefix(msg.Content, Prefix) {
		return nil, nil
	}
	name, args := splitCommand(strings.TrimPrefix(msg.Content, Prefix))
	if name == "" {
		return nil, nil
	}

	isOwner := d.cfg.IsOwner(msg.AuthorID)

	// Channel gating: once a channel is set, commands elsewhere are
	// ignored. Owners are exempt so a misconfigured channel can always be
	// fixed.
	if !isOwner {
		allowed, err := d.settings.AllowedChannel(ctx, msg.GuildID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err == nil && allowed != msg.ChannelID {
			return nil, nil
		}
	}

	switch name {
	case "help":
		return d.handleHelp(ctx, msg, isOwner)
	case "searchgame":
		return d.handleSearchGame(ctx, args)
	case "addreminder":
		return d.handleAddReminder(ctx, msg, args)
	case "delreminder":
		return d.handleDelReminder(ctx, msg, args)
	case "reminders":
		return d.handleListReminders(ctx, msg)
	case "wishlist":
		return d.handleWishlist(ctx, msg, args)
	case "searchmovie":
		return d.handleSearchMovie(ctx, args)
	case "searchshow":
		return d.handleSearchShow(ctx, args)
	case "plexmovie":
		return d.handleProtectedAdd(ctx, msg, domain.MediaMovie, args)
	case "plexshow":
		return d.handleProtectedAdd(ctx, msg, domain.MediaShow, args)
	case "approve":
		return d.handleApprove(ctx, msg, args, isOwner)
	case "revoke":
		return d.handleRevoke(ctx, msg, args, isOwner)
	case "plexaccess":
		return d.handleListAccess(ctx, msg, isOwner)
	case "setchannel":
		return d.handleSetChannel(ctx, msg, isOwner)
	case "settimezone":
		return d.handleSetTimezone(ctx, msg, args, isOwner)
	default:
		return nil, nil
	}
}

// splitCommand separates the command word from its argument remainder.
func splitCommand(s string) (name, args string) {
	s = strings.TrimSpace(s)
	name, args, _ = strings.Cut(s, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}
