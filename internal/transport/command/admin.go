package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mheller/gamekeeper/internal/domain"
)

func (d *Dispatcher) handleApprove(ctx context.Context, msg Message, args string, isOwner bool) (Response, error) {
	if !isOwner {
		return PlainText{Text: "Only an admin can approve users."}, nil
	}

	actorID, note := splitActorArg(args)
	if actorID == "" {
		return PlainText{Text: "Usage: *approve <user id> [note]"}, nil
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	if err := d.gate.Approve(ctx, msg.GuildID, actorID, msg.AuthorID, notePtr); err != nil {
		return PlainText{Text: "Could not approve the user, try again later."}, err
	}
	return AdminAction{Kind: ActionApproved, ActorID: actorID}, nil
}

func (d *Dispatcher) handleRevoke(ctx context.Context, msg Message, args string, isOwner bool) (Response, error) {
	if !isOwner {
		return PlainText{Text: "Only an admin can revoke users."}, nil
	}

	actorID, _ := splitActorArg(args)
	if actorID == "" {
		return PlainText{Text: "Usage: *revoke <user id>"}, nil
	}

	revoked, err := d.gate.Revoke(ctx, msg.GuildID, actorID, msg.AuthorID)
	if err != nil {
		return PlainText{Text: "Could not revoke the user, try again later."}, err
	}
	if !revoked {
		return PlainText{Text: "That user has no active approval."}, nil
	}
	return AdminAction{Kind: ActionRevoked, ActorID: actorID}, nil
}

func (d *Dispatcher) handleListAccess(ctx context.Context, msg Message, isOwner bool) (Response, error) {
	if !isOwner {
		return PlainText{Text: "Only an admin can list approvals."}, nil
	}

	active, err := d.gate.ListActive(ctx, msg.GuildID)
	if err != nil {
		return PlainText{Text: "Could not list approvals, try again later."}, err
	}
	if len(active) == 0 {
		return PlainText{Text: "No users are currently approved."}, nil
	}

	items := make([]ListItem, 0, len(active))
	for _, a := range active {
		detail := "approved " + a.ApprovedAt.Format("Jan 2, 2006")
		if a.LastUsedAt != nil {
			detail += ", last used " + a.LastUsedAt.Format("Jan 2, 2006")
		}
		if a.Note != nil && *a.Note != "" {
			detail += " (" + *a.Note + ")"
		}
		items = append(items, ListItem{Title: a.ActorID, Detail: detail})
	}
	return StructuredList{Kind: ListApprovals, Items: items}, nil
}

func (d *Dispatcher) handleSetChannel(ctx context.Context, msg Message, isOwner bool) (Response, error) {
	if !isOwner {
		return PlainText{Text: "Only an admin can set the bot channel."}, nil
	}

	if err := d.settings.SetChannel(ctx, msg.GuildID, msg.ChannelID); err != nil {
		return PlainText{Text: "Could not set the channel, try again later."}, err
	}
	return AdminAction{Kind: ActionChannelSet, Value: fmt.Sprintf("%d", msg.ChannelID)}, nil
}

func (d *Dispatcher) handleSetTimezone(ctx context.Context, msg Message, args string, isOwner bool) (Response, error) {
	if !isOwner {
		return PlainText{Text: "Only an admin can set the timezone."}, nil
	}
	if args == "" {
		return PlainText{Text: "Usage: *settimezone <IANA name, e.g. America/Denver>"}, nil
	}

	canonical, err := d.settings.SetTimezone(ctx, msg.GuildID, args)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return PlainText{Text: fmt.Sprintf("Unknown timezone %q. Use an IANA name like America/Denver.", args)}, nil
		}
		return PlainText{Text: "Could not set the timezone, try again later."}, err
	}
	return AdminAction{Kind: ActionTimezoneSet, Value: canonical}, nil
}

func (d *Dispatcher) handleHelp(ctx context.Context, msg Message, isOwner bool) (Response, error) {
	items := []ListItem{
		{Title: "*searchgame <title>", Detail: "search the storefront"},
		{Title: "*addreminder <app id>", Detail: "get pinged the day before release"},
		{Title: "*delreminder <app id>", Detail: "drop a release reminder"},
		{Title: "*reminders", Detail: "list this channel's reminders"},
		{Title: "*wishlist [app id]", Detail: "toggle or list sale watches"},
		{Title: "*searchmovie <title>", Detail: "search the movie manager"},
		{Title: "*searchshow <title>", Detail: "search the show manager"},
		{Title: "*plexmovie <title>", Detail: "queue a movie (approval required)"},
		{Title: "*plexshow <title>", Detail: "queue a show (approval required)"},
	}

	footer := ""
	if isOwner {
		items = append(items,
			ListItem{Title: "*approve <user id> [note]", Detail: "approve a user for library adds"},
			ListItem{Title: "*revoke <user id>", Detail: "revoke a user's access"},
			ListItem{Title: "*plexaccess", Detail: "list approved users"},
			ListItem{Title: "*setchannel", Detail: "bind the bot to this channel"},
			ListItem{Title: "*settimezone <name>", Detail: "set the guild timezone"},
		)
		footer = d.settingsFooter(ctx, msg.GuildID)
	}

	return StructuredList{Kind: ListHelp, Items: items, Footer: footer}, nil
}

// settingsFooter summarizes the guild's configuration for admins.
func (d *Dispatcher) settingsFooter(ctx context.Context, guildID int64) string {
	var parts []string

	if loc, err := d.settings.Timezone(ctx, guildID); err == nil {
		parts = append(parts, "timezone: "+loc.String())
	} else {
		parts = append(parts, "timezone: not set (scheduled jobs are off)")
	}
	if ch, err := d.settings.AllowedChannel(ctx, guildID); err == nil {
		parts = append(parts, fmt.Sprintf("channel: <#%d>", ch))
	} else {
		parts = append(parts, "channel: not set (listening everywhere)")
	}

	return strings.Join(parts, " | ")
}

// splitActorArg separates a user id from an optional trailing note,
// unwrapping a chat mention like <@123456>.
func splitActorArg(args string) (actorID, note string) {
	actorID, note, _ = strings.Cut(args, " ")
	actorID = strings.TrimSuffix(strings.TrimPrefix(actorID, "<@"), ">")
	actorID = strings.TrimPrefix(actorID, "!")
	return actorID, strings.TrimSpace(note)
}
