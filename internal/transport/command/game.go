package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/reminder"
)

const maxSearchResults = 10

func (d *Dispatcher) handleSearchGame(ctx context.Context, term string) (Response, error) {
	if term == "" {
		return PlainText{Text: "Usage: *searchgame <title>"}, nil
	}

	hits, err := d.catalog.Search(ctx, term)
	if err != nil {
		return PlainText{Text: "Storefront search failed, try again later."}, err
	}
	if len(hits) == 0 {
		return PlainText{Text: fmt.Sprintf("No results for %q.", term)}, nil
	}
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}

	items := make([]ListItem, 0, len(hits))
	for _, h := range hits {
		items = append(items, ListItem{ID: h.AppID, Title: h.Name})
	}
	return StructuredList{Kind: ListGames, Items: items}, nil
}

func (d *Dispatcher) handleAddReminder(ctx context.Context, msg Message, args string) (Response, error) {
	appID, err := parseAppID(args)
	if err != nil {
		return PlainText{Text: "Usage: *addreminder <app id> (find the id with *searchgame)"}, nil
	}

	outcome, rem, err := d.reminders.Add(ctx, msg.GuildID, appID, msg.ChannelID, msg.AuthorID)
	if err != nil {
		return PlainText{Text: "Could not add the reminder, try again later."}, err
	}

	switch outcome {
	case reminder.OutcomeAlreadyPending:
		return PlainText{Text: "A reminder for that game is already set in this channel."}, nil
	case reminder.OutcomeAlreadyReleased:
		return PlainText{Text: "That game is already out."}, nil
	default:
		return PlainText{Text: fmt.Sprintf("Reminder set for **%s** (%s).", rem.Name, releaseLabel(*rem))}, nil
	}
}

func (d *Dispatcher) handleDelReminder(ctx context.Context, msg Message, args string) (Response, error) {
	appID, err := parseAppID(args)
	if err != nil {
		return PlainText{Text: "Usage: *delreminder <app id>"}, nil
	}

	removed, err := d.reminders.Remove(ctx, msg.GuildID, appID, msg.ChannelID)
	if err != nil {
		return PlainText{Text: "Could not remove the reminder, try again later."}, err
	}
	if !removed {
		return PlainText{Text: "No reminder for that game in this channel."}, nil
	}
	return PlainText{Text: "Reminder removed."}, nil
}

func (d *Dispatcher) handleListReminders(ctx context.Context, msg Message) (Response, error) {
	reminders, err := d.reminders.List(ctx, msg.GuildID, msg.ChannelID)
	if err != nil {
		return PlainText{Text: "Could not list reminders, try again later."}, err
	}
	if len(reminders) == 0 {
		return PlainText{Text: "No reminders set in this channel."}, nil
	}

	items := make([]ListItem, 0, len(reminders))
	for _, rem := range reminders {
		items = append(items, ListItem{ID: rem.AppID, Title: rem.Name, Detail: releaseLabel(rem)})
	}
	return StructuredList{Kind: ListReminders, Items: items}, nil
}

func (d *Dispatcher) handleWishlist(ctx context.Context, msg Message, args string) (Response, error) {
	// Bare *wishlist lists; with an id it toggles.
	if args == "" {
		entries, err := d.wishlists.List(ctx, msg.GuildID, msg.ChannelID)
		if err != nil {
			return PlainText{Text: "Could not list the wishlist, try again later."}, err
		}
		if len(entries) == 0 {
			return PlainText{Text: "The wishlist for this channel is empty."}, nil
		}

		items := make([]ListItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, ListItem{ID: e.AppID, Title: e.Name})
		}
		return StructuredList{Kind: ListWishlist, Items: items}, nil
	}

	appID, err := parseAppID(args)
	if err != nil {
		return PlainText{Text: "Usage: *wishlist [app id]"}, nil
	}

	added, name, err := d.wishlists.Toggle(ctx, msg.GuildID, msg.ChannelID, appID, msg.AuthorID)
	if err != nil {
		return PlainText{Text: "Could not update the wishlist, try again later."}, err
	}
	if added {
		return PlainText{Text: fmt.Sprintf("**%s** added to this channel's wishlist.", name)}, nil
	}
	return PlainText{Text: "Removed from this channel's wishlist."}, nil
}

func parseAppID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid app id %q", s)
	}
	return id, nil
}

// releaseLabel renders a reminder's release for list rows.
func releaseLabel(rem domain.Reminder) string {
	if !rem.ReleaseKnown() {
		return "release date unknown"
	}
	if rem.ReleaseText != "" {
		return rem.ReleaseText
	}
	return rem.ReleaseAt.Format("Jan 2, 2006")
}
