package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/access"
	"github.com/mheller/gamekeeper/internal/service/media"
)

func (d *Dispatcher) handleSearchMovie(ctx context.Context, term string) (Response, error) {
	if term == "" {
		return PlainText{Text: "Usage: *searchmovie <title>"}, nil
	}

	movies, err := d.media.SearchMovie(ctx, term)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return PlainText{Text: "Movie search is not set up on this server."}, nil
		}
		return PlainText{Text: "Movie search failed, try again later."}, err
	}
	if len(movies) == 0 {
		return PlainText{Text: fmt.Sprintf("No movies found for %q.", term)}, nil
	}
	if len(movies) > maxSearchResults {
		movies = movies[:maxSearchResults]
	}

	items := make([]ListItem, 0, len(movies))
	for _, m := range movies {
		items = append(items, ListItem{ID: m.TmdbID, Title: fmt.Sprintf("%s (%d)", m.Title, m.Year)})
	}
	return StructuredList{Kind: ListMovies, Items: items}, nil
}

func (d *Dispatcher) handleSearchShow(ctx context.Context, term string) (Response, error) {
	if term == "" {
		return PlainText{Text: "Usage: *searchshow <title>"}, nil
	}

	series, err := d.media.SearchShow(ctx, term)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return PlainText{Text: "Show search is not set up on this server."}, nil
		}
		return PlainText{Text: "Show search failed, try again later."}, err
	}
	if len(series) == 0 {
		return PlainText{Text: fmt.Sprintf("No shows found for %q.", term)}, nil
	}
	if len(series) > maxSearchResults {
		series = series[:maxSearchResults]
	}

	items := make([]ListItem, 0, len(series))
	for _, s := range series {
		items = append(items, ListItem{ID: s.TvdbID, Title: fmt.Sprintf("%s (%d)", s.Title, s.Year)})
	}
	return StructuredList{Kind: ListShows, Items: items}, nil
}

// handleProtectedAdd is the approval-gated library add. An approved actor
// goes straight through; an unapproved one gets a pending request and this
// call blocks through the admin-confirmation wait, completing the add once
// confirmed. The immediate Response tells the channel what happened first.
func (d *Dispatcher) handleProtectedAdd(ctx context.Context, msg Message, kind domain.MediaKind, term string) (Response, error) {
	if term == "" {
		return PlainText{Text: fmt.Sprintf("Usage: *plex%s <title>", kindWord(kind))}, nil
	}

	decision, err := d.gate.Require(ctx, msg.GuildID, msg.AuthorID, msg.ChannelID, msg.MessageID)
	if err != nil {
		return PlainText{Text: "Something went wrong, check back later."}, err
	}

	switch decision.Outcome {
	case access.OutcomeAlreadyPending:
		return PlainText{Text: "An approval is already pending, wait for an admin."}, nil

	case access.OutcomePendingCreated:
		go d.completeAfterApproval(msg, kind, term)
		return AccessRequest{
			ActorID:      msg.AuthorID,
			NotifyAdmins: decision.NotifyAdmins,
			ExpiresIn:    d.cfg.ApprovalTimeout,
		}, nil
	}

	return d.performAdd(ctx, msg, kind, term)
}

// completeAfterApproval blocks on the admin handshake, then performs the
// originally requested add and reports through the notifier. Runs on its
// own goroutine detached from the triggering message's context.
func (d *Dispatcher) completeAfterApproval(msg Message, kind domain.MediaKind, term string) {
	ctx := context.Background()

	if _, err := d.gate.AwaitApproval(ctx, msg.GuildID, msg.AuthorID); err != nil {
		text := "Something went wrong with the approval, try again later."
		if errors.Is(err, access.ErrApprovalTimeout) {
			text = fmt.Sprintf("<@%s> no admin confirmed in time, try again later.", msg.AuthorID)
		}
		d.notify(ctx, msg.ChannelID, text)
		return
	}

	resp, err := d.performAdd(ctx, msg, kind, term)
	if err != nil {
		d.log.ErrorContext(ctx, "post-approval add failed",
			slog.Int64("guild_id", msg.GuildID),
			slog.String("actor_id", msg.AuthorID),
			slog.String("error", err.Error()))
	}
	if text, ok := resp.(PlainText); ok {
		d.notify(ctx, msg.ChannelID, text.Text)
	}
}

// performAdd looks up the best candidate for the term and queues it.
func (d *Dispatcher) performAdd(ctx context.Context, msg Message, kind domain.MediaKind, term string) (Response, error) {
	var (
		title   string
		outcome media.AddOutcome
	)

	switch kind {
	case domain.MediaMovie:
		movies, err := d.media.SearchMovie(ctx, term)
		if err != nil {
			return d.addFailureText(kind, err)
		}
		if len(movies) == 0 {
			return PlainText{Text: fmt.Sprintf("No movies found for %q.", term)}, nil
		}
		title = movies[0].Title
		outcome, err = d.media.AddMovie(ctx, movies[0])
		if err != nil {
			return d.addFailureText(kind, err)
		}

	case domain.MediaShow:
		series, err := d.media.SearchShow(ctx, term)
		if err != nil {
			return d.addFailureText(kind, err)
		}
		if len(series) == 0 {
			return PlainText{Text: fmt.Sprintf("No shows found for %q.", term)}, nil
		}
		title = series[0].Title
		outcome, err = d.media.AddShow(ctx, series[0])
		if err != nil {
			return d.addFailureText(kind, err)
		}
	}

	switch outcome {
	case media.OutcomeAlreadyInLibrary:
		return PlainText{Text: fmt.Sprintf("**%s** is already in the library.", title)}, nil
	case media.OutcomeAlreadyQueued:
		return PlainText{Text: fmt.Sprintf("**%s** is already queued for download.", title)}, nil
	default:
		return PlainText{Text: fmt.Sprintf("**%s** queued for download.", title)}, nil
	}
}

func (d *Dispatcher) addFailureText(kind domain.MediaKind, err error) (Response, error) {
	if errors.Is(err, domain.ErrNotConfigured) {
		return PlainText{Text: fmt.Sprintf("%s adds are not set up on this server.", kindTitle(kind))}, nil
	}
	return PlainText{Text: fmt.Sprintf("Could not queue the %s, try again later.", kindWord(kind))}, err
}

func (d *Dispatcher) notify(ctx context.Context, channelID int64, text string) {
	if err := d.notifier.Send(ctx, channelID, text); err != nil {
		d.log.WarnContext(ctx, "notify failed",
			slog.Int64("channel_id", channelID), slog.String("error", err.Error()))
	}
}

func kindWord(kind domain.MediaKind) string {
	if kind == domain.MediaShow {
		return "show"
	}
	return "movie"
}

func kindTitle(kind domain.MediaKind) string {
	if kind == domain.MediaShow {
		return "Show"
	}
	return "Movie"
}
