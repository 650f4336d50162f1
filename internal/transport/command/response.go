package command

import "time"

// Response is the tagged result of dispatching one command. The outer chat
// layer switches on the concrete type to render; nothing is signaled
// through string re-parsing. A nil Response means the message was not for
// the bot or was silently ignored.
type Response interface {
	isResponse()
}

// PlainText is a single narrative reply.
type PlainText struct {
	Text string
}

// ListKind tags what a StructuredList holds.
type ListKind string

const (
	ListGames     ListKind = "games"
	ListMovies    ListKind = "movies"
	ListShows     ListKind = "shows"
	ListReminders ListKind = "reminders"
	ListWishlist  ListKind = "wishlist"
	ListApprovals ListKind = "approvals"
	ListHelp      ListKind = "help"
)

// ListItem is one renderable row of a StructuredList.
type ListItem struct {
	ID     int64
	Title  string
	Detail string
}

// StructuredList is an ordered result set the renderer turns into an
// embed or table.
type StructuredList struct {
	Kind  ListKind
	Items []ListItem
	// Footer carries trailing context, e.g. admin hints on a help list.
	Footer string
}

// AccessRequest signals that a protected action is now waiting on an
// admin confirmation. The renderer prompts the channel and, when
// NotifyAdmins is set, pings the owner list.
type AccessRequest struct {
	ActorID      string
	NotifyAdmins bool
	ExpiresIn    time.Duration
}

// AdminActionKind tags which administrative state change happened.
type AdminActionKind string

const (
	ActionApproved    AdminActionKind = "approved"
	ActionRevoked     AdminActionKind = "revoked"
	ActionChannelSet  AdminActionKind = "channel_set"
	ActionTimezoneSet AdminActionKind = "timezone_set"
)

// AdminAction reports a completed administrative command.
type AdminAction struct {
	Kind    AdminActionKind
	ActorID string
	Value   string
}

func (PlainText) isResponse()      {}
func (StructuredList) isResponse() {}
func (AccessRequest) isResponse()  {}
func (AdminAction) isResponse()    {}
