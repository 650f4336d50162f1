package domain

import (
	"time"

	"github.com/google/uuid"
)

// FarFuture is the sentinel release anchor stored when a release date is
// truly unknown. It keeps soonest-first ordering total without nullable
// sort keys.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Reminder is a pending or sent release notification request. At most one
// unsent row may exist per (guild, app, channel).
type Reminder struct {
	ID            uuid.UUID
	GuildID       int64
	AppID         int64
	Name          string
	ReleaseAt     time.Time // FarFuture when unknown
	Precision     ReleasePrecision
	ReleaseText   string // raw storefront string, kept for display and re-parsing
	LastCheckedAt time.Time
	ChannelID     int64
	CreatedBy     string
	CreatedAt     time.Time
	SentAt        *time.Time // nil while pending
}

// Pending reports whether the reminder has not been delivered yet.
func (r Reminder) Pending() bool { return r.SentAt == nil }

// ReleaseKnown reports whether the stored anchor is a real parsed date
// rather than the FarFuture sentinel.
func (r Reminder) ReleaseKnown() bool { return r.ReleaseAt.Before(FarFuture) }

// WishlistEntry is one storefront item a channel watches for sales.
// (guild, channel, app) is unique.
type WishlistEntry struct {
	GuildID   int64
	ChannelID int64
	AppID     int64
	Name      string
	AddedBy   string
	AddedAt   time.Time
}
