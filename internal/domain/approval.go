package domain

import "time"

// Approval is one per (guild, actor). Rows are never hard-deleted: revoking
// sets RevokedAt/RevokedBy, re-approving clears them and refreshes
// ApprovedAt, so the table doubles as an audit trail.
type Approval struct {
	GuildID    int64
	ActorID    string
	ApprovedAt time.Time
	ApprovedBy string
	RevokedAt  *time.Time
	RevokedBy  *string
	Note       *string
	LastUsedAt *time.Time
}

// Active reports whether the approval currently gates-open.
func (a Approval) Active() bool { return a.RevokedAt == nil }

// LastActivity is the instant inactivity is measured from: the last
// protected-action use, or the approval itself if the actor never used one.
func (a Approval) LastActivity() time.Time {
	if a.LastUsedAt != nil {
		return *a.LastUsedAt
	}
	return a.ApprovedAt
}

// ApprovalRequest is a live pending approval handshake, at most one per
// (guild, actor). It is deleted on confirmation, cancellation, and expiry.
type ApprovalRequest struct {
	GuildID         int64
	ActorID         string
	RequestedAt     time.Time
	ExpiresAt       time.Time
	OriginChannelID int64
	OriginMessageID int64
}

// Expired reports whether the request's confirmation window has closed.
func (r ApprovalRequest) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
