package access

// Outcome classifies a gate evaluation.
type Outcome string

const (
	// OutcomeAllowed means the actor may run the protected action now.
	OutcomeAllowed Outcome = "allowed"

	// OutcomePendingCreated means a pending approval request was persisted
	// and the caller should start the bounded wait.
	OutcomePendingCreated Outcome = "pending_created"

	// OutcomeAlreadyPending means the actor already has a live request;
	// the new attempt is rejected.
	OutcomeAlreadyPending Outcome = "already_pending"
)

// Decision is the result of a gate evaluation.
type Decision struct {
	Outcome Outcome

	// NotifyAdmins is set on PendingCreated when the per-actor
	// notification cooldown has lapsed; the caller pings admins only then.
	NotifyAdmins bool
}
