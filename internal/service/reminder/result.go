package reminder

// AddOutcome classifies the result of an Add attempt.
type AddOutcome int

const (
	// OutcomeAdded means a new pending reminder was created.
	OutcomeAdded AddOutcome = iota
	// OutcomeAlreadyPending means a pending reminder for the same item and
	// channel already exists; duplicates are a no-op, not an error.
	OutcomeAlreadyPending
	// OutcomeAlreadyReleased means the item has a day-exact release date in
	// the past, so a reminder would never fire.
	OutcomeAlreadyReleased
)
