package media

// AddOutcome classifies the result of a library-add attempt.
type AddOutcome int

const (
	// OutcomeAdded means the item was queued for download.
	OutcomeAdded AddOutcome = iota
	// OutcomeAlreadyQueued means the manager already tracks the item; the
	// remote's duplicate rejection is a normal outcome, not a failure.
	OutcomeAlreadyQueued
	// OutcomeAlreadyInLibrary means the library server already has the
	// item, so nothing was queued.
	OutcomeAlreadyInLibrary
)
