package domain

// ReleasePrecision is the granularity of a parsed release date.
// Anchors for anything coarser than a day point at the earliest plausible
// instant, so ordering by anchor never shows a vague date as later than
// its true release.
type ReleasePrecision string

const (
	PrecisionDay     ReleasePrecision = "day"
	PrecisionMonth   ReleasePrecision = "month"
	PrecisionQuarter ReleasePrecision = "quarter"
	PrecisionSeason  ReleasePrecision = "season"
	PrecisionYear    ReleasePrecision = "year"
	PrecisionUnknown ReleasePrecision = "unknown"
)

func (p ReleasePrecision) String() string { return string(p) }

func (p ReleasePrecision) IsValid() bool {
	switch p {
	case PrecisionDay, PrecisionMonth, PrecisionQuarter, PrecisionSeason, PrecisionYear, PrecisionUnknown:
		return true
	}
	return false
}

// MediaKind distinguishes the two media-manager backends.
type MediaKind string

const (
	MediaMovie MediaKind = "MOVIE"
	MediaShow  MediaKind = "SHOW"
)

func (k MediaKind) String() string { return string(k) }

func (k MediaKind) IsValid() bool {
	return k == MediaMovie || k == MediaShow
}

// SystemActor is recorded as the revoker for automatic inactivity revocations.
const SystemActor = "system"
