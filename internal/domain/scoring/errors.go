package scoring

import "errors"

// Sentinel kinds for scoring errors. All are input-validation failures; none
// are retriable.
var (
	ErrInvalidScoreRange = errors.New("dimension score outside [1, 5]")
	ErrEmptyPeerSet      = errors.New("peer ranking needs at least two items")
	ErrEmptyCollection   = errors.New("collection is empty")
	ErrUnknownDimension  = errors.New("dimension not in profile")
	ErrUnknownProfile    = errors.New("unknown scoring profile")
)
