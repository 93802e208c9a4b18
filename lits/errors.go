package lits

import "fmt"

// IllegalMoveReason names the specific placement constraint a move
// violated.
type IllegalMoveReason uint8

const (
	CellOccupied IllegalMoveReason = iota
	ShapeBagEmpty
	FoursquareViolation
	ConnectivityViolation
	OutOfBounds
	UnknownOrientation
)

func (r IllegalMoveReason) String() string {
	switch r {
	case CellOccupied:
		return "cell occupied"
	case ShapeBagEmpty:
		return "shape bag empty"
	case FoursquareViolation:
		return "foursquare violation"
	case ConnectivityViolation:
		return "connectivity violation"
	case OutOfBounds:
		return "out of bounds"
	case UnknownOrientation:
		return "unknown orientation"
	}
	return "unknown reason"
}

// IllegalMoveError is returned by move application and the legality
// predicate. It is surfaced verbatim to protocol callers, never
// silently corrected.
type IllegalMoveError struct {
	Reason IllegalMoveReason
	Move   Move
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}

// IsIllegalMove reports whether err is an IllegalMoveError with the
// given reason.
func IsIllegalMove(err error, reason IllegalMoveReason) bool {
	im, ok := err.(*IllegalMoveError)
	return ok && im.Reason == reason
}
