package adjudicator

import "errors"

var (
	ErrOutputMismatch   = errors.New("outputs do not match outcome")
	ErrPrematureTimeout = errors.New("dispute window has not expired")
	ErrStaleClaim       = errors.New("stale claim")
	ErrWrongPriorState  = errors.New("wrong prior state")
)
