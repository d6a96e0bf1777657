package game

import "errors"

// Every error returned by the engine wraps exactly one of these.
var (
	// ErrConfiguration reports an invalid table setup
	ErrConfiguration = errors.New("invalid configuration")
	// ErrPrecondition reports a call made at the wrong time, such as acting out of turn
	ErrPrecondition = errors.New("precondition failed")
	// ErrIllegalAction reports an action the betting rules do not allow
	ErrIllegalAction = errors.New("illegal action")
)
