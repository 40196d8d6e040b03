package game

import "errors"

// Error kinds for every failing operation. All failures are recoverable at
// the call site: the operation aborts without mutating state. Callers match
// with errors.Is and map kinds to wire codes at the transport boundary.
var (
	// ErrNotFound reports a missing player, card, or session.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState reports an operation whose match-lifecycle
	// precondition does not hold (match started/not started, ready check
	// inactive).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput reports a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("invalid input")
)
