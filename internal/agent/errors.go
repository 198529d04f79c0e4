package agent

import "errors"

// ErrTurnLimit is returned when a turn exceeds its generate/act
// iteration bound and transitions to Aborted.
var ErrTurnLimit = errors.New("agent: turn iteration limit exceeded")
