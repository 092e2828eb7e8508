package relay

import "errors"

// ErrAgentNotFound is returned when a request names an agent that is not in
// the catalog. It is the only lookup failure surfaced to callers; memory
// failures degrade silently.
var ErrAgentNotFound = errors.New("agent not found")
