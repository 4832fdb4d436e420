package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrUnknownPosition = errors.New("unknown position")
)
