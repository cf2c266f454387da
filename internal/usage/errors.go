package usage

import "errors"

// ErrLimitReached indicates the user exhausted their AI credits for the period.
var ErrLimitReached = errors.New("ai credit limit reached")
