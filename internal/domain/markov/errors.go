package markov

import "errors"

// ErrData marks failures caused by missing or unusable historical
// data, such as an unforced state with no observed transitions.
var ErrData = errors.New("insufficient transition data")

// ErrValidation marks failures caused by a caller-supplied adjustment,
// such as an unknown metric, an out-of-range target or an adjustment
// that drains a transition row.
var ErrValidation = errors.New("invalid adjustment")
