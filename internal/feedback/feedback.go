package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// #region value

// Value is the closed set of post-action feedback outcomes.
type Value string

const (
	Unknown Value = ""
	Worse   Value = "worse"
	Same    Value = "same"
	Better  Value = "better"
)

// Internal synonyms accepted at the boundary. The engine stores and
// reasons about the external names only.
const (
	synStillHigh = "still_high"
	synReduced   = "reduced"
	synClear     = "clear"
)

// Positive reports whether the value counts toward ritual eligibility.
// Better is positive, Same is neutral-positive, Worse is negative.
func (v Value) Positive() bool {
	return v == Better || v == Same
}

// #endregion value

// #region policy

// Policy controls how unrecognized feedback tokens are handled. The
// product default is to coerce them to the neutral value rather than
// reject, so a stale UI token never blocks the post-action flow.
type Policy struct {
	CoerceUnknown bool
}

// DefaultPolicy returns the coercing policy.
func DefaultPolicy() Policy {
	return Policy{CoerceUnknown: true}
}

// #endregion policy

// #region normalize

// ErrUnrecognized is returned for unknown tokens under a strict policy.
var ErrUnrecognized = errors.New("unrecognized feedback token")

// Normalize maps an external or internal feedback token to a Value.
// Matching is case-insensitive. Unknown tokens coerce to Same under the
// default policy, or fail with ErrUnrecognized under a strict one.
func Normalize(token string, policy Policy) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case string(Worse), synStillHigh:
		return Worse, nil
	case string(Same), synReduced:
		return Same, nil
	case string(Better), synClear:
		return Better, nil
	}
	if policy.CoerceUnknown {
		return Same, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnrecognized, token)
}

// #endregion normalize
