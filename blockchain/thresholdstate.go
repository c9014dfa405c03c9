package blockchain

import "fmt"

// ThresholdState represents the activation state of a single deployment.
// There are exactly five variants; ACTIVE and FAILED are terminal, the
// other three are transient and only ever move forward.
type ThresholdState byte

const (
	// ThresholdDefined is the state before a deployment's start height.
	// It is the initial state of every non-sentinel deployment.
	ThresholdDefined ThresholdState = iota

	// ThresholdStarted is the state while a deployment is counting
	// signalling blocks within retarget windows.
	ThresholdStarted

	// ThresholdLockedIn is the state once the signalling threshold has
	// been met (or lock-in-on-timeout has fired); activation is pending
	// MinActivationHeight.
	ThresholdLockedIn

	// ThresholdActive is the state once a deployment's rules are
	// enforced. Terminal.
	ThresholdActive

	// ThresholdFailed is the state once a deployment has timed out
	// without locking in. Terminal.
	ThresholdFailed
)

var thresholdStateStrings = map[ThresholdState]string{
	ThresholdDefined:  "DEFINED",
	ThresholdStarted:  "STARTED",
	ThresholdLockedIn: "LOCKED_IN",
	ThresholdActive:   "ACTIVE",
	ThresholdFailed:   "FAILED",
}

// String implements fmt.Stringer.
func (t ThresholdState) String() string {
	if s, ok := thresholdStateStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN_THRESHOLD_STATE(%d)", byte(t))
}

// IsTerminal reports whether t is one of the two absorbing states.
func (t ThresholdState) IsTerminal() bool {
	return t == ThresholdActive || t == ThresholdFailed
}

// SignalsInVersion reports whether a deployment in state t should still be
// signalled for in a mined block's version word: true while STARTED (still
// counting votes) or LOCKED_IN (miners keep signalling through activation so
// observers can see intent), false otherwise.
func (t ThresholdState) SignalsInVersion() bool {
	return t == ThresholdStarted || t == ThresholdLockedIn
}
