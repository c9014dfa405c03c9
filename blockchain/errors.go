package blockchain

import "fmt"

// AssertError identifies a programmer error in a collaborator: a violation
// of the ancestor-lookup contract, an out-of-range deployment id, or
// similar. Per spec.md §7, these are not recoverable runtime conditions —
// evaluation is total over well-formed inputs, so a bad input is a bug
// upstream, not a value the automaton can encode. GetStateFor and
// GetStateSinceHeightFor panic with an AssertError rather than returning one,
// keeping the hot-path signature down to just the ThresholdState/height the
// external interface (spec.md §6) promises.
type AssertError string

// Error implements the error interface.
func (e AssertError) Error() string {
	return "blockchain assertion failed: " + string(e)
}

// ErrInvalidChain is raised when a block index node violates the
// ancestor-lookup contract, e.g. AncestorAt returns nil for a height at or
// below the node's own height.
var ErrInvalidChain = AssertError("ancestor lookup contract violated")

// assertf panics with a formatted AssertError.
func assertf(format string, args ...interface{}) {
	panic(AssertError(fmt.Sprintf(format, args...)))
}
