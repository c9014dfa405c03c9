// Package chaincfg defines the static, per-network configuration consumed by
// the blockchain package's version-bits state machine: which deployments
// exist, which bit each one signals on, and the height windows in which they
// are allowed to activate.
package chaincfg

// TimeoutBehaviour controls what a deployment's STARTED state transitions to
// once its timeout height is reached without the signalling threshold having
// been met.
type TimeoutBehaviour uint8

const (
	// FailOnTimeout moves a STARTED deployment to FAILED once its timeout
	// height is reached without having locked in. This is the default and
	// matches the original BIP 9 behaviour.
	FailOnTimeout TimeoutBehaviour = iota

	// LockInOnTimeout moves a STARTED deployment straight to LOCKED_IN once
	// its timeout height is reached, regardless of the signalling count.
	// Used for deployments that must activate no matter what miners signal.
	LockInOnTimeout
)

// String implements fmt.Stringer.
func (t TimeoutBehaviour) String() string {
	switch t {
	case FailOnTimeout:
		return "fail-on-timeout"
	case LockInOnTimeout:
		return "lock-in-on-timeout"
	default:
		return "unknown-timeout-behaviour"
	}
}

// Sentinel heights recognised by DeploymentParams.StartHeight and
// DeploymentParams.TimeoutHeight. They are chosen to be impossible real block
// heights so they can share the same field as ordinary heights.
const (
	// AlwaysActiveHeight, used as StartHeight, marks a deployment that is
	// ACTIVE unconditionally, including for the empty chain.
	AlwaysActiveHeight = -1

	// NeverActiveHeight, used as StartHeight, marks a deployment that is
	// FAILED unconditionally.
	NeverActiveHeight = -2

	// NoTimeout, used as TimeoutHeight, marks a deployment whose STARTED
	// state never expires by timeout; it can only leave STARTED by meeting
	// the signalling threshold.
	NoTimeout = -1
)

// MaxDeploymentBit is the highest signalling bit a deployment may use. Bits
// 29 through 31 carry the version-bits top pattern itself (see
// VersionBitsTopMask in the blockchain package), and bit 28 is not available
// to deployments either.
const MaxDeploymentBit = 27

// DeploymentParams describes one soft-fork candidate: the bit it signals on
// and the height window in which it may activate.
//
// A DeploymentParams value is immutable once handed to a Params; evaluating
// it against a chain never mutates it.
type DeploymentParams struct {
	// Name identifies the deployment for logging and error messages. It is
	// not consensus-critical.
	Name string

	// Bit is the position, in [0, MaxDeploymentBit], of the signalling bit
	// this deployment uses in a block's version word.
	Bit uint8

	// StartHeight is the height of the first block whose parent may trigger
	// a transition out of DEFINED, or one of the AlwaysActiveHeight /
	// NeverActiveHeight sentinels.
	StartHeight int32

	// TimeoutHeight is the height at which STARTED must yield to LOCKED_IN
	// or FAILED, or NoTimeout.
	TimeoutHeight int32

	// MinActivationHeight is the earliest height at which LOCKED_IN may
	// transition to ACTIVE. Must be a multiple of the deployment's period.
	// Always 0 for the two sentinel deployments.
	MinActivationHeight int32

	// TimeoutBehaviour governs what STARTED transitions to once
	// TimeoutHeight is reached without lock-in.
	TimeoutBehaviour TimeoutBehaviour
}

// IsAlwaysActive reports whether the deployment is the ALWAYS_ACTIVE
// sentinel.
func (d DeploymentParams) IsAlwaysActive() bool {
	return d.StartHeight == AlwaysActiveHeight
}

// IsNeverActive reports whether the deployment is the NEVER_ACTIVE sentinel.
func (d DeploymentParams) IsNeverActive() bool {
	return d.StartHeight == NeverActiveHeight
}

// IsSentinel reports whether the deployment is either of the two
// short-circuit pseudo-deployments.
func (d DeploymentParams) IsSentinel() bool {
	return d.IsAlwaysActive() || d.IsNeverActive()
}

// HasTimeout reports whether the deployment can time out of STARTED.
func (d DeploymentParams) HasTimeout() bool {
	return d.TimeoutHeight != NoTimeout
}
