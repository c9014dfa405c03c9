package blockchain

import (
	"testing"

	"github.com/malandro0/bitcoin/chaincfg"
	"github.com/stretchr/testify/require"
)

const (
	testPeriod    = 10
	testThreshold = 8
)

// versionForWindow returns a version-generating function that signals for
// bit on the first signalCount blocks of every period-sized window and
// stays silent (but still top-pattern-tagged) for the rest.
func versionForWindow(bit uint8, signalCount int) func(int32) int32 {
	return func(height int32) int32 {
		if int(height%testPeriod) < signalCount {
			return signallingVersion(bit)
		}
		return nonSignallingVersion()
	}
}

func newTestParams(deployment chaincfg.DeploymentParams) *chaincfg.Params {
	return &chaincfg.Params{
		Name:        "test",
		Period:      testPeriod,
		Threshold:   testThreshold,
		Deployments: []chaincfg.DeploymentParams{deployment},
	}
}

// TestThresholdStateTimeoutToFailed checks that a deployment which never
// gathers enough signalling moves to FAILED as soon as its timeout height is
// reached, regardless of the signalling count in the final window.
func TestThresholdStateTimeoutToFailed(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:          "td",
		Bit:           1,
		StartHeight:   0,
		TimeoutHeight: 20,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 30, versionForWindow(1, 0))

	require.Equal(t, ThresholdDefined, GetStateFor(nil, params, 0, caches))
	require.Equal(t, ThresholdStarted, GetStateFor(nodes[9], params, 0, caches))
	require.Equal(t, ThresholdFailed, GetStateFor(nodes[19], params, 0, caches))
	require.Equal(t, ThresholdFailed, GetStateFor(nodes[29], params, 0, caches))
	require.True(t, GetStateFor(nodes[29], params, 0, caches).IsTerminal())
}

// TestThresholdStateLockInToActive checks that meeting the signalling
// threshold within a window locks the deployment in, and that it then
// activates as soon as MinActivationHeight allows.
func TestThresholdStateLockInToActive(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:                "lia",
		Bit:                 1,
		StartHeight:         0,
		TimeoutHeight:       chaincfg.NoTimeout,
		MinActivationHeight: 0,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 30, versionForWindow(1, testThreshold))

	require.Equal(t, ThresholdStarted, GetStateFor(nodes[9], params, 0, caches))
	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[19], params, 0, caches))
	require.Equal(t, ThresholdActive, GetStateFor(nodes[29], params, 0, caches))

	require.Equal(t, int32(10), GetStateSinceHeightFor(nodes[9], params, 0, caches))
	require.Equal(t, int32(20), GetStateSinceHeightFor(nodes[19], params, 0, caches))
	require.Equal(t, int32(30), GetStateSinceHeightFor(nodes[29], params, 0, caches))
}

// TestThresholdStateDelayedActivation checks that a locked-in deployment
// waits for MinActivationHeight even after enough windows have passed for a
// plain BIP-9 style deployment to have already activated.
func TestThresholdStateDelayedActivation(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:                "delayed",
		Bit:                 1,
		StartHeight:         0,
		TimeoutHeight:       chaincfg.NoTimeout,
		MinActivationHeight: 60,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 60, versionForWindow(1, testThreshold))

	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[19], params, 0, caches))
	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[29], params, 0, caches))
	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[39], params, 0, caches))
	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[49], params, 0, caches))
	require.Equal(t, ThresholdActive, GetStateFor(nodes[59], params, 0, caches))
}

// TestThresholdStateLockInOnTimeout checks that a deployment configured
// with LockInOnTimeout reaches LOCKED_IN, not FAILED, once its timeout
// height passes without enough signalling.
func TestThresholdStateLockInOnTimeout(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:             "liot",
		Bit:              1,
		StartHeight:      0,
		TimeoutHeight:    20,
		TimeoutBehaviour: chaincfg.LockInOnTimeout,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 30, versionForWindow(1, 0))

	require.Equal(t, ThresholdStarted, GetStateFor(nodes[9], params, 0, caches))
	require.Equal(t, ThresholdLockedIn, GetStateFor(nodes[19], params, 0, caches))
	require.Equal(t, ThresholdActive, GetStateFor(nodes[29], params, 0, caches))
}

// TestThresholdStateAlwaysActive checks that the ALWAYS_ACTIVE sentinel
// reports ACTIVE unconditionally, including for the empty chain.
func TestThresholdStateAlwaysActive(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:        "always",
		Bit:         2,
		StartHeight: chaincfg.AlwaysActiveHeight,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	require.Equal(t, ThresholdActive, GetStateFor(nil, params, 0, caches))

	nodes := buildChain(nil, 5, func(int32) int32 { return nonSignallingVersion() })
	require.Equal(t, ThresholdActive, GetStateFor(nodes[4], params, 0, caches))
	require.Equal(t, int32(0), GetStateSinceHeightFor(nodes[4], params, 0, caches))
}

// TestThresholdStateNeverActive checks that the NEVER_ACTIVE sentinel
// reports FAILED unconditionally.
func TestThresholdStateNeverActive(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:        "never",
		Bit:         2,
		StartHeight: chaincfg.NeverActiveHeight,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	require.Equal(t, ThresholdFailed, GetStateFor(nil, params, 0, caches))

	nodes := buildChain(nil, 5, func(int32) int32 { return nonSignallingVersion() })
	require.Equal(t, ThresholdFailed, GetStateFor(nodes[4], params, 0, caches))
}

// TestComputeBlockVersionSignalsOnlyWhileTransient checks that
// ComputeBlockVersion sets a deployment's bit while STARTED and LOCKED_IN,
// but not once it reaches the terminal ACTIVE state.
func TestComputeBlockVersionSignalsOnlyWhileTransient(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:                "vb",
		Bit:                 1,
		StartHeight:         0,
		TimeoutHeight:       chaincfg.NoTimeout,
		MinActivationHeight: 0,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 30, versionForWindow(1, testThreshold))

	mask := VersionBitsMask(params, 0)

	startedVersion := ComputeBlockVersion(nodes[9], params, caches)
	require.Equal(t, VersionBitsTopBits, startedVersion&VersionBitsTopMask)
	require.NotZero(t, startedVersion&mask)

	lockedInVersion := ComputeBlockVersion(nodes[19], params, caches)
	require.NotZero(t, lockedInVersion&mask)

	activeVersion := ComputeBlockVersion(nodes[29], params, caches)
	require.Zero(t, activeVersion&mask)
}

// TestClearCacheIsIdempotent checks that clearing the cache and
// recomputing yields the same states as before the clear.
func TestClearCacheIsIdempotent(t *testing.T) {
	t.Parallel()

	deployment := chaincfg.DeploymentParams{
		Name:          "cache",
		Bit:           1,
		StartHeight:   0,
		TimeoutHeight: 20,
	}
	params := newTestParams(deployment)
	caches := NewThresholdCaches(len(params.Deployments))

	nodes := buildChain(nil, 30, versionForWindow(1, 0))

	before := GetStateFor(nodes[29], params, 0, caches)
	caches.ClearCache()
	after := GetStateFor(nodes[29], params, 0, caches)

	require.Equal(t, before, after)
}
