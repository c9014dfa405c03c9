package blockchain

import (
	"github.com/malandro0/bitcoin/chaincfg"
)

// VersionBitsTopBits and VersionBitsTopMask mark blocks that use the
// version-bits signalling scheme: a compliant miner sets the top three bits
// of the version word to 001 and uses the low 28 bits as a bitfield, one bit
// per deployment. A version word failing this mask check signals nothing,
// regardless of which low bits happen to be set.
const (
	VersionBitsTopBits uint32 = 0x20000000
	VersionBitsTopMask uint32 = 0xe0000000
)

// GetStateFor returns the ThresholdState of the deployment at deploymentID,
// evaluated for the window containing the successor of parent. parent is nil
// for the empty chain.
//
// GetStateFor never returns an error. A caller passing a deploymentID
// outside params.Deployments, or a parent whose ancestor links violate the
// contract documented on BlockNode.AncestorAt, gets an AssertError panic
// instead: both conditions are bugs in the caller, not runtime states this
// function's signature should have to encode.
func GetStateFor(parent *BlockNode, params *chaincfg.Params, deploymentID int,
	caches *ThresholdCaches) ThresholdState {

	if deploymentID < 0 || deploymentID >= len(params.Deployments) {
		assertf("deployment id %d out of range [0,%d)", deploymentID,
			len(params.Deployments))
	}

	deployment := params.Deployments[deploymentID]
	return deploymentState(parent, params, deployment, caches.For(deploymentID))
}

// deploymentState walks the chain backward one period-boundary block at a
// time, from parent's normalized boundary toward genesis, stopping at the
// first cached boundary (or at genesis). It then walks forward again,
// applying one single-period state transition per boundary and caching the
// result, until it arrives back at parent's own window.
//
// This is the iterative form of the textbook recursive definition: "the
// state of window N is a function of the state of window N-1". Recursion
// would blow the stack on a deep, cold chain; the explicit stack here does
// not.
func deploymentState(parent *BlockNode, params *chaincfg.Params,
	deployment chaincfg.DeploymentParams,
	cache *ThresholdConditionCache) ThresholdState {

	if deployment.IsAlwaysActive() {
		return ThresholdActive
	}
	if deployment.IsNeverActive() {
		return ThresholdFailed
	}

	period := int32(params.Period)

	// The first period is always DEFINED: there is no completed prior
	// window whose state could have advanced it.
	if parent == nil || parent.Height()+1 < period {
		return ThresholdDefined
	}

	startingNode := periodBoundary(parent, period)
	if startingNode == nil {
		panic(ErrInvalidChain)
	}

	var stack []*BlockNode
	node := startingNode
	for node != nil {
		if _, ok := cache.Lookup(node.Hash()); ok {
			break
		}
		stack = append(stack, node)
		node = node.RelativeAncestor(period)
	}

	state := ThresholdDefined
	if node != nil {
		var ok bool
		state, ok = cache.Lookup(node.Hash())
		if !ok {
			panic(ErrInvalidChain)
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		boundary := stack[i]
		state = singlePeriodTransition(state, boundary, params, deployment)
		cache.Update(boundary.Hash(), state)
	}

	return state
}

// periodBoundary returns the ancestor of n (possibly n itself) that ends the
// retarget window preceding the one containing n's successor: the
// highest-height ancestor h of n such that (h.Height()+1) is a multiple of
// period.
func periodBoundary(n *BlockNode, period int32) *BlockNode {
	return n.AncestorAt(n.Height() - (n.Height()+1)%period)
}

// singlePeriodTransition computes the state of the window immediately
// following boundary, given prevState, the state of the window boundary
// itself concludes. boundary's successor height is always a multiple of
// params.Period.
func singlePeriodTransition(prevState ThresholdState, boundary *BlockNode,
	params *chaincfg.Params, deployment chaincfg.DeploymentParams) ThresholdState {

	nextHeight := boundary.Height() + 1

	switch prevState {
	case ThresholdDefined:
		if nextHeight >= deployment.StartHeight {
			return ThresholdStarted
		}
		return ThresholdDefined

	case ThresholdStarted:
		if deployment.HasTimeout() && nextHeight >= deployment.TimeoutHeight {
			if deployment.TimeoutBehaviour == chaincfg.LockInOnTimeout {
				return ThresholdLockedIn
			}
			return ThresholdFailed
		}

		count := countSignalling(boundary, int32(params.Period), deployment)
		if count >= params.Threshold {
			return ThresholdLockedIn
		}
		return ThresholdStarted

	case ThresholdLockedIn:
		if nextHeight >= deployment.MinActivationHeight {
			return ThresholdActive
		}
		return ThresholdLockedIn

	case ThresholdActive, ThresholdFailed:
		// Terminal: once reached, forever reached.
		return prevState

	default:
		assertf("unreachable threshold state %v", prevState)
		return ThresholdFailed
	}
}

// countSignalling counts how many of the period blocks ending at (and
// including) boundary set deployment's bit in a version word that also
// carries the version-bits top pattern.
func countSignalling(boundary *BlockNode, period int32,
	deployment chaincfg.DeploymentParams) uint32 {

	var count uint32
	node := boundary
	for i := int32(0); i < period; i++ {
		if signals(node, deployment) {
			count++
		}
		node = node.Parent()
	}
	return count
}

// signals reports whether node's version word signals for deployment.
func signals(node *BlockNode, deployment chaincfg.DeploymentParams) bool {
	version := uint32(node.Version())
	mask := uint32(1) << deployment.Bit
	return version&VersionBitsTopMask == VersionBitsTopBits && version&mask != 0
}

// GetStateSinceHeightFor returns the height of the first block of the
// earliest window whose state equals GetStateFor(parent, ...)'s result: the
// height at which the deployment entered its current state. It is always a
// multiple of params.Period, except for the DEFINED state reached before any
// deployment has a chance to run, which is always height 0.
func GetStateSinceHeightFor(parent *BlockNode, params *chaincfg.Params,
	deploymentID int, caches *ThresholdCaches) int32 {

	if deploymentID < 0 || deploymentID >= len(params.Deployments) {
		assertf("deployment id %d out of range [0,%d)", deploymentID,
			len(params.Deployments))
	}

	deployment := params.Deployments[deploymentID]
	if deployment.IsSentinel() {
		return 0
	}

	currentState := GetStateFor(parent, params, deploymentID, caches)

	period := int32(params.Period)
	if parent == nil || parent.Height()+1 < period {
		return 0
	}

	cache := caches.For(deploymentID)
	walk := periodBoundary(parent, period)
	if walk == nil {
		panic(ErrInvalidChain)
	}

	for {
		prevBoundary := walk.RelativeAncestor(period)
		if prevBoundary == nil {
			// There is no window before this one; it is implicitly
			// DEFINED. That only matches currentState if currentState
			// is itself DEFINED.
			if currentState == ThresholdDefined {
				return 0
			}
			return walk.Height() + 1
		}

		state, ok := cache.Lookup(prevBoundary.Hash())
		if !ok {
			panic(ErrInvalidChain)
		}
		if state != currentState {
			return walk.Height() + 1
		}

		walk = prevBoundary
	}
}

// ComputeBlockVersion returns the version word a block extending tip should
// use: the version-bits top pattern, with one additional bit set for every
// deployment currently STARTED or LOCKED_IN. tip is the parent of the block
// being built, matching the parent convention of GetStateFor.
func ComputeBlockVersion(tip *BlockNode, params *chaincfg.Params,
	caches *ThresholdCaches) uint32 {

	version := VersionBitsTopBits
	for id, deployment := range params.Deployments {
		if deployment.IsSentinel() {
			continue
		}
		state := GetStateFor(tip, params, id, caches)
		if state.SignalsInVersion() {
			version |= uint32(1) << deployment.Bit
		}
	}
	return version
}

// VersionBitsMask returns the single-bit mask a block's version word must
// intersect, after top-pattern masking, to count as signalling for the
// deployment at deploymentID.
func VersionBitsMask(params *chaincfg.Params, deploymentID int) uint32 {
	return uint32(1) << params.Deployments[deploymentID].Bit
}
