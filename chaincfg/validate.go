package chaincfg

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is the sentinel error wrapped by every failure
// CheckVBitsHeights reports. Callers that only care whether validation
// failed, not why, can test with errors.Is(err, ErrInvalidParameters).
var ErrInvalidParameters = errors.New("invalid version-bits parameters")

// CheckVBitsHeights validates the static invariants between the deployment
// windows configured on p. It must be called once, at startup, before any
// evaluation runs; a Params that fails validation must not be used.
//
// Validation stops at the first failure: deployments are checked one by one
// in order, then every pair sharing a bit, and the returned error names the
// rule that failed and, where one applies, the offending deployment.
func (p *Params) CheckVBitsHeights() error {
	if p.Period == 0 {
		return fmt.Errorf("%w: period must be positive", ErrInvalidParameters)
	}
	if p.Threshold > p.Period {
		return fmt.Errorf("%w: threshold %d exceeds period %d",
			ErrInvalidParameters, p.Threshold, p.Period)
	}

	for _, d := range p.Deployments {
		if err := p.checkDeploymentHeights(d); err != nil {
			return err
		}
	}

	for i := range p.Deployments {
		for j := i + 1; j < len(p.Deployments); j++ {
			if err := checkBitDisjoint(p.Deployments[i], p.Deployments[j]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *Params) checkDeploymentHeights(d DeploymentParams) error {
	if d.Bit > MaxDeploymentBit {
		return fmt.Errorf("%w: deployment %q: bit %d exceeds max %d",
			ErrInvalidParameters, d.Name, d.Bit, MaxDeploymentBit)
	}

	if d.IsSentinel() {
		if d.MinActivationHeight != 0 {
			return fmt.Errorf("%w: deployment %q: sentinel deployments "+
				"must have min_activation_height 0, got %d",
				ErrInvalidParameters, d.Name, d.MinActivationHeight)
		}
		return nil
	}

	if d.StartHeight < 0 {
		return fmt.Errorf("%w: deployment %q: negative start_height %d",
			ErrInvalidParameters, d.Name, d.StartHeight)
	}
	if uint32(d.StartHeight)%p.Period != 0 {
		return fmt.Errorf("%w: deployment %q: start_height %d is not a "+
			"multiple of period %d", ErrInvalidParameters, d.Name,
			d.StartHeight, p.Period)
	}
	if d.HasTimeout() && d.TimeoutHeight <= d.StartHeight {
		return fmt.Errorf("%w: deployment %q: timeout_height %d must be "+
			"greater than start_height %d", ErrInvalidParameters, d.Name,
			d.TimeoutHeight, d.StartHeight)
	}
	if d.MinActivationHeight < 0 {
		return fmt.Errorf("%w: deployment %q: negative "+
			"min_activation_height %d", ErrInvalidParameters, d.Name,
			d.MinActivationHeight)
	}
	if uint32(d.MinActivationHeight)%p.Period != 0 {
		return fmt.Errorf("%w: deployment %q: min_activation_height %d is "+
			"not a multiple of period %d", ErrInvalidParameters, d.Name,
			d.MinActivationHeight, p.Period)
	}

	return nil
}

// checkBitDisjoint enforces that two deployments sharing a signalling bit
// never have overlapping [start, timeout) windows, per spec.md's bit
// disjointness invariant. Sentinel deployments are exempt: ALWAYS_ACTIVE and
// NEVER_ACTIVE never consult the version word, so sharing a bit with them is
// harmless.
func checkBitDisjoint(a, b DeploymentParams) error {
	if a.Bit != b.Bit {
		return nil
	}
	if a.IsSentinel() || b.IsSentinel() {
		return nil
	}

	aTimeout, bTimeout := a.TimeoutHeight, b.TimeoutHeight
	if !a.HasTimeout() {
		aTimeout = math.MaxInt32
	}
	if !b.HasTimeout() {
		bTimeout = math.MaxInt32
	}

	disjoint := aTimeout <= b.StartHeight || bTimeout <= a.StartHeight
	if !disjoint {
		return fmt.Errorf("%w: deployments %q and %q share bit %d with "+
			"overlapping windows [%d,%d) and [%d,%d)", ErrInvalidParameters,
			a.Name, b.Name, a.Bit, a.StartHeight, aTimeout, b.StartHeight,
			bTimeout)
	}

	return nil
}
