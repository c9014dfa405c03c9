package blockchain

import "github.com/malandro0/bitcoin/chaincfg"

// vbNumBits is the number of signalling bits available in the low 29 bits of
// a version-bits block version, per VersionBitsTopMask.
const vbNumBits = 29

// unknownVersionWindow is the number of trailing blocks examined when
// deciding whether an unusually large share of recent miners are signalling
// something this software's configured deployments don't account for.
const unknownVersionWindow = 100

// unknownVersionWarnThreshold is the number of blocks within
// unknownVersionWindow carrying an unrecognized version bit that must be
// exceeded before WarnUnknownVersions logs.
const unknownVersionWarnThreshold = unknownVersionWindow / 2

// legacyBlockVersion is the highest block version predating version-bits
// signalling.
const legacyBlockVersion = 1

// WarningTracker watches a chain for two symptoms of running out-of-date
// software: a version-bits bit locking in or activating that isn't part of
// this software's configured deployment set, and a run of recent blocks
// whose version words carry bits this software doesn't expect. The
// unknown-rules-activated and unknown-versions warnings each latch, firing
// at most once per WarningTracker; the unknown-rules-locked-in warning does
// not latch and repeats on every call for as long as the bit stays locked
// in, since it names a moving activation height that keeps changing.
//
// A WarningTracker is not safe for concurrent use; callers evaluating it
// from multiple goroutines must serialize access themselves.
type WarningTracker struct {
	bitCaches [vbNumBits]*ThresholdConditionCache

	rulesWarned    bool
	versionsWarned bool
}

// NewWarningTracker returns a WarningTracker with empty per-bit caches.
func NewWarningTracker() *WarningTracker {
	t := &WarningTracker{}
	for i := range t.bitCaches {
		t.bitCaches[i] = NewThresholdConditionCache()
	}
	return t
}

// unknownBitDeployment synthesizes a DeploymentParams that treats bit as
// "always eligible to signal": start height 0, no timeout. Evaluating it
// with the real period and threshold answers "if this bit were a
// deployment, would enough of the recent chain have voted for it to lock
// in or activate?" — which is exactly the question worth warning about when
// the answer is yes and bit is not one of the deployments this software
// actually knows about.
func unknownBitDeployment(bit uint32) chaincfg.DeploymentParams {
	return chaincfg.DeploymentParams{
		Name:          "unknown-bit",
		Bit:           uint8(bit),
		StartHeight:   0,
		TimeoutHeight: chaincfg.NoTimeout,
	}
}

// WarnUnknownRules logs a warning if any version-bits bit not covered by
// params.Deployments is locked in or active, or is about to activate. This
// is the only reliable way to notice a soft fork this software doesn't know
// about before it fully activates.
func (t *WarningTracker) WarnUnknownRules(parent *BlockNode, params *chaincfg.Params) {
	period := int32(params.Period)

	known := make(map[uint8]bool, len(params.Deployments))
	for _, d := range params.Deployments {
		known[d.Bit] = true
	}

	for bit := uint32(0); bit < vbNumBits; bit++ {
		if known[uint8(bit)] {
			continue
		}

		checker := unknownBitDeployment(bit)
		state := deploymentState(parent, params, checker, t.bitCaches[bit])

		switch state {
		case ThresholdActive:
			if !t.rulesWarned {
				log.Warnf("Unknown new rules activated (bit %d)", bit)
				t.rulesWarned = true
			}

		case ThresholdLockedIn:
			activationHeight := period - (parent.Height()+1)%period
			log.Warnf("Unknown new rules are about to activate in %d "+
				"blocks (bit %d)", activationHeight, bit)
		}
	}
}

// WarnUnknownVersions logs a one-time warning if more than half of the last
// unknownVersionWindow blocks set a version bit this software's configured
// deployments don't account for.
func (t *WarningTracker) WarnUnknownVersions(tip *BlockNode, params *chaincfg.Params,
	caches *ThresholdCaches) {

	if t.versionsWarned {
		return
	}

	var numUpgraded uint32
	node := tip
	for i := 0; i < unknownVersionWindow && node != nil; i++ {
		expected := ComputeBlockVersion(node.Parent(), params, caches)
		if expected > legacyBlockVersion &&
			uint32(node.Version())&^expected != 0 {

			numUpgraded++
		}
		node = node.Parent()
	}

	if numUpgraded > unknownVersionWarnThreshold {
		log.Warnf("Unknown block versions are being mined, so new rules " +
			"might be in effect. Are you running the latest version of " +
			"the software?")
		t.versionsWarned = true
	}
}
