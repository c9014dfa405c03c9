package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockHeader is the minimal view of a block the version-bits evaluator
// needs. Real callers typically satisfy this with a thin wrapper around
// their own header type; BlockNode below is the concrete implementation
// this module ships so the evaluator is testable on its own.
type BlockHeader interface {
	// Height is this block's height, with the genesis block at 0.
	Height() int32

	// Timestamp is this block's header timestamp.
	Timestamp() int64

	// Version is this block's raw, signed 32-bit version word.
	Version() int32

	// Hash uniquely identifies this block; it is the key used by
	// ThresholdConditionCache.
	Hash() chainhash.Hash
}

// BlockNode is an immutable node in an in-memory block index, linked to its
// parent and carrying a skip pointer for O(log n) ancestor lookups. It is
// the concrete BlockHeader implementation used throughout this module's
// tests and by the blockindex package.
//
// NOTE: Additions or reordering of these fields should keep 64-bit fields
// ahead of narrower ones to avoid needless padding; the block index can hold
// hundreds of thousands of these.
type BlockNode struct {
	parent *BlockNode
	skip   *BlockNode

	hash chainhash.Hash

	timestamp int64
	height    int32
	version   int32
}

// NewBlockNode constructs a BlockNode linked to the given parent. parent may
// be nil, in which case the new node is the genesis block at height 0.
func NewBlockNode(hash chainhash.Hash, timestamp int64, version int32,
	parent *BlockNode) *BlockNode {

	node := &BlockNode{
		parent:    parent,
		hash:      hash,
		timestamp: timestamp,
		version:   version,
	}
	if parent != nil {
		node.height = parent.height + 1
	}
	node.skip = node.parent.ancestor(skipHeight(node.height))

	return node
}

// Height implements BlockHeader.
func (n *BlockNode) Height() int32 {
	if n == nil {
		return -1
	}
	return n.height
}

// Timestamp implements BlockHeader.
func (n *BlockNode) Timestamp() int64 {
	return n.timestamp
}

// Version implements BlockHeader.
func (n *BlockNode) Version() int32 {
	return n.version
}

// Hash implements BlockHeader.
func (n *BlockNode) Hash() chainhash.Hash {
	return n.hash
}

// Parent returns this node's parent, or nil if this node is the genesis
// block.
func (n *BlockNode) Parent() *BlockNode {
	if n == nil {
		return nil
	}
	return n.parent
}

// skipHeight determines which ancestor height a node's skip pointer should
// target given its own height. It reproduces Bitcoin Core's GetSkipHeight
// skip-list construction: an even height clears its lowest set bit, a short
// jump back, while an odd height clears the two lowest set bits of height-1
// and adds one, which for most odd heights jumps much further back.
func skipHeight(height int32) int32 {
	if height < 2 {
		return 0
	}

	// Odd heights: clear the two lowest set bits of height-1, then add
	// one. Even heights: clear the lowest set bit.
	if height&1 != 0 {
		return invertLowestOne(invertLowestOne(height-1)) + 1
	}
	return invertLowestOne(height)
}

// invertLowestOne clears the lowest set bit of n.
func invertLowestOne(n int32) int32 {
	return n & (n - 1)
}

// ancestor returns the unique ancestor of n at the given height by walking
// the skip-list: each step follows the skip pointer when it does not pass
// the target height, and otherwise takes a single parent step. n may be nil,
// denoting the empty chain; ancestor then returns nil for any height.
//
// This is the collaborator capability spec.md §6 calls ancestor_at.
func (n *BlockNode) ancestor(height int32) *BlockNode {
	if n == nil || height < 0 || height > n.height {
		return nil
	}

	walk := n
	for walk.height > height {
		if walk.skip != nil && walk.skip.height >= height {
			walk = walk.skip
		} else {
			walk = walk.parent
		}
	}

	return walk
}

// AncestorAt is the exported form of ancestor for callers outside this
// package, satisfying the ancestor_at contract of spec.md §6.
func (n *BlockNode) AncestorAt(height int32) *BlockNode {
	return n.ancestor(height)
}

// RelativeAncestor returns the ancestor distance blocks before n, or nil if
// distance exceeds n's height.
func (n *BlockNode) RelativeAncestor(distance int32) *BlockNode {
	if n == nil {
		return nil
	}
	return n.ancestor(n.height - distance)
}
