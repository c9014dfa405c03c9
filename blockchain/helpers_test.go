package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// buildChain constructs n blocks on top of parent (which may be nil,
// meaning the first block built is the genesis block), assigning each block
// version via versionAt(height). Blocks are one second apart starting at
// timestamp 0.
func buildChain(parent *BlockNode, n int, versionAt func(height int32) int32) []*BlockNode {
	nodes := make([]*BlockNode, 0, n)

	cur := parent
	for i := 0; i < n; i++ {
		height := int32(0)
		if cur != nil {
			height = cur.Height() + 1
		}

		hash := chainhash.HashH([]byte(fmt.Sprintf("block-%d", nextSeq())))
		version := versionAt(height)

		node := NewBlockNode(hash, int64(height), version, cur)
		nodes = append(nodes, node)
		cur = node
	}

	return nodes
}

// seq is a monotonically increasing counter used to keep test block hashes
// unique across calls to buildChain within the same test binary.
var seq int

func nextSeq() int {
	seq++
	return seq
}

// signallingVersion returns a version word that carries the top pattern and
// signals for bit.
func signallingVersion(bit uint8) int32 {
	return int32(VersionBitsTopBits | (uint32(1) << bit))
}

// nonSignallingVersion returns a version word that carries the top pattern
// but signals nothing.
func nonSignallingVersion() int32 {
	return int32(VersionBitsTopBits)
}
