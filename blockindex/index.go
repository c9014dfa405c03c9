package blockindex

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/malandro0/bitcoin/blockchain"
	"golang.org/x/sync/errgroup"
)

// DefaultProcessTipTimeout is how long Connect waits for a single consumer
// to finish processing a new tip before giving up on it.
var DefaultProcessTipTimeout = 30 * time.Second

// ErrProcessTipTimeout is returned when a consumer takes longer than
// DefaultProcessTipTimeout to finish processing a tip.
var ErrProcessTipTimeout = errors.New("process tip timeout")

// ErrUnknownParent is returned by Connect when the named parent hash is not
// present in the index.
var ErrUnknownParent = errors.New("unknown parent block")

// TipConsumer is implemented by anything that wants to be notified each time
// the index's best tip advances: typically something that recomputes
// deployment states or block versions off the new tip.
type TipConsumer interface {
	// Name identifies the consumer for logging.
	Name() string

	// ProcessTip is called with the new best tip. It must return promptly;
	// a consumer that blocks past DefaultProcessTipTimeout is treated as
	// failed for that notification.
	ProcessTip(tip *blockchain.BlockNode) error
}

// BlockIndex is an in-memory index of BlockNode values, keyed by hash, that
// tracks a single best chain and fans out tip-advance notifications to
// registered consumers. It is the concrete "block index" collaborator the
// blockchain package's evaluator is designed to be handed.
type BlockIndex struct {
	mu sync.RWMutex

	nodes map[chainhash.Hash]*blockchain.BlockNode
	tip   *blockchain.BlockNode

	// consumerQueues mirrors the queue-of-queues fan-out shape used
	// elsewhere in this module's ancestry: consumers in the same queue
	// are notified sequentially, and queues are notified concurrently
	// with each other.
	consumerQueues map[uint32][]TipConsumer
	counter        atomic.Uint32
}

// NewBlockIndex returns an empty BlockIndex.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		nodes:          make(map[chainhash.Hash]*blockchain.BlockNode),
		consumerQueues: make(map[uint32][]TipConsumer),
	}
}

// RegisterQueue registers a list of consumers to be notified sequentially,
// as a single queue, on every tip advance. Independent queues are notified
// of the same tip concurrently.
func (idx *BlockIndex) RegisterQueue(consumers []TipConsumer) {
	qid := idx.counter.Add(1)

	idx.mu.Lock()
	idx.consumerQueues[qid] = append(idx.consumerQueues[qid], consumers...)
	idx.mu.Unlock()

	log.Infof("Registered queue=%d with %d tip consumers", qid,
		len(consumers))
}

// Connect adds a new node to the index as a child of parentHash and makes it
// the new best tip. parentHash may be the zero hash, denoting the genesis
// block. Connect does not itself validate proof of work, timestamps, or any
// other consensus rule beyond linking the node into the index; it is the
// caller's job to have already accepted the block.
func (idx *BlockIndex) Connect(hash chainhash.Hash, timestamp int64,
	version int32, parentHash chainhash.Hash) (*blockchain.BlockNode, error) {

	idx.mu.Lock()

	var parent *blockchain.BlockNode
	if parentHash != (chainhash.Hash{}) {
		var ok bool
		parent, ok = idx.nodes[parentHash]
		if !ok {
			idx.mu.Unlock()
			return nil, fmt.Errorf("%w: %v", ErrUnknownParent, parentHash)
		}
	}

	node := blockchain.NewBlockNode(hash, timestamp, version, parent)
	idx.nodes[hash] = node
	idx.tip = node
	idx.mu.Unlock()

	log.Debugf("Connected block %v at height %d", hash, node.Height())

	if err := idx.notifyQueues(node); err != nil {
		return node, err
	}

	return node, nil
}

// ConnectHeader is a convenience wrapper around Connect for callers that
// already have a decoded wire.BlockHeader: it pulls the hash, timestamp,
// version, and parent hash straight off the header instead of making the
// caller unpack them by hand.
func (idx *BlockIndex) ConnectHeader(header *wire.BlockHeader) (*blockchain.BlockNode, error) {
	return idx.Connect(
		header.BlockHash(),
		header.Timestamp.Unix(),
		header.Version,
		header.PrevBlock,
	)
}

// Tip returns the current best tip, or nil if the index is empty.
func (idx *BlockIndex) Tip() *blockchain.BlockNode {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tip
}

// LookupNode returns the node for hash, if present.
func (idx *BlockIndex) LookupNode(hash chainhash.Hash) (*blockchain.BlockNode, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	node, ok := idx.nodes[hash]
	return node, ok
}

// notifyQueues notifies each registered queue concurrently about the new
// tip. Consumers within a queue are notified in registration order.
func (idx *BlockIndex) notifyQueues(tip *blockchain.BlockNode) error {
	idx.mu.RLock()
	queues := make(map[uint32][]TipConsumer, len(idx.consumerQueues))
	for qid, consumers := range idx.consumerQueues {
		queues[qid] = consumers
	}
	idx.mu.RUnlock()

	var eg errgroup.Group
	for qid, consumers := range queues {
		qid, consumers := qid, consumers
		eg.Go(func() error {
			if err := dispatchSequential(tip, consumers); err != nil {
				return fmt.Errorf("queue=%d got err: %w", qid, err)
			}
			return nil
		})
	}

	return eg.Wait()
}

// dispatchSequential notifies consumers, in order, about tip, stopping at
// the first error.
func dispatchSequential(tip *blockchain.BlockNode, consumers []TipConsumer) error {
	for _, c := range consumers {
		if err := notifyAndWait(tip, c, DefaultProcessTipTimeout); err != nil {
			log.Errorf("Consumer[%s] failed to process tip: %v",
				c.Name(), err)
			return err
		}
	}
	return nil
}

// notifyAndWait calls c.ProcessTip in a goroutine and waits for it to
// return, bounding the wait by timeout.
func notifyAndWait(tip *blockchain.BlockNode, c TipConsumer,
	timeout time.Duration) error {

	errChan := make(chan error, 1)
	go func() {
		errChan <- c.ProcessTip(tip)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("%s got err in ProcessTip: %w", c.Name(), err)
		}
		return nil

	case <-time.After(timeout):
		return fmt.Errorf("consumer %s: %w", c.Name(), ErrProcessTipTimeout)
	}
}
