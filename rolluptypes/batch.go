package rolluptypes

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// L1BatchNumber is the coarse-grained counter committed, proven and
// executed on the settlement layer.
type L1BatchNumber uint32

// MiniblockNumber is the fine-grained L2 block counter.
type MiniblockNumber uint32

// BatchStatusChange records one commit/prove/execute transition observed
// on L1 for a given batch.
type BatchStatusChange struct {
	Number     L1BatchNumber
	L1TxHash   common.Hash
	HappenedAt time.Time
}

// StatusChanges groups the three kinds of transition a single reconciler
// cycle may discover. Each slice is contiguous and strictly ascending by
// batch number.
type StatusChanges struct {
	Commit  []BatchStatusChange
	Prove   []BatchStatusChange
	Execute []BatchStatusChange
}

func (c StatusChanges) IsEmpty() bool {
	return len(c.Commit) == 0 && len(c.Prove) == 0 && len(c.Execute) == 0
}

// BlockDetails mirrors the subset of upstream block metadata the
// reconciler needs to detect a commit/prove/execute transition for the
// miniblock that resolves a given L1 batch.
type BlockDetails struct {
	L1BatchNumber L1BatchNumber

	CommitTxHash  *common.Hash
	CommittedAt   *time.Time
	ProveTxHash   *common.Hash
	ProvenAt      *time.Time
	ExecuteTxHash *common.Hash
	ExecutedAt    *time.Time
}
