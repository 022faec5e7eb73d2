package reconciler

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// ActionType tags which of the three L1 lifecycle transitions a bogus
// confirmed eth_tx row records.
type ActionType uint8

const (
	ActionCommit ActionType = iota
	ActionProve
	ActionExecute
)

func (a ActionType) String() string {
	switch a {
	case ActionCommit:
		return "commit"
	case ActionProve:
		return "prove"
	case ActionExecute:
		return "execute"
	default:
		return "unknown"
	}
}

// Storage is the subset of the storage-layer contract the reconciler
// consumes: reading the newest locally-sealed batch and writing observed
// transitions atomically.
type Storage interface {
	// LastSealedBatch returns the newest L1 batch sealed locally
	// (get_newest_l1_batch_header in spec.md §6).
	LastSealedBatch(ctx context.Context) (rolluptypes.L1BatchNumber, error)

	// Begin opens one storage transaction for a polling cycle's writes.
	Begin(ctx context.Context) (StorageTx, error)
}

// StorageTx scopes one cycle's writes so they commit atomically.
type StorageTx interface {
	InsertBogusConfirmedEthTx(ctx context.Context, number rolluptypes.L1BatchNumber, action ActionType, hash common.Hash, happenedAt time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UpstreamClient is the RPC surface polled against the main node.
type UpstreamClient interface {
	// ResolveL1BatchToMiniblock returns the miniblock a batch resolves
	// to, or ok == false if upstream has not sealed it yet.
	ResolveL1BatchToMiniblock(ctx context.Context, batch rolluptypes.L1BatchNumber) (miniblock rolluptypes.MiniblockNumber, ok bool, err error)

	// BlockDetails returns upstream's view of a miniblock's commit/
	// prove/execute transitions, or ok == false if upstream has no
	// record of it (an inconsistency once a batch has resolved to it).
	BlockDetails(ctx context.Context, miniblock rolluptypes.MiniblockNumber) (details rolluptypes.BlockDetails, ok bool, err error)
}
