package txsender

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// BlockArgs is a resolver handle for "the block against which a sandbox
// run should read state". It is produced by ReplicaStorage.PendingBlock
// and is deliberately opaque to the gateway beyond the miniblock it
// resolves to; the protocol version active at that miniblock is read
// separately (see gatewayInner.resolveProtocolVersion) so its
// last-pre-boojum default lives in the gateway, not in storage.
type BlockArgs struct {
	Miniblock rolluptypes.MiniblockNumber
}

// StorageKey addresses one 32-byte slot of one contract's storage.
type StorageKey struct {
	Address common.Address
	Key     common.Hash
}

// ReplicaStorage is the read-only half of the storage-layer contract
// (spec.md §6). The gateway takes short-lived handles and releases them
// before long sandbox work: in particular PendingBlock is called and its
// result copied before dry-run begins, rather than holding a storage
// handle across the sandbox call.
type ReplicaStorage interface {
	// SealedMiniblockNumber returns the latest sealed miniblock, or ok ==
	// false if no miniblocks exist yet.
	SealedMiniblockNumber(ctx context.Context) (number rolluptypes.MiniblockNumber, ok bool, err error)

	// ProjectedFirstMiniblock is used as the nonce baseline's predecessor
	// when no miniblocks exist yet.
	ProjectedFirstMiniblock(ctx context.Context) (uint32, error)

	// HistoricalNonce returns the initiator's nonce as of the given
	// miniblock.
	HistoricalNonce(ctx context.Context, addr common.Address, miniblock rolluptypes.MiniblockNumber) (uint64, error)

	// Balance returns the initiator's ETH balance as of the pending
	// block.
	Balance(ctx context.Context, addr common.Address) (balance *uint256.Int, err error)

	// HasCode reports whether the address has deployed contract code,
	// used by estimate_fee's early transfer check.
	HasCode(ctx context.Context, addr common.Address) (bool, error)

	// StorageValue reads one slot, defaulting to the zero hash on a miss.
	StorageValue(ctx context.Context, key StorageKey) (common.Hash, error)

	// MiniblockProtocolVersion resolves the protocol version active at a
	// miniblock, or ok == false if unknown.
	MiniblockProtocolVersion(ctx context.Context, miniblock rolluptypes.MiniblockNumber) (version rolluptypes.ProtocolVersion, ok bool, err error)

	// PendingBlock resolves BlockArgs for "the block a sandbox run
	// should read state against".
	PendingBlock(ctx context.Context) (BlockArgs, error)
}

// InsertTxResult is the DAL's outcome for insert_transaction_l2, before
// gateway translation into a SubmitResult or SubmitTxError.
type InsertTxResult uint8

const (
	InsertAdded InsertTxResult = iota
	InsertReplaced
	InsertAlreadyExecuted
	InsertDuplicate
)

// MasterStorage is the read-write half of the storage-layer contract,
// required iff no proxy is configured.
type MasterStorage interface {
	InsertTransactionL2(ctx context.Context, tx *rolluptypes.Transaction, metrics rolluptypes.ExecutionMetrics) (InsertTxResult, error)
}

// ExecutionResult is the sandbox's verdict for one run: either it
// succeeded, or it failed with a revert reason and raw return data.
type ExecutionResult struct {
	Reverted   bool
	RevertMsg  string
	ReturnData []byte
}

func (r ExecutionResult) Failed() bool { return r.Reverted }

// Sandbox is the read-only VM clone used for dry-run, validation,
// estimation and call. Its own implementation (the VM/bytecode
// interpreter) is out of scope; only this boundary is consumed. Two
// variants are expected in practice — Real and Mock — selected by
// whichever concrete type satisfies this interface, per the teacher's
// preference for a small tagged capability set over an open hierarchy.
type Sandbox interface {
	// DryRun executes tx with "validation" execution args against block,
	// returning the execution result, per-execution metrics, and whether
	// any factory-dependency bytecodes it carried were published
	// successfully.
	DryRun(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction, contracts rolluptypes.SystemContractSet) (ExecutionResult, rolluptypes.ExecutionMetrics, bool, error)

	// ValidateInSandbox re-runs tx's account validation step bounded by
	// computationalGasLimit.
	ValidateInSandbox(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction, computationalGasLimit uint64, contracts rolluptypes.SystemContractSet) error

	// Execute runs tx for the fee estimator's binary search or its final
	// confirmation step.
	Execute(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction, contracts rolluptypes.SystemContractSet) (ExecutionResult, error)

	// Call runs tx read-only for eth_call, tuned for readable reverts.
	Call(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction, contracts rolluptypes.SystemContractSet) (ExecutionResult, error)
}

// SealData is what find_unexecutable_reason reads to decide whether a
// transaction still fits in the currently open batch.
type SealData struct {
	Tx              *rolluptypes.Transaction
	Metrics         rolluptypes.ExecutionMetrics
	ProtocolVersion rolluptypes.ProtocolVersion
}

// SealPredicate decides sequencer-admissibility. Two variants are
// expected: Configured(pred) wraps a real rule set, NoOp always admits —
// selected via NoOpSealPredicate / a caller-supplied function, rather
// than an open class hierarchy.
type SealPredicate interface {
	FindUnexecutableReason(data SealData) (reason string, unexecutable bool)
}

// SealPredicateFunc adapts a plain function to SealPredicate, the same
// shape as the Configured(pred) variant in spec.md §9.
type SealPredicateFunc func(data SealData) (string, bool)

func (f SealPredicateFunc) FindUnexecutableReason(data SealData) (string, bool) { return f(data) }

// NoOpSealPredicate always admits; used by nodes running without a seal
// predicate wired in (e.g. standalone estimation service).
var NoOpSealPredicate SealPredicate = SealPredicateFunc(func(SealData) (string, bool) { return "", false })

// GasPriceOracle is the L1 gas-price oracle consumed at the gateway's
// boundary; its own implementation is out of scope.
type GasPriceOracle interface {
	EstimateEffectiveGasPrice(ctx context.Context) (uint64, error)
}

// UpstreamProxy is the upstream RPC surface used in proxy mode: forward a
// transaction to the sequencer. The local forwarding cache is kept by the
// gateway (proxyTxCache), which forgets the entry once the round trip
// completes.
type UpstreamProxy interface {
	SubmitTx(ctx context.Context, tx *rolluptypes.Transaction) error
}
