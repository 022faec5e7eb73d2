// Package txsender implements the transaction admission gateway of an L2
// rollup node: validation, sandboxed dry-run and validation, sequencer
// admissibility (seal), and routing into the local mempool or upstream
// via a proxy. It also exposes the fee estimator and the read-only call
// and gas_price endpoints.
package txsender

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// SubmitResult is the closed set of non-error outcomes submit_tx can
// return to a caller, kept distinct (rather than collapsed into a single
// "ok" value) since clients discriminate on them, per the original's
// L2TxSubmissionResult enum.
type SubmitResult uint8

const (
	Added SubmitResult = iota
	Replaced
	Proxied
)

func (r SubmitResult) String() string {
	switch r {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Proxied:
		return "proxied"
	default:
		return "unknown"
	}
}

// Gateway is a small, cheaply-copyable handle onto a shared, immutable
// gatewayInner — the Go equivalent of the original's reference-counted
// inner struct (spec.md §9): all request-time mutation lives in
// collaborators (storage, the limiter, the proxy cache), never here.
type Gateway struct {
	*gatewayInner
}

type gatewayInner struct {
	cfg *Config

	replica ReplicaStorage
	master  MasterStorage // nil when a proxy is configured

	sandbox Sandbox
	limiter *VmConcurrencyLimiter

	seal   SealPredicate
	oracle GasPriceOracle

	proxy      UpstreamProxy // nil when this node sequences locally
	proxyCache *proxyTxCache

	contracts *rolluptypes.SystemContractSuite
}

// NewGateway wires a Gateway from its collaborators. Exactly one of
// master or proxy should be non-nil: master for a sequencing node,
// proxy for an external node that forwards submissions upstream.
func NewGateway(
	cfg *Config,
	replica ReplicaStorage,
	master MasterStorage,
	sandbox Sandbox,
	limiter *VmConcurrencyLimiter,
	seal SealPredicate,
	oracle GasPriceOracle,
	proxy UpstreamProxy,
	contracts *rolluptypes.SystemContractSuite,
) *Gateway {
	if seal == nil {
		seal = NoOpSealPredicate
	}
	return &Gateway{&gatewayInner{
		cfg:        cfg,
		replica:    replica,
		master:     master,
		sandbox:    sandbox,
		limiter:    limiter,
		seal:       seal,
		oracle:     oracle,
		proxy:      proxy,
		proxyCache: newProxyTxCache(),
		contracts:  contracts,
	}}
}

// SubmitTx validates tx, dry-runs and validates it in the sandbox, checks
// sequencer admissibility, and either inserts it locally or forwards it
// upstream. It emits latency observations at the five stages in order and
// increments the processed-tx counter tagged with the outcome.
func (g *Gateway) SubmitTx(ctx context.Context, tx *rolluptypes.Transaction) (SubmitResult, error) {
	result, err := g.submitTx(ctx, tx)
	if err != nil {
		recordOutcome(OutcomeRejected)
		return 0, err
	}
	switch result {
	case Added:
		recordOutcome(OutcomeAdded)
	case Replaced:
		recordOutcome(OutcomeReplaced)
	case Proxied:
		recordOutcome(OutcomeProxied)
	}
	return result, nil
}

func (g *Gateway) submitTx(ctx context.Context, tx *rolluptypes.Transaction) (SubmitResult, error) {
	start := time.Now()
	if err := g.validateTx(ctx, tx); err != nil {
		recordStage(StageValidate, start)
		return 0, err
	}
	recordStage(StageValidate, start)

	permitWaitStart := time.Now()
	permit, err := g.limiter.Acquire(ctx)
	recordPermitWait(permitWaitStart)
	if err != nil {
		return 0, ErrServerShuttingDown
	}
	defer permit.Release()

	block, err := g.replica.PendingBlock(ctx)
	if err != nil {
		return 0, err
	}
	version, err := g.resolveProtocolVersion(ctx, block)
	if err != nil {
		return 0, err
	}
	// submit_tx's dry-run/validate path shares shared_args() with eth_call
	// (both want readable revert reasons), not shared_args_for_gas_estimate()
	// which is exclusive to the fee estimator's binary search.
	contracts, err := g.contracts.Select(rolluptypes.PurposeEthCall, version)
	if err != nil {
		return 0, err
	}

	start = time.Now()
	execResult, txMetrics, bytecodesOk, err := g.sandbox.DryRun(ctx, block, tx, contracts)
	recordStage(StageDryRun, start)
	if err != nil {
		return 0, err
	}
	if err := classifyVMFailure(execResult.Reverted, execResult.RevertMsg, execResult.ReturnData); err != nil {
		return 0, err
	}

	start = time.Now()
	if err := g.sandbox.ValidateInSandbox(ctx, block, tx, g.cfg.ValidationComputationalGasLimit, contracts); err != nil {
		recordStage(StageVerifyExecute, start)
		return 0, err
	}
	if !bytecodesOk {
		recordStage(StageVerifyExecute, start)
		return 0, ErrFailedToPublishCompressedBytecodes
	}
	recordStage(StageVerifyExecute, start)

	if reason, unexecutable := g.seal.FindUnexecutableReason(SealData{Tx: tx, Metrics: txMetrics, ProtocolVersion: version}); unexecutable {
		return 0, &UnexecutableError{Reason: reason}
	}

	if g.proxy != nil {
		return g.routeViaProxy(ctx, tx)
	}
	return g.routeViaStorage(ctx, tx, txMetrics)
}

func (g *Gateway) routeViaProxy(ctx context.Context, tx *rolluptypes.Transaction) (SubmitResult, error) {
	start := time.Now()
	defer func() { recordStage(StageTxProxy, start) }()

	hash, ok := tx.Hash()
	if !ok {
		hash = common.Hash{}
	}
	g.proxyCache.add(hash, tx)
	defer g.proxyCache.forget(hash)

	if err := g.proxy.SubmitTx(ctx, tx); err != nil {
		return 0, err
	}
	return Proxied, nil
}

func (g *Gateway) routeViaStorage(ctx context.Context, tx *rolluptypes.Transaction, txMetrics rolluptypes.ExecutionMetrics) (SubmitResult, error) {
	start := time.Now()
	defer func() { recordStage(StageDbInsert, start) }()

	res, err := g.master.InsertTransactionL2(ctx, tx, txMetrics)
	if err != nil {
		return 0, err
	}

	switch res {
	case InsertAdded:
		return Added, nil
	case InsertReplaced:
		return Replaced, nil
	case InsertAlreadyExecuted:
		expected, maxAllowed, nonceErr := g.expectedNonceWindow(ctx, tx.Common.InitiatorAddress)
		if nonceErr != nil {
			log.Warn("failed to resolve nonce window while classifying AlreadyExecuted", "err", nonceErr)
		}
		return 0, &NonceIsTooLowError{Expected: expected, Max: maxAllowed, Given: tx.Common.Nonce}
	case InsertDuplicate:
		hash, _ := tx.Hash()
		return 0, &IncorrectTxError{Reason: DuplicationReason{Hash: hash}}
	default:
		return 0, &IncorrectTxError{Reason: DuplicationReason{}}
	}
}
