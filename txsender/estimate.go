package txsender

import (
	"context"
	"math"
	"time"

	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// defaultL2Signature is installed on an L2 transaction with an empty
// signature before estimation, matching spec.md §4.1 step 6: the
// estimator needs something syntactically valid for the sandbox to
// decode, not a real signature.
var defaultL2Signature = make([]byte, 65)

// EstimateFee binary-searches the minimum tx_body_gas_limit under which
// one sandbox execution of tx returns a non-failing VM result, per
// spec.md §4.1. The VM permit is held for the entire search so iteration
// cost is bounded by one permit, not one per probe.
func (g *Gateway) EstimateFee(ctx context.Context, tx *rolluptypes.Transaction, scaleFactor float64, acceptableOverestimation uint64) (rolluptypes.Fee, error) {
	block, err := g.replica.PendingBlock(ctx)
	if err != nil {
		return rolluptypes.Fee{}, err
	}
	version, err := g.resolveProtocolVersion(ctx, block)
	if err != nil {
		return rolluptypes.Fee{}, err
	}

	l1GasPrice, err := g.scaledL1GasPrice(ctx, tx.Common.Fee.GasPerPubdataLimit, version)
	if err != nil {
		return rolluptypes.Fee{}, err
	}
	baseFee, gasPerPubdataByte := deriveBaseFeeAndGasPerPubdata(l1GasPrice, g.cfg.FairL2GasPrice.Uint64(), version)

	work := tx.Clone()
	baseFeeU256 := uint256.NewInt(baseFee)
	work.Common.Fee.MaxFeePerGas = baseFeeU256
	if work.Common.Type != rolluptypes.L1Tx && work.Common.Type != rolluptypes.ProtocolUpgradeTx {
		work.Common.Fee.MaxPriorityFeePerGas = new(uint256.Int).Set(baseFeeU256)
	}

	if work.Common.Type == rolluptypes.L2Tx {
		if ok, err := g.replica.HasCode(ctx, work.Common.InitiatorAddress); err == nil && !ok {
			balance, berr := g.replica.Balance(ctx, work.Common.InitiatorAddress)
			if berr == nil && balance.Lt(work.Execute.Value) {
				return rolluptypes.Fee{}, ErrInsufficientFundsForTransfer
			}
		} else if err != nil {
			return rolluptypes.Fee{}, err
		}

		if len(work.Common.Signature) == 0 {
			work.Common.Signature = defaultL2Signature
		}
		work.Common.Fee.GasPerPubdataLimit = uint256.NewInt(g.cfg.MaxGasPerPubdataByte)
	}

	permitStart := time.Now()
	permit, err := g.limiter.Acquire(ctx)
	recordPermitWait(permitStart)
	if err != nil {
		return rolluptypes.Fee{}, ErrServerShuttingDown
	}
	defer permit.Release()

	var gasForBytecodesPubdata uint64
	if work.Common.Type != rolluptypes.L1Tx {
		pubdataForDeps := pubdataForFactoryDeps(work.Execute.FactoryDeps)
		if pubdataForDeps > g.cfg.MaxPubdataPerBlock {
			return rolluptypes.Fee{}, &UnexecutableError{Reason: "factory dependencies exceed max pubdata per block"}
		}
		gasForBytecodesPubdata = pubdataForDeps * gasPerPubdataByte
	}

	contracts, err := g.contracts.Select(rolluptypes.PurposeEstimateGas, version)
	if err != nil {
		return rolluptypes.Fee{}, err
	}

	lower, upper := uint64(0), g.cfg.MaxL2TxGasLimit
	iterations := int64(0)
	for lower+acceptableOverestimation < upper {
		iterations++
		mid := (lower + upper) / 2 // left-biased: floor((l+u)/2)

		ok, _, err := g.tryExecute(ctx, block, work, gasForBytecodesPubdata, mid, gasPerPubdataByte, contracts)
		if err != nil {
			return rolluptypes.Fee{}, err
		}
		if !ok {
			lower = mid + 1
		} else {
			upper = mid
		}
	}
	recordEstimateIterations(iterations)

	txBodyGasLimit := uint64(float64(upper) * scaleFactor)
	if txBodyGasLimit > g.cfg.MaxL2TxGasLimit {
		txBodyGasLimit = g.cfg.MaxL2TxGasLimit
	}

	suggestedGasLimit := txBodyGasLimit + gasForBytecodesPubdata
	ok, result, err := g.tryExecute(ctx, block, work, gasForBytecodesPubdata, txBodyGasLimit, gasPerPubdataByte, contracts)
	if err != nil {
		return rolluptypes.Fee{}, err
	}
	if !ok {
		return rolluptypes.Fee{}, &ExecutionRevertedError{Message: result.RevertMsg, ReturnData: result.ReturnData}
	}

	ohead := overhead(suggestedGasLimit, gasPerPubdataByte, work.EncodedLen(), rollupTxFormatCurrent, 0)
	fullGasLimit, err := addGasLimitComponents(txBodyGasLimit, gasForBytecodesPubdata, ohead)
	if err != nil {
		return rolluptypes.Fee{}, err
	}

	if _, unexecutable := g.seal.FindUnexecutableReason(SealData{Tx: work, ProtocolVersion: version}); unexecutable {
		return rolluptypes.Fee{}, &UnexecutableError{Reason: "fee-estimated transaction no longer admissible"}
	}

	return rolluptypes.Fee{
		MaxFeePerGas:         baseFeeU256,
		MaxPriorityFeePerGas: uint256.NewInt(0),
		GasLimit:             uint256.NewInt(fullGasLimit),
		GasPerPubdataLimit:   uint256.NewInt(gasPerPubdataByte),
	}, nil
}

// tryExecute runs one probe of the binary search at try_gas_limit =
// gasForBytecodesPubdata + bodyGasLimit, after adding the bootloader
// overhead to the common-data gas_limit (and, for L1/Upgrade variants,
// recomputing to_mint — left as a no-op placeholder since to_mint pricing
// is owned by the L1 deposit path, out of this component's scope).
func (g *gatewayInner) tryExecute(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction, gasForBytecodesPubdata, bodyGasLimit, gasPerPubdataByte uint64, contracts rolluptypes.SystemContractSet) (bool, ExecutionResult, error) {
	tryGasLimit := gasForBytecodesPubdata + bodyGasLimit
	probe := tx.Clone()
	ohead := overhead(tryGasLimit, gasPerPubdataByte, tx.EncodedLen(), rollupTxFormatCurrent, 0)
	probe.Common.Fee.GasLimit = uint256.NewInt(tryGasLimit + ohead)

	result, err := g.sandbox.Execute(ctx, block, probe, contracts)
	if err != nil {
		return false, result, err
	}
	return !result.Failed(), result, nil
}

// addGasLimitComponents sums the body limit, bytecode-publishing gas and
// bootloader overhead into the gas_limit a caller is quoted, rejecting the
// result if it can't fit in the uint32 the wire format carries it in
// (either because it wrapped around uint64, or because it legitimately
// exceeds the range).
func addGasLimitComponents(txBodyGasLimit, gasForBytecodesPubdata, overhead uint64) (uint64, error) {
	fullGasLimit := txBodyGasLimit + gasForBytecodesPubdata + overhead
	if fullGasLimit < txBodyGasLimit {
		return 0, &ExecutionRevertedError{Message: "exceeds block gas limit"}
	}
	if fullGasLimit > math.MaxUint32 {
		return 0, &ExecutionRevertedError{Message: "exceeds block gas limit"}
	}
	return fullGasLimit, nil
}

// pubdataForFactoryDeps sums the bytes of every factory dependency, the
// quantity gas_for_bytecodes_pubdata is priced against.
func pubdataForFactoryDeps(deps [][]byte) uint64 {
	var total uint64
	for _, dep := range deps {
		total += uint64(len(dep))
	}
	return total
}

// GasPrice returns the base_fee a caller would pay right now: the same
// l1_gas_price scaling and derive_base_fee_and_gas_per_pubdata path
// estimate_fee uses, against the pending block's resolved protocol
// version.
func (g *Gateway) GasPrice(ctx context.Context) (uint64, error) {
	block, err := g.replica.PendingBlock(ctx)
	if err != nil {
		return 0, err
	}
	version, err := g.resolveProtocolVersion(ctx, block)
	if err != nil {
		return 0, err
	}
	l1GasPrice, err := g.scaledL1GasPrice(ctx, nil, version)
	if err != nil {
		return 0, err
	}
	baseFee, _ := deriveBaseFeeAndGasPerPubdata(l1GasPrice, g.cfg.FairL2GasPrice.Uint64(), version)
	return baseFee, nil
}
