package txsender

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// validateTx runs the fast, storage-read-only admission checks of
// spec.md §4.1 step 1, in the order listed there. Each check returns on
// first failure.
func (g *gatewayInner) validateTx(ctx context.Context, tx *rolluptypes.Transaction) error {
	fee := tx.Common.Fee

	if fee.GasLimit.Uint64() > math.MaxUint32 || fee.GasPerPubdataLimit.Uint64() > math.MaxUint32 {
		return ErrGasLimitIsTooBig
	}
	if fee.GasLimit.Uint64() > g.cfg.MaxAllowedL2TxGasLimit {
		return ErrGasLimitIsTooBig
	}
	if fee.MaxFeePerGas.Lt(g.cfg.FairL2GasPrice) {
		return ErrMaxFeePerGasTooLow
	}
	if fee.MaxPriorityFeePerGas.Gt(fee.MaxFeePerGas) {
		return ErrMaxPriorityFeeGreaterThanMaxFee
	}
	if len(tx.Execute.FactoryDeps) > g.cfg.MaxNewFactoryDeps {
		return &TooManyFactoryDependenciesError{Count: len(tx.Execute.FactoryDeps), Max: g.cfg.MaxNewFactoryDeps}
	}
	if fee.GasLimit.Uint64() < IntrinsicGasForL2Tx() {
		return ErrIntrinsicGas
	}

	expected, maxAllowed, err := g.expectedNonceWindow(ctx, tx.Common.InitiatorAddress)
	if err != nil {
		return err
	}
	if tx.Common.Nonce < expected {
		return &NonceIsTooLowError{Expected: expected, Max: maxAllowed, Given: tx.Common.Nonce}
	}
	if tx.Common.Nonce > maxAllowed {
		return &NonceIsTooHighError{Expected: expected, Max: maxAllowed, Given: tx.Common.Nonce}
	}

	if tx.Common.Paymaster == nil {
		if err := g.validateBalance(ctx, tx); err != nil {
			return err
		}
	}

	return nil
}

// expectedNonceWindow fetches the initiator's expected nonce at the
// latest sealed miniblock. When no miniblocks exist yet, the baseline is
// projected_first_miniblock - 1 (saturating at zero; deliberate for
// genesis, per spec.md §9).
func (g *gatewayInner) expectedNonceWindow(ctx context.Context, addr common.Address) (expected, maxAllowed uint32, err error) {
	miniblock, ok, err := g.replica.SealedMiniblockNumber(ctx)
	if err != nil {
		return 0, 0, err
	}

	var nonce uint64
	if ok {
		nonce, err = g.replica.HistoricalNonce(ctx, addr, miniblock)
		if err != nil {
			return 0, 0, err
		}
	} else {
		projected, err := g.replica.ProjectedFirstMiniblock(ctx)
		if err != nil {
			return 0, 0, err
		}
		if projected > 0 {
			nonce = uint64(projected - 1)
		}
	}

	expected = uint32(nonce)
	maxAllowed = expected + g.cfg.MaxNonceAhead
	return expected, maxAllowed, nil
}

// validateBalance enforces the no-paymaster balance check of spec.md §4.1
// step 1: the initiator must be able to cover gas_limit * effective price
// plus the transferred value.
func (g *gatewayInner) validateBalance(ctx context.Context, tx *rolluptypes.Transaction) error {
	fee := tx.Common.Fee

	effectiveGasPrice := new(uint256.Int).Add(g.cfg.FairL2GasPrice, fee.MaxPriorityFeePerGas)
	if fee.MaxFeePerGas.Lt(effectiveGasPrice) {
		effectiveGasPrice = fee.MaxFeePerGas
	}

	maxFee := new(uint256.Int).Mul(fee.GasLimit, effectiveGasPrice)
	maxCost := new(uint256.Int).Add(maxFee, tx.Execute.Value)

	balance, err := g.replica.Balance(ctx, tx.Common.InitiatorAddress)
	if err != nil {
		return err
	}

	if balance.Lt(maxCost) {
		return &NotEnoughBalanceForFeeValueError{Balance: balance, MaxFee: maxFee, Value: tx.Execute.Value}
	}
	return nil
}
