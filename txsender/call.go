package txsender

import (
	"context"

	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// EthCall runs tx read-only against block using the eth_call contract
// set (tuned for readable reverts) and returns its output bytes. A VM
// failure is translated into ExecutionRevertedError.
func (g *Gateway) EthCall(ctx context.Context, block BlockArgs, tx *rolluptypes.Transaction) ([]byte, error) {
	permit, err := g.limiter.Acquire(ctx)
	if err != nil {
		return nil, ErrServerShuttingDown
	}
	defer permit.Release()

	version, err := g.resolveProtocolVersion(ctx, block)
	if err != nil {
		return nil, err
	}
	contracts, err := g.contracts.Select(rolluptypes.PurposeEthCall, version)
	if err != nil {
		return nil, err
	}

	result, err := g.sandbox.Call(ctx, block, tx, contracts)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, &ExecutionRevertedError{Message: result.RevertMsg, ReturnData: result.ReturnData}
	}
	return result.ReturnData, nil
}
