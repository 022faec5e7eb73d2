package txsender

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// resolveProtocolVersion reads a block's protocol version, defaulting to
// the last pre-boojum partition if the storage layer has none recorded
// for it yet (spec.md §4.1, estimate_fee step 1).
func (g *gatewayInner) resolveProtocolVersion(ctx context.Context, block BlockArgs) (rolluptypes.ProtocolVersion, error) {
	version, ok, err := g.replica.MiniblockProtocolVersion(ctx, block.Miniblock)
	if err != nil {
		return 0, err
	}
	if !ok {
		return rolluptypes.LastPreBoojumVersion, nil
	}
	return version, nil
}

// scaledL1GasPrice resolves the oracle's effective L1 gas price, scales it
// by the configured factor, then adjusts it so that the block's required
// gas_per_pubdata does not exceed the transaction's declared
// gas_per_pubdata_limit. Shared verbatim between estimate_fee and
// gas_price, per spec.md §4.1.
func (g *gatewayInner) scaledL1GasPrice(ctx context.Context, gasPerPubdataLimit *uint256.Int, version rolluptypes.ProtocolVersion) (uint64, error) {
	raw, err := g.oracle.EstimateEffectiveGasPrice(ctx)
	if err != nil {
		return 0, err
	}
	scaled := uint64(float64(raw) * g.cfg.GasPriceScaleFactor)

	requiredGasPerPubdata := gasPerPubdataByteForL1Price(scaled, g.cfg.FairL2GasPrice.Uint64(), version)
	if gasPerPubdataLimit != nil && gasPerPubdataLimit.Sign() > 0 {
		limit := gasPerPubdataLimit.Uint64()
		for requiredGasPerPubdata > limit && scaled > 0 {
			scaled--
			requiredGasPerPubdata = gasPerPubdataByteForL1Price(scaled, g.cfg.FairL2GasPrice.Uint64(), version)
		}
	}
	return scaled, nil
}

// deriveBaseFeeAndGasPerPubdata computes (base_fee, gas_per_pubdata_byte)
// from (l1_gas_price, fair_l2_gas_price, protocol_version). Versions at or
// after post_boojum use the fair L2 price directly as the base fee (the
// L1 cost is carried entirely in gas_per_pubdata_byte); earlier partitions
// blend a fraction of the L1 price into the base fee, matching the
// pre-boojum fee model's coarser pubdata accounting.
func deriveBaseFeeAndGasPerPubdata(l1GasPrice, fairL2GasPrice uint64, version rolluptypes.ProtocolVersion) (baseFee uint64, gasPerPubdataByte uint64) {
	partition, err := rolluptypes.VersionToPartition(version)
	if err != nil {
		partition = rolluptypes.PartitionPostAllowlistRemoval
	}

	gasPerPubdataByte = gasPerPubdataByteForL1Price(l1GasPrice, fairL2GasPrice, version)

	switch partition {
	case rolluptypes.PartitionPreVirtualBlocks, rolluptypes.PartitionPostVirtualBlocks, rolluptypes.PartitionPostVirtualBlocksFinishUpgradeFix:
		baseFee = fairL2GasPrice + l1GasPrice/1000
	default:
		baseFee = fairL2GasPrice
	}
	return baseFee, gasPerPubdataByte
}

// gasPerPubdataByteForL1Price is the pubdata-to-gas conversion rate at the
// current L1/L2 price pair: how many gas units one byte of L1-posted data
// costs, expressed in L2 gas terms.
func gasPerPubdataByteForL1Price(l1GasPrice, fairL2GasPrice uint64, _ rolluptypes.ProtocolVersion) uint64 {
	if fairL2GasPrice == 0 {
		return 0
	}
	pricePerPubdataBytePerL1Gas := uint64(17) // one non-zero EVM calldata byte costs 16-17 gas on L1
	return (l1GasPrice * pricePerPubdataBytePerL1Gas) / fairL2GasPrice
}
