package txsender

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

func newTestTx(addr common.Address, nonce uint32, gasLimit, maxFee, priorityFee uint64) *rolluptypes.Transaction {
	return rolluptypes.NewUnsignedTransaction(
		rolluptypes.CommonTxData{
			Type:             rolluptypes.L2Tx,
			InitiatorAddress: addr,
			Nonce:            nonce,
			Fee: rolluptypes.Fee{
				GasLimit:             uint256.NewInt(gasLimit),
				MaxFeePerGas:         uint256.NewInt(maxFee),
				MaxPriorityFeePerGas: uint256.NewInt(priorityFee),
				GasPerPubdataLimit:   uint256.NewInt(800),
			},
		},
		rolluptypes.ExecuteTxData{Value: uint256.NewInt(0)},
	)
}

func TestSubmitTxAdmitsAndInserts(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)

	master := &fakeMaster{result: InsertAdded}
	sandbox := &fakeSandbox{dryRunBytecodesOk: true}

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, newTestContracts())

	tx := newTestTx(addr, 0, 50_000, 100, 0)
	result, err := gw.SubmitTx(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != Added {
		t.Fatalf("got %s, want added", result)
	}
	if master.calls != 1 {
		t.Fatalf("got %d InsertTransactionL2 calls, want 1", master.calls)
	}
}

func TestSubmitTxRejectsNonceTooHigh(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)

	master := &fakeMaster{result: InsertAdded}
	sandbox := &fakeSandbox{dryRunBytecodesOk: true}

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, newTestContracts())

	tx := newTestTx(addr, 999, 50_000, 100, 0)
	_, err := gw.SubmitTx(context.Background(), tx)

	var tooHigh *NonceIsTooHighError
	if !errors.As(err, &tooHigh) {
		t.Fatalf("got %v, want *NonceIsTooHighError", err)
	}
	if sandbox.dryRunCalls != 0 || master.calls != 0 {
		t.Fatal("a nonce rejection must never reach the sandbox or storage")
	}
}

func TestSubmitTxRejectsPriorityAboveMaxFee(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	master := &fakeMaster{}
	sandbox := &fakeSandbox{}

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, newTestContracts())

	tx := newTestTx(addr, 0, 50_000, 100, 200)
	_, err := gw.SubmitTx(context.Background(), tx)
	if !errors.Is(err, ErrMaxPriorityFeeGreaterThanMaxFee) {
		t.Fatalf("got %v, want ErrMaxPriorityFeeGreaterThanMaxFee", err)
	}
}

func TestSubmitTxRejectsVmReject(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)

	master := &fakeMaster{result: InsertAdded}
	sandbox := &fakeSandbox{dryRunResult: ExecutionResult{Reverted: true, RevertMsg: "out of gas"}}

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, newTestContracts())

	tx := newTestTx(addr, 0, 50_000, 100, 0)
	_, err := gw.SubmitTx(context.Background(), tx)

	var reverted *ExecutionRevertedError
	if !errors.As(err, &reverted) {
		t.Fatalf("got %v, want *ExecutionRevertedError", err)
	}
	if master.calls != 0 {
		t.Fatal("a dry-run revert must never reach storage insertion")
	}
}

func TestSubmitTxRoutesThroughProxyWhenConfigured(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)

	sandbox := &fakeSandbox{dryRunBytecodesOk: true}
	proxy := &fakeProxy{}

	gw := NewGateway(testConfig(), replica, nil, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, proxy, newTestContracts())

	tx := newTestTx(addr, 0, 50_000, 100, 0)
	result, err := gw.SubmitTx(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != Proxied {
		t.Fatalf("got %s, want proxied", result)
	}
	if len(proxy.submitted) != 1 {
		t.Fatalf("got %d proxied submissions, want 1", len(proxy.submitted))
	}
}

// TestSubmitTxUsesEthCallContractsForDryRun exercises spec.md §3's
// purpose split: submit_tx's dry-run/validate path wants readable revert
// reasons (the eth_call variant), not the estimate_gas variant that is
// exclusive to EstimateFee's binary search.
func TestSubmitTxUsesEthCallContractsForDryRun(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)

	master := &fakeMaster{result: InsertAdded}
	sandbox := &fakeSandbox{dryRunBytecodesOk: true}

	suite := rolluptypes.NewSystemContractSuite()
	partition, err := rolluptypes.VersionToPartition(rolluptypes.LastPreBoojumVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	estimateGasSet := rolluptypes.SystemContractSet{Bootloader: []byte("estimate-gas-bootloader")}
	ethCallSet := rolluptypes.SystemContractSet{Bootloader: []byte("eth-call-bootloader")}
	suite.Load(rolluptypes.PurposeEstimateGas, partition, estimateGasSet)
	suite.Load(rolluptypes.PurposeEthCall, partition, ethCallSet)

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, suite)

	tx := newTestTx(addr, 0, 50_000, 100, 0)
	if _, err := gw.SubmitTx(context.Background(), tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(sandbox.dryRunContracts.Bootloader) != string(ethCallSet.Bootloader) {
		t.Fatalf("got dry-run contracts %q, want the eth_call set %q", sandbox.dryRunContracts.Bootloader, ethCallSet.Bootloader)
	}
}

func TestSubmitTxAlreadyExecutedTranslatesToNonceTooLow(t *testing.T) {
	addr := common.HexToAddress("0x1")
	replica := newFakeReplica()
	replica.hasCode[addr] = true
	replica.balances[addr] = uint256.NewInt(10_000_000)
	replica.sealedOk = true
	replica.nonces[addr] = 5

	master := &fakeMaster{result: InsertAlreadyExecuted}
	sandbox := &fakeSandbox{dryRunBytecodesOk: true}

	gw := NewGateway(testConfig(), replica, master, sandbox, NewVmConcurrencyLimiter(1), nil, &fakeOracle{}, nil, newTestContracts())

	// nonce == expected so validateTx itself lets the transaction through;
	// InsertAlreadyExecuted simulates the storage layer discovering, at
	// insert time, that the nonce was consumed by a race since validation.
	tx := newTestTx(addr, 5, 50_000, 100, 0)
	_, err := gw.SubmitTx(context.Background(), tx)

	var tooLow *NonceIsTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("got %v, want *NonceIsTooLowError", err)
	}
}
