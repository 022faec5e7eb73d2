package txsender

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// fakeReplica is a hand-written ReplicaStorage double, in the teacher's
// style of plain structs satisfying interfaces rather than a generated
// mock.
type fakeReplica struct {
	sealedMiniblock rolluptypes.MiniblockNumber
	sealedOk        bool
	projectedFirst  uint32

	nonces   map[common.Address]uint64
	balances map[common.Address]*uint256.Int
	hasCode  map[common.Address]bool
	values   map[StorageKey]common.Hash

	protocolVersion   rolluptypes.ProtocolVersion
	protocolVersionOk bool

	block BlockArgs
}

func newFakeReplica() *fakeReplica {
	return &fakeReplica{
		nonces:   make(map[common.Address]uint64),
		balances: make(map[common.Address]*uint256.Int),
		hasCode:  make(map[common.Address]bool),
		values:   make(map[StorageKey]common.Hash),
	}
}

func (r *fakeReplica) SealedMiniblockNumber(context.Context) (rolluptypes.MiniblockNumber, bool, error) {
	return r.sealedMiniblock, r.sealedOk, nil
}

func (r *fakeReplica) ProjectedFirstMiniblock(context.Context) (uint32, error) {
	return r.projectedFirst, nil
}

func (r *fakeReplica) HistoricalNonce(_ context.Context, addr common.Address, _ rolluptypes.MiniblockNumber) (uint64, error) {
	return r.nonces[addr], nil
}

func (r *fakeReplica) Balance(_ context.Context, addr common.Address) (*uint256.Int, error) {
	if b, ok := r.balances[addr]; ok {
		return b, nil
	}
	return uint256.NewInt(0), nil
}

func (r *fakeReplica) HasCode(_ context.Context, addr common.Address) (bool, error) {
	return r.hasCode[addr], nil
}

func (r *fakeReplica) StorageValue(_ context.Context, key StorageKey) (common.Hash, error) {
	return r.values[key], nil
}

func (r *fakeReplica) MiniblockProtocolVersion(context.Context, rolluptypes.MiniblockNumber) (rolluptypes.ProtocolVersion, bool, error) {
	return r.protocolVersion, r.protocolVersionOk, nil
}

func (r *fakeReplica) PendingBlock(context.Context) (BlockArgs, error) {
	return r.block, nil
}

// fakeMaster is a hand-written MasterStorage double.
type fakeMaster struct {
	result InsertTxResult
	err    error
	calls  int
}

func (m *fakeMaster) InsertTransactionL2(context.Context, *rolluptypes.Transaction, rolluptypes.ExecutionMetrics) (InsertTxResult, error) {
	m.calls++
	return m.result, m.err
}

// fakeSandbox is a hand-written Sandbox double. executeFn, when set,
// overrides the default always-succeeds behavior of Execute/Call.
type fakeSandbox struct {
	dryRunResult      ExecutionResult
	dryRunMetrics     rolluptypes.ExecutionMetrics
	dryRunBytecodesOk bool
	dryRunErr         error

	validateErr error

	executeFn func(tx *rolluptypes.Transaction) (ExecutionResult, error)

	callResult ExecutionResult
	callErr    error

	dryRunCalls, validateCalls, executeCalls, callCalls int
	dryRunContracts                                     rolluptypes.SystemContractSet
}

func (s *fakeSandbox) DryRun(_ context.Context, _ BlockArgs, _ *rolluptypes.Transaction, contracts rolluptypes.SystemContractSet) (ExecutionResult, rolluptypes.ExecutionMetrics, bool, error) {
	s.dryRunCalls++
	s.dryRunContracts = contracts
	return s.dryRunResult, s.dryRunMetrics, s.dryRunBytecodesOk, s.dryRunErr
}

func (s *fakeSandbox) ValidateInSandbox(context.Context, BlockArgs, *rolluptypes.Transaction, uint64, rolluptypes.SystemContractSet) error {
	s.validateCalls++
	return s.validateErr
}

func (s *fakeSandbox) Execute(_ context.Context, _ BlockArgs, tx *rolluptypes.Transaction, _ rolluptypes.SystemContractSet) (ExecutionResult, error) {
	s.executeCalls++
	if s.executeFn != nil {
		return s.executeFn(tx)
	}
	return ExecutionResult{}, nil
}

func (s *fakeSandbox) Call(context.Context, BlockArgs, *rolluptypes.Transaction, rolluptypes.SystemContractSet) (ExecutionResult, error) {
	s.callCalls++
	return s.callResult, s.callErr
}

// fakeOracle is a hand-written GasPriceOracle double.
type fakeOracle struct {
	price uint64
	err   error
}

func (o *fakeOracle) EstimateEffectiveGasPrice(context.Context) (uint64, error) {
	return o.price, o.err
}

// fakeProxy is a hand-written UpstreamProxy double.
type fakeProxy struct {
	err       error
	submitted []*rolluptypes.Transaction
}

func (p *fakeProxy) SubmitTx(_ context.Context, tx *rolluptypes.Transaction) error {
	p.submitted = append(p.submitted, tx)
	return p.err
}

// newTestContracts builds a SystemContractSuite with a loaded set for
// both purposes at the partition LastPreBoojumVersion resolves to, which
// is what every test gateway sees when its fakeReplica reports no
// recorded protocol version.
func newTestContracts() *rolluptypes.SystemContractSuite {
	suite := rolluptypes.NewSystemContractSuite()
	partition, err := rolluptypes.VersionToPartition(rolluptypes.LastPreBoojumVersion)
	if err != nil {
		panic(err)
	}
	set := rolluptypes.SystemContractSet{Bootloader: []byte("bootloader"), DefaultAccount: []byte("default-account")}
	suite.Load(rolluptypes.PurposeEstimateGas, partition, set)
	suite.Load(rolluptypes.PurposeEthCall, partition, set)
	return suite
}

func testConfig() *Config {
	return &Config{
		FairL2GasPrice:                   uint256.NewInt(100),
		MaxNonceAhead:                    50,
		MaxAllowedL2TxGasLimit:           1_000_000,
		ValidationComputationalGasLimit:  300_000,
		MaxNewFactoryDeps:                64,
		MaxPubdataPerBlock:               120_000,
		MaxGasPerPubdataByte:             50_000,
		MaxL2TxGasLimit:                  1_000_000,
		GasPriceScaleFactor:              1.0,
	}
}
