package txsender

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DefaultConfig mirrors the teacher's preconf.DefaultConfig/DefaultTxPoolConfig
// idiom: a package-level value process wiring can start from and override.
var DefaultConfig = Config{
	GasPriceScaleFactor:            1.0,
	MaxNonceAhead:                  50,
	MaxAllowedL2TxGasLimit:         4_000_000_000,
	ValidationComputationalGasLimit: 300_000,
	MaxNewFactoryDeps:              64,
	MaxPubdataPerBlock:             120_000,
	MaxGasPerPubdataByte:           50_000,
	MaxL2TxGasLimit:                4_000_000_000,
}

// Config holds the TxGateway's immutable, per-process configuration. It is
// wrapped in a shared handle and cloned cheaply per request (see
// gateway.go); nothing here is ever mutated after construction.
type Config struct {
	FeeAccountAddr common.Address
	ChainID        uint64

	GasPriceScaleFactor             float64
	FairL2GasPrice                  *uint256.Int
	MaxNonceAhead                   uint32
	MaxAllowedL2TxGasLimit          uint64
	ValidationComputationalGasLimit uint64
	VMExecutionCacheMissesLimit     int

	MaxNewFactoryDeps    int
	MaxPubdataPerBlock   uint64
	MaxGasPerPubdataByte uint64
	MaxL2TxGasLimit      uint64
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"FeeAccountAddr: %s, ChainID: %d, GasPriceScaleFactor: %.3f, MaxNonceAhead: %d, MaxAllowedL2TxGasLimit: %d",
		c.FeeAccountAddr.Hex(), c.ChainID, c.GasPriceScaleFactor, c.MaxNonceAhead, c.MaxAllowedL2TxGasLimit,
	)
}

// IntrinsicGasForL2Tx returns the minimum gas a well-formed L2 transaction
// must declare before any execution, independent of calldata content. It
// is a fixed constant: it reads no Config field and does not look at the
// transaction.
func IntrinsicGasForL2Tx() uint64 {
	return 21_000
}
