package rolluptypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TxType tags which variant of the common transaction data a Transaction
// carries. The execute part (value, calldata, factory deps) is shared by
// all three.
type TxType uint8

const (
	L1Tx TxType = iota
	L2Tx
	ProtocolUpgradeTx
)

func (t TxType) String() string {
	switch t {
	case L1Tx:
		return "L1"
	case L2Tx:
		return "L2"
	case ProtocolUpgradeTx:
		return "ProtocolUpgrade"
	default:
		return "Unknown"
	}
}

// Fee is the four-tuple returned by the fee estimator and carried inline on
// every transaction's common data.
type Fee struct {
	GasLimit             *uint256.Int
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	GasPerPubdataLimit   *uint256.Int
}

func (f Fee) Clone() Fee {
	clone := func(x *uint256.Int) *uint256.Int {
		if x == nil {
			return nil
		}
		return new(uint256.Int).Set(x)
	}
	return Fee{
		GasLimit:             clone(f.GasLimit),
		MaxFeePerGas:         clone(f.MaxFeePerGas),
		MaxPriorityFeePerGas: clone(f.MaxPriorityFeePerGas),
		GasPerPubdataLimit:   clone(f.GasPerPubdataLimit),
	}
}

// PaymasterParams is present only when a third party sponsors the fee.
type PaymasterParams struct {
	Paymaster      common.Address
	PaymasterInput []byte
}

// CommonTxData is the part of a Transaction shared across the signature,
// fee, nonce and routing metadata, independent of the variant-specific
// execute payload.
type CommonTxData struct {
	Type             TxType
	InitiatorAddress common.Address
	Nonce            uint32
	Fee              Fee
	Paymaster        *PaymasterParams
	Signature        []byte

	// Only meaningful for L1Tx / ProtocolUpgradeTx.
	ToMint          *uint256.Int
	RefundRecipient common.Address
}

// ExecuteTxData is the payload every transaction variant carries: the call
// itself plus any bytecodes that must be registered for deployment.
type ExecuteTxData struct {
	Value           *uint256.Int
	Calldata        []byte
	FactoryDeps     [][]byte
	ContractAddress *common.Address
}

// Transaction is a full signed L2 transaction, or a partially-formed one
// being priced by the fee estimator. A hash is available only once the
// transaction has been fully signed; estimate_fee may run against a
// Transaction whose Hash method returns ok == false.
type Transaction struct {
	Common  CommonTxData
	Execute ExecuteTxData

	hash    *common.Hash
	encoded []byte
}

// NewSignedTransaction wraps a fully-formed transaction for which a hash is
// available (e.g. freshly decoded off the wire).
func NewSignedTransaction(common_ CommonTxData, execute ExecuteTxData, hash common.Hash, encoded []byte) *Transaction {
	h := hash
	return &Transaction{Common: common_, Execute: execute, hash: &h, encoded: encoded}
}

// NewUnsignedTransaction wraps a transaction built solely to be priced; its
// hash is not yet defined.
func NewUnsignedTransaction(common_ CommonTxData, execute ExecuteTxData) *Transaction {
	return &Transaction{Common: common_, Execute: execute}
}

func (tx *Transaction) Hash() (common.Hash, bool) {
	if tx.hash == nil {
		return common.Hash{}, false
	}
	return *tx.hash, true
}

// EncodedLen is used by the overhead formula, which prices against the
// transaction's serialized length.
func (tx *Transaction) EncodedLen() int {
	return len(tx.encoded)
}

// Clone returns a deep-enough copy for the fee estimator to mutate the fee
// and gas_per_pubdata_limit fields while searching, without perturbing the
// caller's original transaction.
func (tx *Transaction) Clone() *Transaction {
	clone := *tx
	clone.Common.Fee = tx.Common.Fee.Clone()
	if tx.Common.ToMint != nil {
		clone.Common.ToMint = new(uint256.Int).Set(tx.Common.ToMint)
	}
	clone.Execute.FactoryDeps = append([][]byte(nil), tx.Execute.FactoryDeps...)
	return &clone
}
