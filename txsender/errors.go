package txsender

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Sentinel SubmitTxErrors that carry no per-call data. Each validation
// step returns on first failure; submit_tx never retries.
var (
	ErrGasLimitIsTooBig                   = errors.New("exceeds block gas limit")
	ErrMaxFeePerGasTooLow                  = errors.New("max fee per gas less than fair l2 gas price")
	ErrMaxPriorityFeeGreaterThanMaxFee     = errors.New("max priority fee per gas higher than max fee per gas")
	ErrIntrinsicGas                        = errors.New("intrinsic gas too low")
	ErrFailedToPublishCompressedBytecodes  = errors.New("failed to publish compressed bytecodes")
	ErrInsufficientFundsForTransfer        = errors.New("insufficient funds for transfer")
	ErrServerShuttingDown                  = errors.New("server is shutting down")
)

// TooManyFactoryDependenciesError is returned when a transaction ships
// more deployable bytecodes than MaxNewFactoryDeps allows.
type TooManyFactoryDependenciesError struct {
	Count int
	Max   int
}

func (e *TooManyFactoryDependenciesError) Error() string {
	return fmt.Sprintf("too many factory dependencies: %d (max %d)", e.Count, e.Max)
}

// NonceIsTooLowError is returned when a transaction's nonce precedes the
// initiator's expected nonce at the latest sealed miniblock.
type NonceIsTooLowError struct {
	Expected uint32
	Max      uint32
	Given    uint32
}

func (e *NonceIsTooLowError) Error() string {
	return fmt.Sprintf("nonce too low: expected %d, max %d, given %d", e.Expected, e.Max, e.Given)
}

// NonceIsTooHighError is returned when a transaction's nonce exceeds the
// acceptable window above the initiator's expected nonce.
type NonceIsTooHighError struct {
	Expected uint32
	Max      uint32
	Given    uint32
}

func (e *NonceIsTooHighError) Error() string {
	return fmt.Sprintf("nonce too high: expected %d, max %d, given %d", e.Expected, e.Max, e.Given)
}

// NotEnoughBalanceForFeeValueError is returned when the initiator's ETH
// balance cannot cover gas_limit*effective_gas_price + value.
type NotEnoughBalanceForFeeValueError struct {
	Balance *uint256.Int
	MaxFee  *uint256.Int
	Value   *uint256.Int
}

func (e *NotEnoughBalanceForFeeValueError) Error() string {
	return fmt.Sprintf("not enough balance to cover the fee and value: balance %s, required %s", e.Balance, new(uint256.Int).Add(e.MaxFee, e.Value))
}

// IncorrectTxReason discriminates the ways insert_transaction_l2 can
// reject a transaction that is otherwise well-formed.
type IncorrectTxReason interface {
	isIncorrectTxReason()
	Error() string
}

// DuplicationReason means a transaction with the exact same hash is
// already present in the mempool.
type DuplicationReason struct {
	Hash common.Hash
}

func (DuplicationReason) isIncorrectTxReason() {}
func (d DuplicationReason) Error() string {
	return fmt.Sprintf("transaction with hash %s is already in the mempool", d.Hash)
}

// IncorrectTxError wraps an IncorrectTxReason.
type IncorrectTxError struct {
	Reason IncorrectTxReason
}

func (e *IncorrectTxError) Error() string {
	return fmt.Sprintf("incorrect tx: %s", e.Reason.Error())
}

func (e *IncorrectTxError) Unwrap() error {
	return e.Reason
}

// UnexecutableError is returned when the seal predicate rejects a
// transaction that otherwise validated and dry-ran successfully.
type UnexecutableError struct {
	Reason string
}

func (e *UnexecutableError) Error() string {
	return fmt.Sprintf("transaction is unexecutable: %s", e.Reason)
}

// ExecutionRevertedError surfaces a VM revert observed during estimate_fee
// or eth_call, carrying the raw return data for client decoding.
type ExecutionRevertedError struct {
	Message    string
	ReturnData []byte
}

func (e *ExecutionRevertedError) Error() string {
	if e.Message == "" {
		return "execution reverted"
	}
	return fmt.Sprintf("execution reverted: %s", e.Message)
}

// classifyVMFailure centralizes VM-failure -> SubmitTxError translation,
// grounded on the original's pending_execution_to_tx_sender_error helper.
func classifyVMFailure(reverted bool, message string, returnData []byte) error {
	if !reverted {
		return nil
	}
	return &ExecutionRevertedError{Message: message, ReturnData: returnData}
}
