package rolluptypes

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestTransactionCloneIsIndependent(t *testing.T) {
	tx := NewUnsignedTransaction(
		CommonTxData{
			Type: L2Tx,
			Fee: Fee{
				GasLimit:             uint256.NewInt(100),
				MaxFeePerGas:         uint256.NewInt(10),
				MaxPriorityFeePerGas: uint256.NewInt(1),
				GasPerPubdataLimit:   uint256.NewInt(800),
			},
		},
		ExecuteTxData{
			Value:       uint256.NewInt(0),
			FactoryDeps: [][]byte{{1, 2, 3}},
		},
	)

	clone := tx.Clone()
	clone.Common.Fee.GasLimit.SetUint64(999)
	clone.Execute.FactoryDeps[0] = []byte("mutated")

	if tx.Common.Fee.GasLimit.Uint64() != 100 {
		t.Fatalf("mutating the clone's fee affected the original: got %d", tx.Common.Fee.GasLimit.Uint64())
	}
	if string(tx.Execute.FactoryDeps[0]) == "mutated" {
		t.Fatal("mutating the clone's factory deps slice affected the original")
	}
}

func TestTransactionHashUnsignedIsNotOk(t *testing.T) {
	tx := NewUnsignedTransaction(CommonTxData{}, ExecuteTxData{})
	if _, ok := tx.Hash(); ok {
		t.Fatal("an unsigned transaction built for pricing must not report a hash")
	}
}

func TestTransactionHashSigned(t *testing.T) {
	h := common.HexToHash("0x01")
	tx := NewSignedTransaction(CommonTxData{}, ExecuteTxData{}, h, []byte{0xde, 0xad})

	got, ok := tx.Hash()
	if !ok || got != h {
		t.Fatalf("got (%s, %v), want (%s, true)", got, ok, h)
	}
	if tx.EncodedLen() != 2 {
		t.Fatalf("got encoded len %d, want 2", tx.EncodedLen())
	}
}
