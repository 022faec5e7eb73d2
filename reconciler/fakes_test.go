package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// fakeStorage is a hand-written Storage double.
type fakeStorage struct {
	lastSealed    rolluptypes.L1BatchNumber
	lastSealedErr error

	tx      *fakeStorageTx
	beginErr error
}

func (s *fakeStorage) LastSealedBatch(context.Context) (rolluptypes.L1BatchNumber, error) {
	return s.lastSealed, s.lastSealedErr
}

func (s *fakeStorage) Begin(context.Context) (StorageTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	if s.tx == nil {
		s.tx = &fakeStorageTx{}
	}
	return s.tx, nil
}

type insertedRow struct {
	number     rolluptypes.L1BatchNumber
	action     ActionType
	hash       common.Hash
	happenedAt time.Time
}

// fakeStorageTx is a hand-written StorageTx double.
type fakeStorageTx struct {
	rows       []insertedRow
	insertErr  error
	commitErr  error
	committed  bool
	rolledBack bool
}

func (tx *fakeStorageTx) InsertBogusConfirmedEthTx(_ context.Context, number rolluptypes.L1BatchNumber, action ActionType, hash common.Hash, happenedAt time.Time) error {
	if tx.insertErr != nil {
		return tx.insertErr
	}
	tx.rows = append(tx.rows, insertedRow{number: number, action: action, hash: hash, happenedAt: happenedAt})
	return nil
}

func (tx *fakeStorageTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeStorageTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

// fakeUpstream is a hand-written UpstreamClient double, keyed on batch
// number for resolution and miniblock number for block details.
type fakeUpstream struct {
	resolved   map[rolluptypes.L1BatchNumber]rolluptypes.MiniblockNumber
	resolveErr error

	details    map[rolluptypes.MiniblockNumber]rolluptypes.BlockDetails
	detailsErr error
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		resolved: make(map[rolluptypes.L1BatchNumber]rolluptypes.MiniblockNumber),
		details:  make(map[rolluptypes.MiniblockNumber]rolluptypes.BlockDetails),
	}
}

func (u *fakeUpstream) ResolveL1BatchToMiniblock(_ context.Context, batch rolluptypes.L1BatchNumber) (rolluptypes.MiniblockNumber, bool, error) {
	if u.resolveErr != nil {
		return 0, false, u.resolveErr
	}
	mb, ok := u.resolved[batch]
	return mb, ok, nil
}

func (u *fakeUpstream) BlockDetails(_ context.Context, miniblock rolluptypes.MiniblockNumber) (rolluptypes.BlockDetails, bool, error) {
	if u.detailsErr != nil {
		return rolluptypes.BlockDetails{}, false, u.detailsErr
	}
	d, ok := u.details[miniblock]
	return d, ok, nil
}

var errUpstreamUnavailable = errors.New("upstream node unreachable")

func timePtr(t time.Time) *time.Time { return &t }
func hashPtr(h common.Hash) *common.Hash { return &h }
