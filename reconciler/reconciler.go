// Package reconciler implements BatchStatusReconciler: the background
// loop an external (non-sequencer) node runs to mirror, into local
// storage, which locally applied L1 batches have been committed, proven
// and executed on the settlement layer, by polling an upstream node.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// Reconciler is a single long-lived task; it has no internal concurrency,
// and all writes for one polling cycle commit atomically in one storage
// transaction.
type Reconciler struct {
	cfg      Config
	storage  Storage
	upstream UpstreamClient
	state    *State
	sink     *StatusChangeSink

	// sleepFn is isolated to a single call site so tests can inject a
	// no-op or instrumented sleep, grounded on the teacher's
	// preconfChecker.loop isolating its time.Sleep the same way.
	sleepFn func(time.Duration)

	stop chan struct{}
	done chan struct{}
}

// New builds a Reconciler with state seeded from storage at startup.
func New(cfg Config, storage Storage, upstream UpstreamClient, committed, proven, executed rolluptypes.L1BatchNumber) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		storage:  storage,
		upstream: upstream,
		state:    NewState(committed, proven, executed),
		sink:     NewStatusChangeSink(),
		sleepFn:  time.Sleep,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Subscribe registers an observer for applied status changes.
func (r *Reconciler) Subscribe(buffer int) (<-chan rolluptypes.StatusChanges, func()) {
	return r.sink.Subscribe(buffer)
}

// State exposes a read-only snapshot of {last_committed, last_proven,
// last_executed} for callers (e.g. health checks) outside the loop.
func (r *Reconciler) State() (committed, proven, executed rolluptypes.L1BatchNumber) {
	return r.state.Snapshot()
}

// Stop requests the loop exit; it is observed between cycles, never
// mid-cycle, so a cycle already in flight always finishes or fails
// cleanly.
func (r *Reconciler) Stop() {
	close(r.stop)
	<-r.done
}

// Run executes the main loop until Stop is called or a fatal internal
// error occurs, in which case it returns that error.
func (r *Reconciler) Run(ctx context.Context) error {
	defer close(r.done)

	for {
		select {
		case <-r.stop:
			return nil
		default:
		}

		cycleStart := time.Now()
		changes, lastSealed, err := r.collectChanges(ctx)
		if err != nil {
			var rpcErr *RPCError
			if ok := asRPCError(err, &rpcErr); ok {
				log.Warn("reconciler: transient upstream error, will retry", "err", rpcErr.Err)
				r.sleepFn(r.cfg.SleepInterval)
				continue
			}
			log.Error("reconciler: fatal inconsistency, halting", "err", err)
			return err
		}

		if changes.IsEmpty() {
			recordCycle(cycleStart)
			r.sleepFn(r.cfg.SleepInterval)
			continue
		}

		if err := r.apply(ctx, changes, lastSealed); err != nil {
			log.Error("reconciler: failed to apply observed changes, halting", "err", err)
			return err
		}
		recordCycle(cycleStart)
	}
}

func asRPCError(err error, target **RPCError) bool {
	for err != nil {
		if rpcErr, ok := err.(*RPCError); ok {
			*target = rpcErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// collectChanges polls upstream for batches beyond last_executed, up to
// the newest locally-sealed batch, and returns every commit/prove/execute
// transition it observes. It never mutates r.state directly: transitions
// are applied to local counters here and only committed to r.state once
// apply has durably persisted them.
func (r *Reconciler) collectChanges(ctx context.Context) (rolluptypes.StatusChanges, rolluptypes.L1BatchNumber, error) {
	var changes rolluptypes.StatusChanges

	lastSealed, err := r.storage.LastSealedBatch(ctx)
	if err != nil {
		return changes, 0, err
	}

	committed, proven, executed := r.state.Snapshot()
	batch := executed + 1

	for batch <= lastSealed {
		miniblock, ok, err := r.upstream.ResolveL1BatchToMiniblock(ctx, batch)
		if err != nil {
			return changes, 0, &RPCError{Err: err}
		}
		if !ok {
			// Upstream hasn't sealed this batch yet.
			return changes, lastSealed, nil
		}

		details, ok, err := r.upstream.BlockDetails(ctx, miniblock)
		if err != nil {
			return changes, 0, &RPCError{Err: err}
		}
		if !ok {
			return changes, 0, &InternalError{Msg: fmt.Sprintf("miniblock %d resolved from batch %d but has no block_details", miniblock, batch)}
		}

		if details.CommitTxHash != nil && details.L1BatchNumber == committed+1 {
			if details.CommittedAt == nil {
				return changes, 0, &InternalError{Msg: "malformed API response: commit_tx_hash present without committed_at"}
			}
			changes.Commit = append(changes.Commit, rolluptypes.BatchStatusChange{
				Number: committed + 1, L1TxHash: *details.CommitTxHash, HappenedAt: *details.CommittedAt,
			})
			committed++
		}
		if details.ProveTxHash != nil && details.L1BatchNumber == proven+1 {
			if details.ProvenAt == nil {
				return changes, 0, &InternalError{Msg: "malformed API response: prove_tx_hash present without proven_at"}
			}
			changes.Prove = append(changes.Prove, rolluptypes.BatchStatusChange{
				Number: proven + 1, L1TxHash: *details.ProveTxHash, HappenedAt: *details.ProvenAt,
			})
			proven++
		}
		if details.ExecuteTxHash != nil && details.L1BatchNumber == executed+1 {
			if details.ExecutedAt == nil {
				return changes, 0, &InternalError{Msg: "malformed API response: execute_tx_hash present without executed_at"}
			}
			changes.Execute = append(changes.Execute, rolluptypes.BatchStatusChange{
				Number: executed + 1, L1TxHash: *details.ExecuteTxHash, HappenedAt: *details.ExecutedAt,
			})
			executed++
		}

		switch {
		case details.CommitTxHash == nil:
			// No further committed batches upstream.
			return changes, lastSealed, nil
		case details.ProveTxHash == nil && batch < committed:
			batch = committed + 1
		case details.ExecutedAt == nil && batch < proven:
			batch = proven + 1
		default:
			batch++
		}
	}

	return changes, lastSealed, nil
}

// apply opens one storage transaction, inserts a bogus confirmed eth_tx
// row for every change in commit-then-prove-then-execute order while
// asserting the ordering invariants, commits, then advances in-memory
// state and emits the changes to observers. A delivery failure on the
// sink is ignored.
func (r *Reconciler) apply(ctx context.Context, changes rolluptypes.StatusChanges, lastSealed rolluptypes.L1BatchNumber) error {
	tx, err := r.storage.Begin(ctx)
	if err != nil {
		return err
	}
	committed, proven, executed := r.state.Snapshot()
	ok := false
	defer func() {
		if !ok {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, c := range changes.Commit {
		if c.Number > lastSealed {
			return &InternalError{Msg: fmt.Sprintf("commit transition for batch %d exceeds last sealed batch %d", c.Number, lastSealed)}
		}
		if err := tx.InsertBogusConfirmedEthTx(ctx, c.Number, ActionCommit, c.L1TxHash, c.HappenedAt); err != nil {
			return err
		}
		committed = c.Number
	}
	for _, c := range changes.Prove {
		if c.Number > committed {
			return &InternalError{Msg: fmt.Sprintf("prove transition for batch %d exceeds last committed batch %d", c.Number, committed)}
		}
		if err := tx.InsertBogusConfirmedEthTx(ctx, c.Number, ActionProve, c.L1TxHash, c.HappenedAt); err != nil {
			return err
		}
		proven = c.Number
	}
	for _, c := range changes.Execute {
		if c.Number > proven {
			return &InternalError{Msg: fmt.Sprintf("execute transition for batch %d exceeds last proven batch %d", c.Number, proven)}
		}
		if err := tx.InsertBogusConfirmedEthTx(ctx, c.Number, ActionExecute, c.L1TxHash, c.HappenedAt); err != nil {
			return err
		}
		executed = c.Number
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ok = true

	r.state.update(committed, proven, executed)
	recordState(int64(committed), int64(proven), int64(executed))
	recordChangesApplied(len(changes.Commit) + len(changes.Prove) + len(changes.Execute))

	r.sink.emit(changes)
	return nil
}
