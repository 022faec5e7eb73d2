package txsender

import (
	"time"

	"github.com/ethereum/go-ethereum/metrics"
)

// SubmitStage tags the five sequential stages submit_tx passes through, in
// order, matching spec.md's operational contract.
type SubmitStage string

const (
	StageValidate      SubmitStage = "validate"
	StageDryRun        SubmitStage = "dry_run"
	StageVerifyExecute SubmitStage = "verify_execute"
	StageTxProxy       SubmitStage = "tx_proxy"
	StageDbInsert      SubmitStage = "db_insert"
)

// Outcome tags the terminal state of a submit_tx call for the processed-tx
// counter.
type Outcome string

const (
	OutcomeAdded    Outcome = "added"
	OutcomeReplaced Outcome = "replaced"
	OutcomeProxied  Outcome = "proxied"
	OutcomeRejected Outcome = "rejected"
)

// Metrics mirror preconf/metrics.go exactly: package-level registered
// timers/counters/a histogram plus small helper funcs, rather than a
// dependency-injected metrics interface.
var (
	submitStageTimers = map[SubmitStage]metrics.Timer{
		StageValidate:      metrics.NewRegisteredTimer("txsender/submit/validate", nil),
		StageDryRun:        metrics.NewRegisteredTimer("txsender/submit/dry_run", nil),
		StageVerifyExecute: metrics.NewRegisteredTimer("txsender/submit/verify_execute", nil),
		StageTxProxy:       metrics.NewRegisteredTimer("txsender/submit/tx_proxy", nil),
		StageDbInsert:      metrics.NewRegisteredTimer("txsender/submit/db_insert", nil),
	}

	processedTxAdded    = metrics.NewRegisteredCounter("txsender/submit/outcome/added", nil)
	processedTxReplaced = metrics.NewRegisteredCounter("txsender/submit/outcome/replaced", nil)
	processedTxProxied  = metrics.NewRegisteredCounter("txsender/submit/outcome/proxied", nil)
	processedTxRejected = metrics.NewRegisteredCounter("txsender/submit/outcome/rejected", nil)

	// PermitWaitTimer records how long a request waited to acquire a VM
	// permit, grounded in the original's vm_permit latency metric and in
	// the teacher's PreconfTxPoolHandleTimer pattern.
	PermitWaitTimer = metrics.NewRegisteredTimer("txsender/vm_permit/wait", nil)

	estimateFeeIterations = metrics.NewRegisteredHistogram("txsender/estimate_fee/iterations", nil, metrics.NewUniformSample(1028))
)

// recordStage updates the timer for one submit_tx stage.
func recordStage(stage SubmitStage, start time.Time) {
	if t, ok := submitStageTimers[stage]; ok {
		t.Update(time.Since(start))
	}
}

// recordOutcome increments the processed-tx counter tagged by outcome.
func recordOutcome(outcome Outcome) {
	switch outcome {
	case OutcomeAdded:
		processedTxAdded.Inc(1)
	case OutcomeReplaced:
		processedTxReplaced.Inc(1)
	case OutcomeProxied:
		processedTxProxied.Inc(1)
	default:
		processedTxRejected.Inc(1)
	}
}

func recordPermitWait(start time.Time) {
	PermitWaitTimer.Update(time.Since(start))
}

func recordEstimateIterations(n int64) {
	estimateFeeIterations.Update(n)
}
