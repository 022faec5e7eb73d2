package reconciler

import (
	"time"

	"github.com/ethereum/go-ethereum/metrics"
)

// Metrics mirror preconf/metrics.go: package-level registered gauges and
// a timer, plus small helper funcs called from the main loop.
var (
	lastCommittedGauge = metrics.NewRegisteredGauge("reconciler/batch/last_committed", nil)
	lastProvenGauge    = metrics.NewRegisteredGauge("reconciler/batch/last_proven", nil)
	lastExecutedGauge  = metrics.NewRegisteredGauge("reconciler/batch/last_executed", nil)

	changesAppliedMeter = metrics.NewRegisteredMeter("reconciler/changes/applied", nil)
	cycleTimer          = metrics.NewRegisteredTimer("reconciler/cycle", nil)
)

func recordState(committed, proven, executed int64) {
	lastCommittedGauge.Update(committed)
	lastProvenGauge.Update(proven)
	lastExecutedGauge.Update(executed)
}

func recordChangesApplied(n int) {
	changesAppliedMeter.Mark(int64(n))
}

func recordCycle(start time.Time) {
	cycleTimer.Update(time.Since(start))
}
