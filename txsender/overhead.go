package txsender

// Overhead parameters bound the fixed and pubdata-proportional cost the
// bootloader itself imposes on top of a transaction's declared gas_limit.
// These mirror go-ethereum's rollup_cost.go zero/nonzero-byte accounting
// (core/types/rollup_cost.go: DataGas) adapted to a gas_limit overhead
// rather than an L1 data fee: a fixed per-transaction constant plus a
// per-byte-of-encoding term whose per-byte rate is capped at
// gas_per_pubdata_byte, so a pubdata price below overheadPerEncodedByte
// yields a smaller overhead.
const (
	overheadFixed          uint64 = 20_000
	overheadPerEncodedByte uint64 = 10
)

// overhead returns the gas the bootloader needs on top of tryGasLimit to
// cover the fixed per-transaction cost and the cost of transporting the
// transaction's own encoding, given the current pubdata price. It does
// not depend on tryGasLimit itself — kept as a parameter for symmetry with
// the original formula's signature and so future refinements (e.g.
// overhead that grows with the probed limit) have a natural home.
func overhead(tryGasLimit uint64, gasPerPubdataByte uint64, encodedLen int, txFormat rollupTxFormat, vmVersion uint16) uint64 {
	_ = tryGasLimit
	_ = txFormat
	_ = vmVersion

	perByte := overheadPerEncodedByte
	if gasPerPubdataByte > 0 && gasPerPubdataByte < perByte {
		perByte = gasPerPubdataByte
	}
	return overheadFixed + uint64(encodedLen)*perByte
}

// rollupTxFormat distinguishes the wire encoding used to compute overhead;
// currently only one format is modeled, but the parameter is kept so a
// second encoding can be added without changing every call site.
type rollupTxFormat uint8

const (
	rollupTxFormatCurrent rollupTxFormat = iota
)
