package rolluptypes

// ExecutionMetrics is opaque per-execution statistics produced by the
// sandbox. TxGateway never inspects these fields: it forwards the value
// to the seal predicate and to storage insertion unchanged. Concrete
// fields are kept here only because the seal predicate and storage layer
// (both out of scope, consumed only at their interface boundary) need a
// shape to read from.
type ExecutionMetrics struct {
	GasUsed           uint64
	PubdataPublished  uint64
	ComputationUsed   uint64
	StorageWrites     uint64
	StorageReads      uint64
	ContractsDeployed uint64
}
