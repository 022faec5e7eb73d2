package rolluptypes

import "fmt"

// ProtocolVersion is an ordered tag selecting which system contract set and
// VM version a sandbox run should use. Ordinals below are interpreted as
// version numbers, not array indices.
type ProtocolVersion uint16

// LastPreBoojumVersion is the default used when a block's protocol version
// cannot be resolved from storage.
const LastPreBoojumVersion ProtocolVersion = 17

// Partition is the contract/VM generation a ProtocolVersion resolves to.
// The mapping from version ordinal to partition is fixed; see
// VersionToPartition.
type Partition uint8

const (
	PartitionPreVirtualBlocks Partition = iota
	PartitionPostVirtualBlocks
	PartitionPostVirtualBlocksFinishUpgradeFix
	PartitionPostBoojum
	PartitionPostAllowlistRemoval
)

func (p Partition) String() string {
	switch p {
	case PartitionPreVirtualBlocks:
		return "pre_virtual_blocks"
	case PartitionPostVirtualBlocks:
		return "post_virtual_blocks"
	case PartitionPostVirtualBlocksFinishUpgradeFix:
		return "post_virtual_blocks_finish_upgrade_fix"
	case PartitionPostBoojum:
		return "post_boojum"
	case PartitionPostAllowlistRemoval:
		return "post_allowlist_removal"
	default:
		return "unknown"
	}
}

// versionPartitionTable mirrors params/mantle.go's table-of-version-gated-
// config idiom: a fixed, explicit range → partition mapping rather than a
// computed formula, so a reviewer can read the cutovers directly.
var versionPartitionTable = []struct {
	minVersion ProtocolVersion
	maxVersion ProtocolVersion
	partition  Partition
}{
	{0, 12, PartitionPreVirtualBlocks},
	{13, 13, PartitionPostVirtualBlocks},
	{14, 17, PartitionPostVirtualBlocksFinishUpgradeFix},
	{18, 18, PartitionPostBoojum},
	{19, 20, PartitionPostAllowlistRemoval},
}

// VersionToPartition resolves the fixed protocol-version range to its
// system-contract partition. An out-of-range version is a configuration
// error in the caller, not a transaction error.
func VersionToPartition(v ProtocolVersion) (Partition, error) {
	for _, row := range versionPartitionTable {
		if v >= row.minVersion && v <= row.maxVersion {
			return row.partition, nil
		}
	}
	return 0, fmt.Errorf("protocol version %d has no known system-contract partition", v)
}

// ContractPurpose selects which of the two variants of a system-contract
// set to load: one tuned for accurate gas metrics, one tuned for readable
// revert reasons.
type ContractPurpose uint8

const (
	PurposeEstimateGas ContractPurpose = iota
	PurposeEthCall
)

// SystemContractSet is the pair of bytecodes the sandbox runs: the
// bootloader and the default account.
type SystemContractSet struct {
	Bootloader     []byte
	DefaultAccount []byte
}

// SystemContractSuite maps {purpose} x {protocol partition} to a loaded
// SystemContractSet. It is built once at construction (mirroring the
// original's ApiContracts::load_from_disk, which loads both axes up
// front) and selection afterwards is a pure in-memory lookup.
type SystemContractSuite struct {
	sets map[ContractPurpose]map[Partition]SystemContractSet
}

func NewSystemContractSuite() *SystemContractSuite {
	return &SystemContractSuite{
		sets: map[ContractPurpose]map[Partition]SystemContractSet{
			PurposeEstimateGas: {},
			PurposeEthCall:     {},
		},
	}
}

// Load registers the contract set to use for a given (purpose, partition)
// pair. Called once per axis combination during startup wiring.
func (s *SystemContractSuite) Load(purpose ContractPurpose, partition Partition, set SystemContractSet) {
	s.sets[purpose][partition] = set
}

// Select returns the loaded contract set for a protocol version and
// purpose. Selection is purely by (purpose, version): no dynamic lookup
// beyond the partition match.
func (s *SystemContractSuite) Select(purpose ContractPurpose, version ProtocolVersion) (SystemContractSet, error) {
	partition, err := VersionToPartition(version)
	if err != nil {
		return SystemContractSet{}, err
	}
	set, ok := s.sets[purpose][partition]
	if !ok {
		return SystemContractSet{}, fmt.Errorf("no system contracts loaded for purpose %d partition %s", purpose, partition)
	}
	return set, nil
}
