// Package config centralises the vault's deployment parameters in one
// explicit struct rather than a package-level singleton, so the whole
// public API threads a Params value instead of reading globals. Build-time
// defaults live in this file; callers may override them, but changing
// the Argon2/PBKDF2 work factors or the Stage-2 purpose-separation salt
// invalidates every vault created under the old values.
package config

import "time"

// Params is the full set of deployment parameters for one vault. The
// zero value is not meaningful -- use Default() or a caller-supplied
// Params literal.
type Params struct {
	// ChunkSize is the fixed secret size, in bytes, handled by one Shamir
	// polynomial. Always 64.
	ChunkSize uint32

	// PartitionSize is the number of share IDs reserved for each of
	// document A and document B.
	PartitionSize uint32

	// ActiveShares is the number of slots within a region that actually
	// carry a document's shares for a given chunk (and therefore the
	// number of chunks a document is encoded into). ActiveShares <=
	// PartitionSize.
	ActiveShares uint32

	// UnassignedShares is the number of share IDs that hold only garbage,
	// forever.
	UnassignedShares uint32

	// ShareIDSpace is 2*PartitionSize + UnassignedShares, the total
	// share-ID universe size.
	ShareIDSpace uint32

	KDF  KDFParams
	WAL  WALParams
	Lock LockParams
}

// KDFParams configures both the partition-map-key codec's KDF (raw
// password) and the two-stage MAP's Argon2id processed-password
// derivation.
type KDFParams struct {
	// Argon2Time, Argon2Memory (KiB) and Argon2Threads are the Argon2id
	// work factors. Fixed system-wide constants.
	Argon2Time    uint32
	Argon2Memory  uint32
	Argon2Threads uint8
	Argon2KeyLen  uint32

	// PBKDF2Iterations is the fallback iteration count, used only if
	// Argon2id is unavailable in the running environment.
	PBKDF2Iterations int

	// Stage2PurposeSalt is the fixed, published, system-wide salt used to
	// derive the processed password for Stage-2 of the MAP. It is not a
	// secret; changing it breaks every existing vault.
	Stage2PurposeSalt []byte
}

// WALParams configures the write-ahead log used by vault updates.
type WALParams struct {
	// Timeout is the age after which an orphaned WAL record (from a
	// process that is no longer running) is eligible for cleanup.
	Timeout time.Duration
}

// LockParams configures the advisory file lock used to serialise updates
// to one vault.
type LockParams struct {
	// AcquireTimeout is the total budget for lock acquisition retries.
	AcquireTimeout time.Duration
	// StaleAfter is the age after which a lock sidecar is reclaimed even
	// if its owning process is still running. A sidecar whose owning
	// process is no longer running is reclaimed regardless of its age.
	StaleAfter time.Duration
}

// defaultStage2PurposeSalt is a published constant of the system -- not a
// secret. It exists only to domain-separate the Stage-2 Argon2id call
// from the partition-map-key codec's per-region salts.
var defaultStage2PurposeSalt = []byte("shardvault/stage2-map/v1")

// Default returns the build-time default parameters for a small vault
// (PARTITION_SIZE/UNASSIGNED_SHARES/ACTIVE_SHARES sized for interactive
// use rather than a multi-gigabyte deployment). Production deployments
// should construct their own Params with sizes appropriate to their
// threat model -- larger PartitionSize means a larger partition-map-key
// and a larger vault file, but a bigger haystack per garbage share.
func Default() Params {
	const partitionSize = 30000
	const unassignedShares = 10000
	const activeShares = 64

	return Params{
		ChunkSize:        64,
		PartitionSize:    partitionSize,
		ActiveShares:     activeShares,
		UnassignedShares: unassignedShares,
		ShareIDSpace:     2*partitionSize + unassignedShares,
		KDF: KDFParams{
			Argon2Time:        3,
			Argon2Memory:      64 * 1024,
			Argon2Threads:     4,
			Argon2KeyLen:      32,
			PBKDF2Iterations:  310000,
			Stage2PurposeSalt: defaultStage2PurposeSalt,
		},
		WAL: WALParams{
			Timeout: time.Hour,
		},
		Lock: LockParams{
			AcquireTimeout: 10 * time.Second,
			StaleAfter:     time.Hour,
		},
	}
}
