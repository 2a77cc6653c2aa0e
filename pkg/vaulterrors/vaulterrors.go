// Package vaulterrors defines the four error kinds of the vault's public
// API. Each kind carries only the minimum diagnostic
// information that does not discriminate among sensitive causes --
// DecryptionError in particular must read identically whether the cause
// was a wrong password or a tampered partition-map-key.
package vaulterrors

import "github.com/pkg/errors"

// IoError-class, DecryptionError-class, CapacityError-class and
// VaultFormatError-class sentinels. Use errors.Is against these, or wrap
// them with errors.Wrap/Wrapf to add caller context -- never add detail
// that would let a caller distinguish "wrong password" from "tampered
// data" for DecryptionError.
var (
	// ErrIO signals a filesystem-level failure: permission denied, file
	// not found, lock unavailable. The only error kind that may carry
	// OS-level detail.
	ErrIO = errors.New("vault: i/o error")

	// ErrDecryption signals an AEAD authentication failure while opening a
	// partition-map-key. Deliberately indistinguishable between "wrong
	// password" and "tampered key" -- both in message and in timing.
	ErrDecryption = errors.New("vault: decryption failed")

	// ErrCapacity signals that a document's encoded form exceeds the
	// ACTIVE_SHARES*64-byte budget. Raised before any encryption or write
	// is attempted.
	ErrCapacity = errors.New("vault: document exceeds chunk capacity")

	// ErrVaultFormat signals that a vault file is not well-formed JSON or
	// has the wrong structure -- corruption or wrong-file, not a secrets
	// mismatch.
	ErrVaultFormat = errors.New("vault: malformed vault file")
)

// IsIO reports whether err wraps ErrIO.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// IsDecryption reports whether err wraps ErrDecryption.
func IsDecryption(err error) bool { return errors.Is(err, ErrDecryption) }

// IsCapacity reports whether err wraps ErrCapacity.
func IsCapacity(err error) bool { return errors.Is(err, ErrCapacity) }

// IsVaultFormat reports whether err wraps ErrVaultFormat.
func IsVaultFormat(err error) bool { return errors.Is(err, ErrVaultFormat) }
