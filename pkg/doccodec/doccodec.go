// Package doccodec converts between an opaque JSON value and a
// fixed-length sequence of 64-byte Shamir chunks. Grounded on
// pkg/shamir's fixed-size secret handling and the base64 wire-string
// field pattern used across this module's packages, applied here to a
// whole-document pipeline instead of a single secret.
//
// Decode deliberately never returns a diagnostic error: a wrong
// password and a corrupted vault must be indistinguishable through the
// read path, so any failure anywhere in this pipeline -- bad padding,
// bad base64, invalid JSON -- collapses into the same "undecodable"
// result carrying only the raw byte buffer.
package doccodec

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// ChunkSize is the fixed chunk length shared with pkg/shamir.
const ChunkSize = 64

// padMarker is the single byte that begins the padding run appended by
// Encode. Unpad scans backward from the end of the buffer for this byte
// preceded only by zero bytes, which -- unlike PKCS#7 -- places no
// 255-byte ceiling on the padding length, needed here since
// target_chunk_count*64 can be arbitrarily large.
const padMarker = 0x80

// ErrCapacity indicates the encoded document does not fit within
// targetChunkCount*ChunkSize bytes once base64-encoded.
var ErrCapacity = errors.New("doccodec: document exceeds target chunk capacity")

// Result is what Decode returns. When Decoded is false, Value is nil and
// Raw carries the concatenated, still-possibly-padded byte buffer -- the
// undecodable marker. Callers must not branch on *why* decoding failed;
// Raw exists only so the marker carries a stable payload rather than
// being a bare boolean.
type Result struct {
	Value   interface{}
	Decoded bool
	Raw     []byte
}

// Encode serialises value to canonical JSON, re-interprets the UTF-8
// bytes as Latin-1 (a no-op on the byte values themselves -- Latin-1 and
// UTF-8 agree on every byte value, this step only documents the
// character-set pipeline), base64-encodes, and pads to exactly
// targetChunkCount*ChunkSize bytes before slicing into chunks.
func Encode(value interface{}, targetChunkCount int) ([][ChunkSize]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}

	encoded := base64.StdEncoding.EncodeToString(raw)

	total := targetChunkCount * ChunkSize
	padded, err := pad([]byte(encoded), total)
	if err != nil {
		return nil, err
	}

	chunks := make([][ChunkSize]byte, targetChunkCount)
	for i := 0; i < targetChunkCount; i++ {
		copy(chunks[i][:], padded[i*ChunkSize:(i+1)*ChunkSize])
	}
	return chunks, nil
}

// Decode reverses Encode: concatenates the chunks, strips padding,
// base64-decodes, and parses JSON. Any failure at any stage yields
// Result{Decoded: false}, never an error -- see the package doc.
func Decode(chunks [][ChunkSize]byte) Result {
	raw := make([]byte, 0, len(chunks)*ChunkSize)
	for _, c := range chunks {
		raw = append(raw, c[:]...)
	}

	unpadded, ok := unpad(raw)
	if !ok {
		return Result{Decoded: false, Raw: raw}
	}

	decoded, err := base64.StdEncoding.DecodeString(string(unpadded))
	if err != nil {
		return Result{Decoded: false, Raw: raw}
	}

	var value interface{}
	if err := json.Unmarshal(decoded, &value); err != nil {
		return Result{Decoded: false, Raw: raw}
	}

	return Result{Value: value, Decoded: true, Raw: raw}
}

// pad appends a padMarker byte followed by zero bytes until data reaches
// exactly total bytes. Padding is always appended, even when len(data)
// already equals total minus one, so a genuine payload can never be
// mistaken for one with no padding. Fails with ErrCapacity if there is
// no room for at least the marker byte.
func pad(data []byte, total int) ([]byte, error) {
	if len(data) >= total {
		return nil, ErrCapacity
	}
	out := make([]byte, total)
	copy(out, data)
	out[len(data)] = padMarker
	return out, nil
}

// unpad scans backward from the end of data for the padMarker byte,
// requiring every byte after it to be zero and at least one byte to
// precede it. Returns ok=false on any inconsistency -- corrupted
// padding is reported identically to every other decode failure.
func unpad(data []byte) ([]byte, bool) {
	i := len(data) - 1
	for i >= 0 && data[i] == 0x00 {
		i--
	}
	if i < 1 || data[i] != padMarker {
		return nil, false
	}
	return data[:i], true
}
