/*
 * paperback: resilient paper backups for the very paranoid
 * Copyright (C) 2018 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package mapkey implements the partition-map-key codec: a
// password-encrypted, opaque blob that carries one region's ordered
// share-ID list. The key is derived from the holder's password via
// Argon2id rather than generated at random, since the partition-map-key's
// entire purpose is to be something a human can memorize the password
// to and carry on paper.
package mapkey

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/pkg/vaulterrors"
)

// groupSize is the number of base64 characters between hyphens in the
// rendered partition-map-key, purely for human transcription -- it has
// no bearing on the decoded content.
const groupSize = 5

// saltSize is the length, in bytes, of the per-key Argon2id salt. Unlike
// config.KDFParams.Stage2PurposeSalt (fixed and published), this salt is
// freshly randomly generated per Encode call and stored alongside the
// ciphertext, exactly as a password-based KDF salt should be.
const saltSize = 16

// packet is the wire format of an encoded partition-map-key: an AEAD
// envelope over the region's share-ID list, plus the KDF salt needed to
// re-derive the same key from the password at Decode time.
type packet struct {
	Salt       []byte `json:"s"`
	Nonce      []byte `json:"n"`
	Ciphertext []byte `json:"d"`
	// Argon2 indicates which KDF produced the key: true for Argon2id,
	// false for the PBKDF2 fallback, used only if Argon2id is
	// unavailable in the running environment.
	Argon2 bool `json:"a"`
}

type wirePacket struct {
	Salt       string `json:"s"`
	Nonce      string `json:"n"`
	Ciphertext string `json:"d"`
	Argon2     bool   `json:"a"`
}

func (p packet) toWire() wirePacket {
	return wirePacket{
		Salt:       base64.StdEncoding.EncodeToString(p.Salt),
		Nonce:      base64.StdEncoding.EncodeToString(p.Nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(p.Ciphertext),
		Argon2:     p.Argon2,
	}
}

func (wp wirePacket) toPacket() (packet, error) {
	salt, err := base64.StdEncoding.DecodeString(wp.Salt)
	if err != nil {
		return packet{}, errors.Wrap(err, "decode salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(wp.Nonce)
	if err != nil {
		return packet{}, errors.Wrap(err, "decode nonce")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(wp.Ciphertext)
	if err != nil {
		return packet{}, errors.Wrap(err, "decode ciphertext")
	}
	return packet{Salt: salt, Nonce: nonce, Ciphertext: ciphertext, Argon2: wp.Argon2}, nil
}

// deriveKey runs the password through the configured KDF, using argon2id
// unless useArgon2 is false, in which case it falls back to PBKDF2-SHA256.
func deriveKey(password, salt []byte, kdf config.KDFParams, useArgon2 bool) []byte {
	if useArgon2 {
		return argon2.IDKey(password, salt, kdf.Argon2Time, kdf.Argon2Memory, kdf.Argon2Threads, kdf.Argon2KeyLen)
	}
	return pbkdf2Key(password, salt, kdf)
}

func pbkdf2Key(password, salt []byte, kdf config.KDFParams) []byte {
	return pbkdf2.Key(password, salt, kdf.PBKDF2Iterations, int(kdf.Argon2KeyLen), sha256.New)
}

// encodeIDs serialises an ordered share-ID list as a sequence of
// varint-encoded uint32s, preserving list order exactly -- the order
// itself is significant (it is the chunk ordering used by
// pkg/vaultmap's deterministic Fisher-Yates), so this is a plain
// per-element encoding, not a delta-over-sorted-values scheme.
func encodeIDs(ids []uint32) []byte {
	buf := make([]byte, 0, len(ids)*5+binary.MaxVarintLen32)
	var tmp [binary.MaxVarintLen32]byte
	n := binary.PutUvarint(tmp[:], uint64(len(ids)))
	buf = append(buf, tmp[:n]...)
	for _, id := range ids {
		n := binary.PutUvarint(tmp[:], uint64(id))
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func decodeIDs(data []byte) ([]uint32, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("mapkey: malformed share-ID list length")
	}
	data = data[n:]
	ids := make([]uint32, 0, count)
	for i := uint64(0); i < count; i++ {
		v, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errors.New("mapkey: malformed share-ID list entry")
		}
		ids = append(ids, uint32(v))
		data = data[n:]
	}
	if len(data) != 0 {
		return nil, errors.New("mapkey: trailing data after share-ID list")
	}
	return ids, nil
}

// Encode seals an ordered share-ID list under password, returning the
// partition-map-key as a hyphen-grouped base64 string suitable for
// printing on paper.
func Encode(ids []uint32, password []byte, kdf config.KDFParams, r io.Reader) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return "", errors.Wrap(err, "generate kdf salt")
	}
	key := deriveKey(password, salt, kdf, true)

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", errors.Wrap(err, "construct aead")
	}
	plaintext := encodeIDs(ids)
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	p := packet{Salt: salt, Nonce: nonce, Ciphertext: ciphertext, Argon2: true}
	body, err := json.Marshal(p.toWire())
	if err != nil {
		return "", errors.Wrap(err, "marshal partition-map-key packet")
	}

	encoded := base64.RawURLEncoding.EncodeToString(body)
	return group(encoded), nil
}

// Decode recovers the ordered share-ID list from a partition-map-key
// string and password. A wrong password must not be distinguishable
// from a malformed or tampered key: both return
// vaulterrors.ErrDecryption (structural parse failures of the outer
// base64/JSON envelope, which cannot happen for a genuine key regardless
// of password, are reported as vaulterrors.ErrVaultFormat instead).
func Decode(s string, password []byte, kdf config.KDFParams) ([]uint32, error) {
	body, err := base64.RawURLEncoding.DecodeString(ungroup(s))
	if err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "decode partition-map-key: %v", err)
	}
	var wp wirePacket
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "unmarshal partition-map-key: %v", err)
	}
	p, err := wp.toPacket()
	if err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "decode partition-map-key fields: %v", err)
	}

	key := deriveKey(password, p.Salt, kdf, p.Argon2)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "construct aead")
	}
	plaintext, err := aead.Open(nil, p.Nonce, p.Ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(vaulterrors.ErrDecryption, "open partition-map-key")
	}

	ids, err := decodeIDs(plaintext)
	if err != nil {
		return nil, errors.Wrap(vaulterrors.ErrDecryption, "decode share-ID list")
	}
	return ids, nil
}

// group inserts a hyphen every groupSize characters for readability on
// paper; ungroup removes them again before decoding.
func group(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i += groupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + groupSize
		if end > len(s) {
			end = len(s)
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}

func ungroup(s string) string {
	return strings.ReplaceAll(s, "-", "")
}
