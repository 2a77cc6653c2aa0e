package mapkey

import (
	"crypto/rand"
	"reflect"
	"testing"

	"github.com/shardvault/shardvault/internal/config"
)

func testKDF() config.KDFParams {
	p := config.Default()
	// Use minimal work factors so the tests run quickly.
	p.KDF.Argon2Time = 1
	p.KDF.Argon2Memory = 8 * 1024
	p.KDF.Argon2Threads = 1
	return p.KDF
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kdf := testKDF()
	ids := []uint32{5, 1000000, 3, 7, 2}
	password := []byte("correct horse battery staple")

	key, err := Encode(ids, password, kdf, rand.Reader)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(key, password, kdf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Fatalf("decoded IDs = %v, want %v (order must be preserved)", got, ids)
	}
}

func TestDecodeWrongPassword(t *testing.T) {
	kdf := testKDF()
	ids := []uint32{1, 2, 3}

	key, err := Encode(ids, []byte("right password"), kdf, rand.Reader)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := Decode(key, []byte("wrong password"), kdf); err == nil {
		t.Fatal("expected Decode with wrong password to fail")
	}
}

func TestEncodeKeyIsHyphenGrouped(t *testing.T) {
	kdf := testKDF()
	key, err := Encode([]uint32{1, 2, 3}, []byte("pw"), kdf, rand.Reader)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(key) <= groupSize {
		return
	}
	found := false
	for _, c := range key {
		if c == '-' {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected encoded partition-map-key to contain hyphen separators")
	}
}

func TestDecodeTamperedKeyFails(t *testing.T) {
	kdf := testKDF()
	key, err := Encode([]uint32{1, 2, 3}, []byte("pw"), kdf, rand.Reader)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tampered := []rune(key)
	for i, c := range tampered {
		if c != '-' {
			if c == 'A' {
				tampered[i] = 'B'
			} else {
				tampered[i] = 'A'
			}
			break
		}
	}
	if _, err := Decode(string(tampered), []byte("pw"), kdf); err == nil {
		t.Fatal("expected Decode of tampered key to fail")
	}
}

func TestEncodeIDsPreservesOrderNotSorted(t *testing.T) {
	ids := []uint32{9, 1, 5}
	encoded := encodeIDs(ids)
	decoded, err := decodeIDs(encoded)
	if err != nil {
		t.Fatalf("decodeIDs: %v", err)
	}
	if !reflect.DeepEqual(decoded, ids) {
		t.Fatalf("decodeIDs = %v, want %v", decoded, ids)
	}
}
