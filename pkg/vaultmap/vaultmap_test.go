package vaultmap

import (
	"crypto/rand"
	"reflect"
	"testing"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/pkg/mapkey"
)

func testKDF() config.KDFParams {
	p := config.Default()
	p.KDF.Argon2Time = 1
	p.KDF.Argon2Memory = 8 * 1024
	p.KDF.Argon2Threads = 1
	return p.KDF
}

func TestStage1RoundTrip(t *testing.T) {
	kdf := testKDF()
	ids := []uint32{10, 20, 30, 40, 50}
	password := []byte("region password")

	key, err := mapkey.Encode(ids, password, kdf, rand.Reader)
	if err != nil {
		t.Fatalf("mapkey.Encode: %v", err)
	}

	got, err := Stage1(key, password, kdf)
	if err != nil {
		t.Fatalf("Stage1: %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Fatalf("Stage1 = %v, want %v", got, ids)
	}
}

func TestStage1WrongPasswordFails(t *testing.T) {
	kdf := testKDF()
	ids := []uint32{1, 2, 3}
	key, err := mapkey.Encode(ids, []byte("right"), kdf, rand.Reader)
	if err != nil {
		t.Fatalf("mapkey.Encode: %v", err)
	}
	if _, err := Stage1(key, []byte("wrong"), kdf); err == nil {
		t.Fatal("expected Stage1 to fail with wrong password")
	}
}

func TestStage2Deterministic(t *testing.T) {
	kdf := testKDF()
	regionIDs := make([]uint32, 100)
	for i := range regionIDs {
		regionIDs[i] = uint32(i * 3)
	}
	password := []byte("document password")

	got1, err := Stage2(regionIDs, password, 10, kdf)
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	got2, err := Stage2(regionIDs, password, 10, kdf)
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	if !reflect.DeepEqual(got1, got2) {
		t.Fatalf("Stage2 is not deterministic: %v != %v", got1, got2)
	}
	if len(got1) != 10 {
		t.Fatalf("len(Stage2) = %d, want 10", len(got1))
	}
}

func TestStage2DifferentPasswordsDiffer(t *testing.T) {
	kdf := testKDF()
	regionIDs := make([]uint32, 50)
	for i := range regionIDs {
		regionIDs[i] = uint32(i)
	}

	a, err := Stage2(regionIDs, []byte("password-a"), 10, kdf)
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	b, err := Stage2(regionIDs, []byte("password-b"), 10, kdf)
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	if reflect.DeepEqual(a, b) {
		t.Fatal("expected different passwords to select different active shares")
	}
}

func TestStage2RejectsOutOfRangeActiveShares(t *testing.T) {
	kdf := testKDF()
	regionIDs := []uint32{1, 2, 3}
	if _, err := Stage2(regionIDs, []byte("pw"), 4, kdf); err == nil {
		t.Fatal("expected error when activeShares exceeds region size")
	}
	if _, err := Stage2(regionIDs, []byte("pw"), 0, kdf); err == nil {
		t.Fatal("expected error when activeShares is zero")
	}
}

func TestStage2SelectedIDsAreSubsetOfRegion(t *testing.T) {
	kdf := testKDF()
	regionIDs := make([]uint32, 30)
	for i := range regionIDs {
		regionIDs[i] = uint32(i + 1000)
	}
	selected, err := Stage2(regionIDs, []byte("pw"), 8, kdf)
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	set := make(map[uint32]bool)
	for _, id := range regionIDs {
		set[id] = true
	}
	seen := make(map[uint32]bool)
	for _, id := range selected {
		if !set[id] {
			t.Fatalf("selected ID %d not present in region", id)
		}
		if seen[id] {
			t.Fatalf("selected ID %d repeated", id)
		}
		seen[id] = true
	}
}
