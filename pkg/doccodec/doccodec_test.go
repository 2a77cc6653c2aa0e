package doccodec

import (
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	value := map[string]interface{}{"hello": "world", "count": float64(3)}

	chunks, err := Encode(value, 5)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(chunks) != 5 {
		t.Fatalf("len(chunks) = %d, want 5", len(chunks))
	}

	result := Decode(chunks)
	if !result.Decoded {
		t.Fatal("expected Decode to succeed")
	}
	if !reflect.DeepEqual(result.Value, value) {
		t.Fatalf("decoded value = %#v, want %#v", result.Value, value)
	}
}

func TestEncodeExactFitStillPads(t *testing.T) {
	// Padded base64 lengths are multiples of 4, so the tightest fit in one
	// chunk is 60 bytes: a 43-character string marshals to 45 JSON bytes
	// and 60 base64 bytes, which still gets the padding marker. A
	// 46-character string gives exactly 64 base64 bytes and must fail
	// (no room for the marker).
	value := strings.Repeat("x", 43)
	chunks, err := Encode(value, 1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	result := Decode(chunks)
	if !result.Decoded || result.Value != value {
		t.Fatalf("round trip failed: %#v", result)
	}
	if _, err := Encode(strings.Repeat("x", 46), 1); err != ErrCapacity {
		t.Fatalf("expected ErrCapacity for a 64-byte base64 form, got %v", err)
	}
}

func TestEncodeOverCapacityFails(t *testing.T) {
	big := make(map[string]string)
	big["payload"] = string(make([]byte, 1000))
	if _, err := Encode(big, 1); err == nil {
		t.Fatal("expected ErrCapacity for oversized document")
	}
}

func TestDecodeCorruptPaddingIsUndecodable(t *testing.T) {
	chunks, err := Encode("hello", 2)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Corrupt the final byte so it is no longer all-zero-then-marker.
	chunks[len(chunks)-1][ChunkSize-1] = 0xFF

	result := Decode(chunks)
	if result.Decoded {
		t.Fatal("expected corrupted padding to be undecodable")
	}
	if result.Raw == nil {
		t.Fatal("expected undecodable Result to still carry Raw bytes")
	}
}

func TestDecodeGarbageChunksIsUndecodable(t *testing.T) {
	var chunks [3][ChunkSize]byte
	for i := range chunks {
		for j := range chunks[i] {
			chunks[i][j] = byte(i*7 + j*13)
		}
	}
	result := Decode(chunks[:])
	if result.Decoded {
		t.Fatal("expected random garbage chunks to be undecodable")
	}
}

func TestDecodeValidBase64InvalidJSONIsUndecodable(t *testing.T) {
	// "AAAA" is valid base64 but decodes to bytes that are not valid JSON.
	raw := []byte("AAAA")
	padded, err := pad(raw, ChunkSize)
	if err != nil {
		t.Fatalf("pad: %v", err)
	}
	var chunk [ChunkSize]byte
	copy(chunk[:], padded)

	result := Decode([][ChunkSize]byte{chunk})
	if result.Decoded {
		t.Fatal("expected invalid JSON payload to be undecodable")
	}
}
