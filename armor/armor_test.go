package armor

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrapExtractRoundTrip(t *testing.T) {
	payload := []byte{0xC1, 0x04, 0xDE, 0xAD, 0xBE, 0xEF}
	wrapped := Wrap(Message, payload)

	if !strings.HasPrefix(wrapped, "-----BEGIN PGP MESSAGE-----") {
		t.Fatalf("wrapped output missing BEGIN marker: %q", wrapped)
	}
	if !strings.Contains(wrapped, "-----END PGP MESSAGE-----") {
		t.Fatalf("wrapped output missing END marker: %q", wrapped)
	}

	if !IsArmored([]byte(wrapped)) {
		t.Fatal("IsArmored reported false for armored input")
	}

	blocks, err := ExtractBlocks([]byte(wrapped))
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if !bytes.Equal(blocks[0], payload) {
		t.Fatalf("round trip mismatch: got %x, want %x", blocks[0], payload)
	}
}

func TestExtractBlocksPassThroughWhenUnarmored(t *testing.T) {
	raw := []byte{0x94, 0x01, 0x02}
	if IsArmored(raw) {
		t.Fatal("IsArmored reported true for binary input")
	}
	blocks, err := ExtractBlocks(raw)
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(blocks) != 1 || !bytes.Equal(blocks[0], raw) {
		t.Fatalf("expected pass-through of raw input, got %v", blocks)
	}
}

func TestExtractBlocksMultiple(t *testing.T) {
	a := Wrap(Signature, []byte("first"))
	b := Wrap(Signature, []byte("second"))
	combined := []byte(a + b)

	blocks, err := ExtractBlocks(combined)
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if string(blocks[0]) != "first" || string(blocks[1]) != "second" {
		t.Fatalf("unexpected block contents: %q, %q", blocks[0], blocks[1])
	}
}

func TestExtractBlocksRejectsBadCRC(t *testing.T) {
	wrapped := Wrap(Message, []byte("hello world"))
	// Change the first base64 character of the payload to another valid
	// base64 character ('a' -> 'c') without touching the CRC line.
	lines := strings.Split(wrapped, "\r\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "-----") && !strings.HasPrefix(line, "=") {
			corrupted := []byte(line)
			corrupted[0] ^= 0x02
			lines[i] = string(corrupted)
			break
		}
	}
	tampered := strings.Join(lines, "\r\n")

	if _, err := ExtractBlocks([]byte(tampered)); err == nil {
		t.Fatal("expected CRC mismatch error, got nil")
	}
}

func TestExtractBlocksNoEndMarker(t *testing.T) {
	broken := "-----BEGIN PGP MESSAGE-----\r\n\r\nSGVsbG8=\r\n"
	if _, err := ExtractBlocks([]byte(broken)); err == nil {
		t.Fatal("expected error for missing END marker")
	}
}
