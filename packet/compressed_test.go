package packet

import (
	"bytes"
	"testing"
)

func TestCompressedDataZLIBRoundTrip(t *testing.T) {
	inner := []byte("the quick brown fox jumps over the lazy dog, repeated, repeated, repeated")
	c, err := NewCompressedData(CompressionZLIB, inner)
	if err != nil {
		t.Fatalf("NewCompressedData: %v", err)
	}
	got, err := c.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, inner) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, inner)
	}
}

func TestCompressedDataZIPRoundTrip(t *testing.T) {
	inner := []byte("deflate-compatible payload")
	c, err := NewCompressedData(CompressionZIP, inner)
	if err != nil {
		t.Fatalf("NewCompressedData: %v", err)
	}
	got, err := c.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, inner) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, inner)
	}
}

func TestCompressedDataNoneRoundTrip(t *testing.T) {
	inner := []byte("uncompressed")
	c, err := NewCompressedData(CompressionNone, inner)
	if err != nil {
		t.Fatalf("NewCompressedData: %v", err)
	}
	got, err := c.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, inner) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, inner)
	}
}

func TestCompressedDataBZIP2EmitRejected(t *testing.T) {
	if _, err := NewCompressedData(CompressionBZIP2, []byte("x")); err == nil {
		t.Fatal("expected BZIP2 emit to be rejected")
	}
}

func TestCompressedDataPacketRoundTrip(t *testing.T) {
	c, err := NewCompressedData(CompressionZLIB, []byte("packet body"))
	if err != nil {
		t.Fatalf("NewCompressedData: %v", err)
	}
	wire, err := Serialize(c)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	p, consumed, err := ParseOne(wire, 0)
	if err != nil {
		t.Fatalf("ParseOne: %v", err)
	}
	if consumed != len(wire) {
		t.Fatalf("consumed %d, want %d", consumed, len(wire))
	}
	got, ok := p.(*CompressedData)
	if !ok {
		t.Fatalf("got %T, want *CompressedData", p)
	}
	plain, err := got.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(plain) != "packet body" {
		t.Fatalf("got %q, want %q", plain, "packet body")
	}
}
