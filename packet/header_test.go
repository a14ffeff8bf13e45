package packet

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	cases := []int{0, 1, 191, 192, 8383, 8384, 70000}
	for _, bodyLen := range cases {
		header := serializeHeader(TagLiteralData, bodyLen)
		data := append(append([]byte{}, header...), make([]byte, bodyLen)...)

		tag, bodyStart, bodyEnd, consumed, err := parseHeader(data, 0)
		if err != nil {
			t.Fatalf("bodyLen=%d: parseHeader: %v", bodyLen, err)
		}
		if tag != TagLiteralData {
			t.Fatalf("bodyLen=%d: got tag %d, want %d", bodyLen, tag, TagLiteralData)
		}
		if bodyEnd-bodyStart != bodyLen {
			t.Fatalf("bodyLen=%d: body range is %d bytes", bodyLen, bodyEnd-bodyStart)
		}
		if consumed != len(data) {
			t.Fatalf("bodyLen=%d: consumed %d, want %d", bodyLen, consumed, len(data))
		}
	}
}

func TestParseHeaderOldFormat(t *testing.T) {
	// Old-format tag 13 (UserID), one-octet length, 5-byte body:
	// 10 TTTT LL = 1011 0100 = 0xB4.
	data := append([]byte{0xB4, 0x05}, []byte("alice")...)
	tag, bodyStart, bodyEnd, consumed, err := parseHeader(data, 0)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if tag != TagUserId {
		t.Fatalf("got tag %d, want %d", tag, TagUserId)
	}
	if string(data[bodyStart:bodyEnd]) != "alice" {
		t.Fatalf("got body %q, want %q", data[bodyStart:bodyEnd], "alice")
	}
	if consumed != len(data) {
		t.Fatalf("consumed %d, want %d", consumed, len(data))
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	_, _, _, consumed, err := parseHeader([]byte{0xC1, 0xFF, 0x00}, 0)
	if err == nil {
		t.Fatal("expected error for truncated new-format length")
	}
	if consumed < 1 {
		t.Fatalf("consumed must be >= 1 so callers can resynchronize, got %d", consumed)
	}
}

func TestParseHeaderInvalidTagByte(t *testing.T) {
	_, _, _, consumed, err := parseHeader([]byte{0x00}, 0)
	if err == nil {
		t.Fatal("expected error for invalid tag byte")
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want 1", consumed)
	}
}
