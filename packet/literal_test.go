package packet

import "testing"

func TestLiteralDataRoundTrip(t *testing.T) {
	l := &LiteralData{
		Format:   FormatBinary,
		FileName: "report.txt",
		Time:     1700000000,
		Body:     []byte("hello, world"),
	}
	body, err := l.serializeBody()
	if err != nil {
		t.Fatalf("serializeBody: %v", err)
	}

	var got LiteralData
	if err := got.parseBody(body); err != nil {
		t.Fatalf("parseBody: %v", err)
	}
	if got.Format != l.Format || got.FileName != l.FileName || got.Time != l.Time || string(got.Body) != string(l.Body) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, *l)
	}
}

func TestLiteralDataSignedOctetsBinaryPassesThrough(t *testing.T) {
	l := &LiteralData{Format: FormatBinary, Body: []byte("line one\nline two\n")}
	if string(l.SignedOctets()) != string(l.Body) {
		t.Fatal("binary format should not normalize line endings")
	}
}

func TestLiteralDataSignedOctetsTextNormalizesToCRLF(t *testing.T) {
	l := &LiteralData{Format: FormatText, Body: []byte("line one\r\nline two\nline three\n")}
	want := "line one\r\nline two\r\nline three\r\n"
	if got := string(l.SignedOctets()); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLiteralDataParseBodyShort(t *testing.T) {
	var l LiteralData
	if err := l.parseBody([]byte{}); err == nil {
		t.Fatal("expected error on empty body")
	}
	if err := l.parseBody([]byte{'b'}); err == nil {
		t.Fatal("expected error on body missing filename length")
	}
}
