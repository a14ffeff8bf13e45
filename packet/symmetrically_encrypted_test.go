package packet

import (
	"bytes"
	"testing"

	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

func TestSEIPDRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, algorithm.CipherAES256.KeySize())
	inner := []byte("literal packet bytes go here")

	seipd, err := EncryptSEIPD(algorithm.CipherAES256, key, inner)
	if err != nil {
		t.Fatalf("EncryptSEIPD: %v", err)
	}
	if seipd.Version != 1 {
		t.Fatalf("got version %d, want 1", seipd.Version)
	}

	got, err := seipd.Decrypt(algorithm.CipherAES256, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, inner) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, inner)
	}
}

func TestSEIPDPacketRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, algorithm.CipherAES128.KeySize())
	seipd, err := EncryptSEIPD(algorithm.CipherAES128, key, []byte("x"))
	if err != nil {
		t.Fatalf("EncryptSEIPD: %v", err)
	}

	wire, err := Serialize(seipd)
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
	got, ok := p.(*SymmetricallyEncryptedIntegrityProtected)
	if !ok {
		t.Fatalf("got %T, want *SymmetricallyEncryptedIntegrityProtected", p)
	}
	plain, err := got.Decrypt(algorithm.CipherAES128, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(plain) != "x" {
		t.Fatalf("got %q, want %q", plain, "x")
	}
}

func TestSEIPDWrongKeyFailsIntegrityCheck(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, algorithm.CipherAES256.KeySize())
	wrongKey := bytes.Repeat([]byte{0x02}, algorithm.CipherAES256.KeySize())

	seipd, err := EncryptSEIPD(algorithm.CipherAES256, key, []byte("secret payload"))
	if err != nil {
		t.Fatalf("EncryptSEIPD: %v", err)
	}

	_, err = seipd.Decrypt(algorithm.CipherAES256, wrongKey)
	if err == nil {
		t.Fatal("expected integrity check failure with wrong key")
	}
	if _, ok := err.(pgperrors.IntegrityCheckFailed); !ok {
		t.Fatalf("got error type %T, want pgperrors.IntegrityCheckFailed", err)
	}
}

func TestSEIPDMDCStripAttackDetected(t *testing.T) {
	key := bytes.Repeat([]byte{0x03}, algorithm.CipherAES256.KeySize())
	seipd, err := EncryptSEIPD(algorithm.CipherAES256, key, []byte("attack me if you can"))
	if err != nil {
		t.Fatalf("EncryptSEIPD: %v", err)
	}

	blockSize := algorithm.CipherAES256.BlockSize()
	plain, err := algorithm.CipherAES256.CFBDecrypt(key, make([]byte, blockSize), seipd.Ciphertext)
	if err != nil {
		t.Fatalf("CFBDecrypt: %v", err)
	}
	if len(plain) < 22 {
		t.Fatal("plaintext too short to strip MDC from")
	}
	stripped := plain[:len(plain)-22]
	tamperedCiphertext, err := algorithm.CipherAES256.CFBEncrypt(key, make([]byte, blockSize), stripped)
	if err != nil {
		t.Fatalf("CFBEncrypt: %v", err)
	}

	tampered := &SymmetricallyEncryptedIntegrityProtected{Version: 1, Ciphertext: tamperedCiphertext}
	_, err = tampered.Decrypt(algorithm.CipherAES256, key)
	if err == nil {
		t.Fatal("expected MDC-strip attack to be detected")
	}
	if _, ok := err.(pgperrors.IntegrityCheckFailed); !ok {
		t.Fatalf("got error type %T, want pgperrors.IntegrityCheckFailed", err)
	}
}

func TestSEIPDRejectsUnsupportedVersion(t *testing.T) {
	var s SymmetricallyEncryptedIntegrityProtected
	if err := s.parseBody([]byte{2, 0, 0, 0}); err == nil {
		t.Fatal("expected error for unsupported SEIPD version")
	}
}

func TestSEDRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x55}, algorithm.CipherCAST5.KeySize())
	inner := []byte("legacy format payload")

	sed, err := EncryptSED(algorithm.CipherCAST5, key, inner)
	if err != nil {
		t.Fatalf("EncryptSED: %v", err)
	}
	got, err := sed.Decrypt(algorithm.CipherCAST5, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, inner) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, inner)
	}
}
