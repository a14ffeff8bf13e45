package openpgp

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/packet"
)

func testRSAKey(t *testing.T) *Key {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	now := time.Unix(1700000000, 0)
	return &key.Key{
		Primary: packet.NewRSAPublicKey(now, &priv.PublicKey, false),
		Private: packet.NewRSAPrivateKey(now, priv, false),
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	recipient := testRSAKey(t)
	plaintext := []byte("a message encrypted straight to an RSA-2048 primary key")

	ciphertext, err := Encrypt(plaintext, []*Key{recipient}, nil, nil, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt(ciphertext, []*Key{recipient}, nil, false)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestEncryptDecryptArmoredRoundTrip(t *testing.T) {
	recipient := testRSAKey(t)
	plaintext := []byte("armored round trip payload")

	armored, err := Encrypt(plaintext, []*Key{recipient}, nil, nil, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.HasPrefix(armored, []byte("-----BEGIN PGP MESSAGE-----")) {
		t.Fatalf("expected armored output, got %q", armored[:40])
	}

	got, err := Decrypt(armored, []*Key{recipient}, nil, false)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestEncryptMultiRecipientProducesOnePKESKEach(t *testing.T) {
	alice := testRSAKey(t)
	bob := testRSAKey(t)
	plaintext := []byte("shared secret")

	ciphertext, err := Encrypt(plaintext, []*Key{alice, bob}, nil, nil, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var pkeskCount int
	for _, p := range packet.ParseAll(ciphertext) {
		if _, ok := p.(*packet.EncryptedKey); ok {
			pkeskCount++
		}
	}
	if pkeskCount != 2 {
		t.Fatalf("got %d PKESK packets, want 2", pkeskCount)
	}

	for _, recipient := range []*Key{alice, bob} {
		got, err := Decrypt(ciphertext, []*Key{recipient}, nil, false)
		if err != nil {
			t.Fatalf("Decrypt for one recipient: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch for one recipient: got %q, want %q", got, plaintext)
		}
	}
}

func TestSignVerifyDetached(t *testing.T) {
	signer := testRSAKey(t)
	data := []byte("document to be signed, not encrypted")

	sig, err := Sign(data, signer, nil, 0, true, false)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(data, sig, []*Key{signer}, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestSignVerifyDetachedRejectsTamperedData(t *testing.T) {
	signer := testRSAKey(t)
	data := []byte("original content")

	sig, err := Sign(data, signer, nil, 0, true, false)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := []byte("different content")
	if _, err := Verify(tampered, sig, []*Key{signer}, nil); err == nil {
		t.Fatal("expected verification failure against tampered data")
	}
}

func TestEncryptSignedThenDecryptVerifies(t *testing.T) {
	signer := testRSAKey(t)
	recipient := testRSAKey(t)
	plaintext := []byte("encrypted and signed in one pass")

	ciphertext, err := Encrypt(plaintext, []*Key{recipient}, signer, nil, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt(ciphertext, []*Key{recipient, signer}, nil, true)
	if err != nil {
		t.Fatalf("Decrypt with verify: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}

	ok, err := Verify(ciphertext, nil, []*Key{recipient, signer}, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected embedded signature to verify")
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	recipient := testRSAKey(t)
	stranger := testRSAKey(t)
	plaintext := []byte("for your eyes only")

	ciphertext, err := Encrypt(plaintext, []*Key{recipient}, nil, nil, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := Decrypt(ciphertext, []*Key{stranger}, nil, false); err == nil {
		t.Fatal("expected decryption to fail with a key that holds no matching PKESK")
	}
}
