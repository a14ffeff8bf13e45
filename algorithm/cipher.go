// Package algorithm is the crypto primitives facade: a uniform, capability-
// style interface over block ciphers, hashes, public-key operations and the
// CSPRNG. Packet and pipeline code in this module run their cipher and
// public-key operations through here (they import crypto/rsa and similar
// packages only for key types), so that an
// unknown or disabled algorithm fails uniformly with CryptoUnavailable
// instead of a panic or a type assertion failure.
package algorithm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"

	pgperrors "github.com/pgpflow/openpgp/errors"
	"golang.org/x/crypto/cast5"
)

// CipherFunction identifies a symmetric cipher, numbered per RFC 4880
// section 9.2.
type CipherFunction uint8

const (
	CipherPlaintext CipherFunction = 0
	Cipher3DES      CipherFunction = 2
	CipherCAST5     CipherFunction = 3
	CipherAES128    CipherFunction = 7
	CipherAES192    CipherFunction = 8
	CipherAES256    CipherFunction = 9
)

// KeySize returns the session-key length in bytes for alg, or 0 if alg is
// unknown.
func (alg CipherFunction) KeySize() int {
	switch alg {
	case Cipher3DES:
		return 24
	case CipherCAST5:
		return 16
	case CipherAES128:
		return 16
	case CipherAES192:
		return 24
	case CipherAES256:
		return 32
	default:
		return 0
	}
}

// BlockSize returns the cipher's block size in bytes, or 0 if unknown.
func (alg CipherFunction) BlockSize() int {
	switch alg {
	case Cipher3DES, CipherCAST5:
		return 8
	case CipherAES128, CipherAES192, CipherAES256:
		return 16
	default:
		return 0
	}
}

func (alg CipherFunction) new(key []byte) (cipher.Block, error) {
	switch alg {
	case Cipher3DES:
		return des.NewTripleDESCipher(key)
	case CipherCAST5:
		return cast5.NewCipher(key)
	case CipherAES128, CipherAES192, CipherAES256:
		return aes.NewCipher(key)
	default:
		return nil, pgperrors.CryptoUnavailable("symmetric cipher")
	}
}

// CFBEncrypt runs the OpenPGP variant of CFB mode (RFC 4880 section 13.9):
// a standard CFB stream, but the caller supplies iv as all-zero and the
// random-prefix-plus-quick-check octets are part of the plaintext being
// encrypted, not a true IV. Kept distinct from crypto/cipher's CFB to make
// that convention explicit at call sites.
func (alg CipherFunction) CFBEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := alg.new(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out, plaintext)
	return out, nil
}

// CFBDecrypt is the inverse of CFBEncrypt.
func (alg CipherFunction) CFBDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := alg.new(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, ciphertext)
	return out, nil
}

// KeyWrap wraps a key using the RFC 3394 AES key wrap algorithm, as used by
// the composite Kyber768+X25519 PKESK path.
func KeyWrap(kek, plaintext []byte) ([]byte, error) {
	if len(plaintext)%8 != 0 {
		return nil, pgperrors.General("key wrap input must be a multiple of 8 bytes")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	return aesKeyWrap(block, plaintext), nil
}

// KeyUnwrap is the inverse of KeyWrap.
func KeyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped)%8 != 0 || len(wrapped) < 16 {
		return nil, pgperrors.CryptoFailure("malformed key-wrapped data")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	out, ok := aesKeyUnwrap(block, wrapped)
	if !ok {
		return nil, pgperrors.CryptoFailure("key unwrap integrity check failed")
	}
	return out, nil
}

var keyWrapIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

func aesKeyWrap(block cipher.Block, plaintext []byte) []byte {
	n := len(plaintext) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], plaintext[i*8:(i+1)*8])
	}
	var a [8]byte
	copy(a[:], keyWrapIV[:])

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 0; i < n; i++ {
			copy(buf[:8], a[:])
			copy(buf[8:], r[i][:])
			block.Encrypt(buf, buf)
			t := uint64(n*j + i + 1)
			var tb [8]byte
			for k := 0; k < 8; k++ {
				tb[7-k] = byte(t >> (8 * k))
			}
			for k := range a {
				a[k] = buf[k] ^ tb[k]
			}
			copy(r[i][:], buf[8:])
		}
	}
	out := make([]byte, 8+len(plaintext))
	copy(out[:8], a[:])
	for i := 0; i < n; i++ {
		copy(out[8+i*8:], r[i][:])
	}
	return out
}

func aesKeyUnwrap(block cipher.Block, wrapped []byte) ([]byte, bool) {
	n := len(wrapped)/8 - 1
	var a [8]byte
	copy(a[:], wrapped[:8])
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], wrapped[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n - 1; i >= 0; i-- {
			t := uint64(n*j + i + 1)
			var tb [8]byte
			for k := 0; k < 8; k++ {
				tb[7-k] = byte(t >> (8 * k))
			}
			var ax [8]byte
			for k := range a {
				ax[k] = a[k] ^ tb[k]
			}
			copy(buf[:8], ax[:])
			copy(buf[8:], r[i][:])
			block.Decrypt(buf, buf)
			copy(a[:], buf[:8])
			copy(r[i][:], buf[8:])
		}
	}
	if a != keyWrapIV {
		return nil, false
	}
	out := make([]byte, n*8)
	for i := 0; i < n; i++ {
		copy(out[i*8:], r[i][:])
	}
	return out, true
}
