package algorithm

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"math/big"

	pgperrors "github.com/pgpflow/openpgp/errors"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// PublicKeyAlgorithm identifies a public-key algorithm, numbered per RFC
// 4880 section 9.1, plus one experimental composite value in the
// private-use range for a Kyber768+X25519 KEM.
type PublicKeyAlgorithm uint8

const (
	PubKeyAlgoRSA             PublicKeyAlgorithm = 1
	PubKeyAlgoRSAEncryptOnly  PublicKeyAlgorithm = 2
	PubKeyAlgoRSASignOnly     PublicKeyAlgorithm = 3
	PubKeyAlgoElGamal         PublicKeyAlgorithm = 16
	PubKeyAlgoDSA             PublicKeyAlgorithm = 17
	PubKeyAlgoECDH            PublicKeyAlgorithm = 18
	PubKeyAlgoECDSA           PublicKeyAlgorithm = 19
	PubKeyAlgoEdDSA           PublicKeyAlgorithm = 22
	PubKeyAlgoKyber768X25519  PublicKeyAlgorithm = 105
)

// CanEncrypt reports whether alg is ever usable for session-key encryption.
func (alg PublicKeyAlgorithm) CanEncrypt() bool {
	switch alg {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoElGamal, PubKeyAlgoECDH, PubKeyAlgoKyber768X25519:
		return true
	default:
		return false
	}
}

// CanSign reports whether alg is ever usable for signing.
func (alg PublicKeyAlgorithm) CanSign() bool {
	switch alg {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly, PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		return true
	default:
		return false
	}
}

// RSAEncrypt wraps an RFC-4880-style session-key payload (symAlg | key |
// checksum) under an RSA public key. OpenPGP RSA encryption is PKCS#1 v1.5,
// not OAEP — this is a wire-format constraint, not a cipher choice.
func RSAEncrypt(pub *rsa.PublicKey, payload []byte) ([]byte, error) {
	c, err := rsa.EncryptPKCS1v15(Random, pub, payload)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	return c, nil
}

// RSADecrypt is the inverse of RSAEncrypt.
func RSADecrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	m, err := rsa.DecryptPKCS1v15(Random, priv, ciphertext)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	return m, nil
}

// RSASign signs a digest already reduced by hashAlg.
func RSASign(priv *rsa.PrivateKey, hashAlg HashFunction, digest []byte) ([]byte, error) {
	ch, err := hashAlg.CryptoHash()
	if err != nil {
		return nil, err
	}
	sig, err := rsa.SignPKCS1v15(Random, priv, ch, digest)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	return sig, nil
}

// RSAVerify verifies an RSA PKCS#1 v1.5 signature over digest.
func RSAVerify(pub *rsa.PublicKey, hashAlg HashFunction, digest, sig []byte) bool {
	ch, err := hashAlg.CryptoHash()
	if err != nil {
		return false
	}
	return rsa.VerifyPKCS1v15(pub, ch, digest, sig) == nil
}

// DSASign returns the (r, s) pair of a DSA signature over digest.
func DSASign(priv *dsa.PrivateKey, digest []byte) (r, s *big.Int, err error) {
	r, s, err = dsa.Sign(Random, priv, digest)
	if err != nil {
		return nil, nil, pgperrors.CryptoFailure(err.Error())
	}
	return r, s, nil
}

// DSAVerify checks a DSA (r, s) signature over digest.
func DSAVerify(pub *dsa.PublicKey, digest []byte, r, s *big.Int) bool {
	return dsa.Verify(pub, digest, r, s)
}

// ECDSASign returns the (r, s) pair of an ECDSA signature over digest.
func ECDSASign(priv *ecdsa.PrivateKey, digest []byte) (r, s *big.Int, err error) {
	r, s, err = ecdsa.Sign(Random, priv, digest)
	if err != nil {
		return nil, nil, pgperrors.CryptoFailure(err.Error())
	}
	return r, s, nil
}

// ECDSAVerify checks an ECDSA (r, s) signature over digest.
func ECDSAVerify(pub *ecdsa.PublicKey, digest []byte, r, s *big.Int) bool {
	return ecdsa.Verify(pub, digest, r, s)
}

// EdDSASign signs digest with Ed25519. RFC 4880's EdDSA profile signs the
// pre-hashed document digest rather than the raw message; ed25519.Sign is
// used here over that digest, which is the same simplification the rest of
// this facade makes for every PK algorithm (operate on digests, not raw
// documents) and keeps one signing code path for every hash algorithm.
func EdDSASign(priv ed25519.PrivateKey, digest []byte) (sig []byte, err error) {
	return ed25519.Sign(priv, digest), nil
}

// EdDSAVerify checks an Ed25519 signature over digest.
func EdDSAVerify(pub ed25519.PublicKey, digest, sig []byte) bool {
	return ed25519.Verify(pub, digest, sig)
}

// ElGamalEncrypt is not implemented: no ElGamal implementation is wired
// into this module, so the facade surfaces it purely as a capability that
// refuses at runtime.
func ElGamalEncrypt([]byte) error { return pgperrors.CryptoUnavailable("ElGamal") }

// ECDHEncrypt performs an ephemeral X25519 exchange against recipientPub and
// key-wraps payload (the symAlg|key|checksum triple) with the derived key.
// Returns the ephemeral public key and the wrapped payload.
func ECDHEncrypt(recipientPub *[32]byte, payload []byte) (ephemeralPub [32]byte, wrapped []byte, err error) {
	var ephemeralPriv [32]byte
	if _, err = Random.Read(ephemeralPriv[:]); err != nil {
		return ephemeralPub, nil, pgperrors.CryptoFailure(err.Error())
	}
	pub, err := curve25519.X25519(ephemeralPriv[:], curve25519.Basepoint)
	if err != nil {
		return ephemeralPub, nil, pgperrors.CryptoFailure(err.Error())
	}
	copy(ephemeralPub[:], pub)

	shared, err := curve25519.X25519(ephemeralPriv[:], recipientPub[:])
	if err != nil {
		return ephemeralPub, nil, pgperrors.CryptoFailure(err.Error())
	}
	kek, err := ecdhKEK(shared, ephemeralPub[:], recipientPub[:])
	if err != nil {
		return ephemeralPub, nil, err
	}
	wrapped, err = KeyWrap(kek, pad8(payload))
	if err != nil {
		return ephemeralPub, nil, err
	}
	return ephemeralPub, wrapped, nil
}

// ECDHDecrypt is the inverse of ECDHEncrypt.
func ECDHDecrypt(recipientPriv *[32]byte, ephemeralPub [32]byte, wrapped []byte) ([]byte, error) {
	shared, err := curve25519.X25519(recipientPriv[:], ephemeralPub[:])
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	recipientPub, err := curve25519.X25519(recipientPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	kek, err := ecdhKEK(shared, ephemeralPub[:], recipientPub)
	if err != nil {
		return nil, err
	}
	padded, err := KeyUnwrap(kek, wrapped)
	if err != nil {
		return nil, err
	}
	return unpad8(padded), nil
}

// ecdhKEK derives a 256-bit key-encryption key from the X25519 shared
// secret via HKDF-SHA256, binding in both parties' public values so the
// same shared secret under a different pairing derives a different KEK.
func ecdhKEK(shared, ephemeralPub, recipientPub []byte) ([]byte, error) {
	info := append(append([]byte{}, ephemeralPub...), recipientPub...)
	kdf := hkdf.New(sha256.New, shared, nil, info)
	kek := make([]byte, 32)
	if _, err := kdf.Read(kek); err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}
	return kek, nil
}

// pad8 applies PKCS#7-style padding to the next multiple of 8 bytes, as RFC
// 6637 section 8 requires before AES key-wrapping an ECDH session-key
// payload (key wrap only accepts whole 64-bit semiblocks). A full padding
// block is added even when the input is already aligned, so unpad8 can
// always recover the original length from the trailing byte.
func pad8(data []byte) []byte {
	padLen := 8 - len(data)%8
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// unpad8 is the inverse of pad8.
func unpad8(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padLen := int(data[len(data)-1])
	if padLen <= 0 || padLen > 8 || padLen > len(data) {
		return data
	}
	return data[:len(data)-padLen]
}
