package algorithm

import (
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/cloudflare/circl/kem/kyber/kyber768"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/sha3"
)

// Kyber768X25519Encrypt implements the composite KEM PKESK path: a
// classical X25519 exchange run side by side with a kyber768
// encapsulation, combined under one KDF tag and used to key-wrap payload.
// recipientX25519Pub is the recipient's 32-byte ECDH public value;
// recipientKyberPub is their serialized kyber768 public key.
func Kyber768X25519Encrypt(recipientX25519Pub [32]byte, recipientKyberPub []byte, payload []byte) (ephemeralX25519Pub [32]byte, kyberCiphertext []byte, wrapped []byte, err error) {
	var ephemeralPriv [32]byte
	if _, err = Random.Read(ephemeralPriv[:]); err != nil {
		return ephemeralX25519Pub, nil, nil, pgperrors.CryptoFailure(err.Error())
	}
	pub, err := curve25519.X25519(ephemeralPriv[:], curve25519.Basepoint)
	if err != nil {
		return ephemeralX25519Pub, nil, nil, pgperrors.CryptoFailure(err.Error())
	}
	copy(ephemeralX25519Pub[:], pub)

	ecdhShared, err := curve25519.X25519(ephemeralPriv[:], recipientX25519Pub[:])
	if err != nil {
		return ephemeralX25519Pub, nil, nil, pgperrors.CryptoFailure(err.Error())
	}

	scheme := kyber768.Scheme()
	kyberPub, err := scheme.UnmarshalBinaryPublicKey(recipientKyberPub)
	if err != nil {
		return ephemeralX25519Pub, nil, nil, pgperrors.CryptoFailure("malformed kyber768 public key")
	}
	kyberCiphertext, kyberShared, err := scheme.Encapsulate(kyberPub)
	if err != nil {
		return ephemeralX25519Pub, nil, nil, pgperrors.CryptoFailure(err.Error())
	}

	kek := combineSharedSecrets(ecdhShared, kyberShared, ephemeralX25519Pub[:], kyberCiphertext)
	wrapped, err = KeyWrap(kek, pad8(payload))
	if err != nil {
		return ephemeralX25519Pub, nil, nil, err
	}
	return ephemeralX25519Pub, kyberCiphertext, wrapped, nil
}

// Kyber768X25519Decrypt is the inverse of Kyber768X25519Encrypt.
func Kyber768X25519Decrypt(recipientX25519Priv [32]byte, recipientKyberPriv []byte, ephemeralX25519Pub [32]byte, kyberCiphertext, wrapped []byte) ([]byte, error) {
	ecdhShared, err := curve25519.X25519(recipientX25519Priv[:], ephemeralX25519Pub[:])
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}

	scheme := kyber768.Scheme()
	kyberPriv, err := scheme.UnmarshalBinaryPrivateKey(recipientKyberPriv)
	if err != nil {
		return nil, pgperrors.CryptoFailure("malformed kyber768 private key")
	}
	kyberShared, err := scheme.Decapsulate(kyberPriv, kyberCiphertext)
	if err != nil {
		return nil, pgperrors.CryptoFailure(err.Error())
	}

	kek := combineSharedSecrets(ecdhShared, kyberShared, ephemeralX25519Pub[:], kyberCiphertext)
	padded, err := KeyUnwrap(kek, wrapped)
	if err != nil {
		return nil, err
	}
	return unpad8(padded), nil
}

// combineSharedSecrets binds the classical and post-quantum shared secrets
// together with the public transcript (ephemeral key, KEM ciphertext) under
// a single SHA3-256 tag, so recovering either secret alone is not enough to
// derive the key-encryption key.
func combineSharedSecrets(ecdhShared, kyberShared, transcript1, transcript2 []byte) []byte {
	h := sha3.New256()
	h.Write(ecdhShared)
	h.Write(kyberShared)
	h.Write(transcript1)
	h.Write(transcript2)
	return h.Sum(nil)
}
