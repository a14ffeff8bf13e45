// Package openpgp is the message-processing core of an OpenPGP
// implementation: packet codec, armor boundary, key selection and the
// encrypt/decrypt/sign/verify pipeline, against RFC 4880 (classic V4 keys,
// SEIPD v1 + MDC). Adapted from the top-level
// github.com/ProtonMail/go-crypto/openpgp public surface, collapsed to five
// top-level operations: ReadKeys, Encrypt, Decrypt, Sign and Verify.
package openpgp

import (
	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/message"
)

// Key re-exports the key-selection type callers construct via ReadKeys.
type Key = key.Key

// PassphraseFunc retrieves the passphrase for a locked secret key.
type PassphraseFunc = message.PassphraseFunc

// ReadKeys parses a binary or armored keyring into a list of Key. Never
// fails on malformed input: unparseable material is simply dropped.
func ReadKeys(data []byte) ([]*Key, error) {
	return key.ReadKeys(data)
}

// ReadKeysFromFile reads and parses a keyring file. A leading "~" is
// expanded to the home directory; directories and unreadable files yield
// an empty key list rather than an error.
func ReadKeysFromFile(path string) ([]*Key, error) {
	return key.ReadKeysFromFile(path)
}

// Encrypt encrypts data to every usable key in keys, optionally signing
// with signKey first. passphraseCb, if non-nil, unlocks signKey when it
// is passphrase-protected.
func Encrypt(data []byte, keys []*Key, signKey *Key, passphraseCb PassphraseFunc, armored bool) ([]byte, error) {
	return message.Encrypt(data, keys, message.Options{
		SignWith:   signKey,
		Passphrase: passphraseCb,
		Armored:    armored,
	})
}

// Decrypt decrypts data. If verify is set, a trailing embedded Signature
// is also checked; verification failure is reported through the error
// return rather than a separate bool.
func Decrypt(data []byte, keys []*Key, passphraseCb PassphraseFunc, verify bool) ([]byte, error) {
	return message.Decrypt(data, keys, passphraseCb, verify)
}

// Sign computes a V4 signature over data with signingKey's signing-capable
// packet, using hashAlg (or SHA-512 if zero). detached emits a lone
// Signature packet; otherwise the result is
// OnePassSignature|LiteralData|Signature.
func Sign(data []byte, signingKey *Key, passphraseCb PassphraseFunc, hashAlg algorithm.HashFunction, detached, armored bool) ([]byte, error) {
	return message.Sign(data, signingKey, message.Options{
		Passphrase: passphraseCb,
		HashAlgo:   hashAlg,
		Armored:    armored,
	}, detached)
}

// Verify checks data against detachedSig if one is supplied, otherwise
// treats data as a full (possibly encrypted) message and verifies its
// embedded signature.
func Verify(data []byte, detachedSig []byte, keys []*Key, passphraseCb PassphraseFunc) (bool, error) {
	return message.Verify(data, detachedSig, keys, passphraseCb)
}
