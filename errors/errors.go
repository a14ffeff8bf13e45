// Package errors defines the closed taxonomy of error kinds that the
// message pipeline surfaces to callers. Every public operation in this
// module reports failures through one of these types rather than an
// unstructured error string, mirroring the typed-error style of
// github.com/ProtonMail/go-crypto/openpgp/errors.
package errors

import "strconv"

// InvalidMessage signals a structural parse failure or a message with no
// usable content (no PKESK matched, no SEIPD/SED found, and so on).
type InvalidMessage string

func (e InvalidMessage) Error() string { return "openpgp: invalid message: " + string(e) }

// InvalidSignature signals a signature that was present but did not verify,
// or whose issuer key could not be found.
type InvalidSignature string

func (e InvalidSignature) Error() string { return "openpgp: invalid signature: " + string(e) }

// NotSigned signals that verification was requested but the message carried
// no signature at all.
type NotSigned string

func (e NotSigned) Error() string {
	if e == "" {
		return "openpgp: message is not signed"
	}
	return "openpgp: message is not signed: " + string(e)
}

// PassphraseRequired signals that a locked secret key was needed and the
// passphrase callback returned nothing for it.
type PassphraseRequired string

func (e PassphraseRequired) Error() string { return "openpgp: passphrase required: " + string(e) }

// PassphraseIncorrect signals that a supplied passphrase failed the secret
// key's S2K integrity check.
type PassphraseIncorrect string

func (e PassphraseIncorrect) Error() string { return "openpgp: incorrect passphrase: " + string(e) }

// IntegrityCheckFailed signals an MDC mismatch on a SEIPD packet. Fatal:
// callers must never see partial plaintext alongside this error.
type IntegrityCheckFailed string

func (e IntegrityCheckFailed) Error() string {
	return "openpgp: integrity check failed: " + string(e)
}

// CryptoUnavailable signals an algorithm identifier with no implementation
// behind the crypto primitives facade.
type CryptoUnavailable string

func (e CryptoUnavailable) Error() string { return "openpgp: crypto primitive unavailable: " + string(e) }

// CryptoFailure signals that the primitive layer rejected an operation
// (bad key, bad ciphertext shape, signature math failure).
type CryptoFailure string

func (e CryptoFailure) Error() string { return "openpgp: crypto operation failed: " + string(e) }

// UnsupportedAlgorithm signals a recognized but unimplemented algorithm
// identifier, distinct from CryptoUnavailable in that the identifier is
// known but deliberately out of scope (e.g. BZIP2 compression on emit).
type UnsupportedAlgorithm string

func (e UnsupportedAlgorithm) Error() string {
	return "openpgp: unsupported algorithm: " + string(e)
}

// General is the fallback error kind for conditions that do not fit the
// other categories.
type General string

func (e General) Error() string { return "openpgp: " + string(e) }

// StructuralError reports a packet that is grammatically malformed
// (truncated, wrong tag, or length overrun).
type StructuralError string

func (e StructuralError) Error() string { return "openpgp: structural error: " + string(e) }

// UnknownIssuer reports a signature or ESK packet whose key ID does not
// match anything in the provided key set.
type UnknownIssuer uint64

func (e UnknownIssuer) Error() string {
	return "openpgp: unknown issuer key id " + strconv.FormatUint(uint64(e), 16)
}
