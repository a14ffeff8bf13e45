// Package encoding implements the length-prefixed field types used inside
// packet bodies: multi-precision integers (MPI, RFC 4880 section 3.2),
// fixed-length octet arrays (fingerprints, curve OIDs) and 2-octet
// length-prefixed byte strings (KEM ciphertexts, key-wrapped session keys).
// Adapted from github.com/ProtonMail/go-crypto/openpgp/internal/encoding.
package encoding

import "io"

// Field is any length-prefixed value that can appear inside a packet body.
type Field interface {
	// Bytes returns the decoded value without its length prefix.
	Bytes() []byte
	// BitLength is the size in bits of the decoded value.
	BitLength() uint16
	// EncodedBytes returns the value with its on-wire length prefix.
	EncodedBytes() []byte
	// EncodedLength is the size in bytes of EncodedBytes.
	EncodedLength() uint16
	// ReadFrom consumes the encoded form (prefix and body) from r.
	ReadFrom(r io.Reader) (int64, error)
}
