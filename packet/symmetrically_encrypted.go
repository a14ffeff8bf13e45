package packet

import (
	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// SymmetricallyEncrypted is the legacy SED packet (tag 9), RFC 4880 section
// 5.7: raw CFB over randomPrefix|data, with no integrity protection. This
// module accepts it on decrypt but never emits it.
type SymmetricallyEncrypted struct {
	Ciphertext []byte
}

func (s *SymmetricallyEncrypted) Tag() Tag { return TagSymmetricallyEncrypted }

func (s *SymmetricallyEncrypted) parseBody(body []byte) error {
	s.Ciphertext = append([]byte{}, body...)
	return nil
}

func (s *SymmetricallyEncrypted) serializeBody() ([]byte, error) { return s.Ciphertext, nil }

// Decrypt recovers the plaintext inner-packet stream: CFB-decrypt with
// IV=0, verify the 2-octet quick-check repeat of the random prefix's last
// two bytes, and strip the prefix.
func (s *SymmetricallyEncrypted) Decrypt(cipherAlgo algorithm.CipherFunction, sessionKey []byte) ([]byte, error) {
	blockSize := cipherAlgo.BlockSize()
	iv := make([]byte, blockSize)
	plain, err := cipherAlgo.CFBDecrypt(sessionKey, iv, s.Ciphertext)
	if err != nil {
		return nil, err
	}
	if len(plain) < blockSize+2 {
		return nil, pgperrors.InvalidMessage("truncated SED body")
	}
	if plain[blockSize-2] != plain[blockSize] || plain[blockSize-1] != plain[blockSize+1] {
		return nil, pgperrors.InvalidMessage("SED quick-check mismatch")
	}
	return plain[blockSize+2:], nil
}

// EncryptSED builds a SED packet. The message pipeline never calls this on
// the encrypt path; it exists only so the legacy Decrypt path above has a
// round-trip counterpart to test against.
func EncryptSED(cipherAlgo algorithm.CipherFunction, sessionKey, innerPackets []byte) (*SymmetricallyEncrypted, error) {
	blockSize := cipherAlgo.BlockSize()
	prefix, err := algorithm.RandomBytes(blockSize)
	if err != nil {
		return nil, err
	}
	plaintext := append(append([]byte{}, prefix...), prefix[blockSize-2:]...)
	plaintext = append(plaintext, innerPackets...)
	iv := make([]byte, blockSize)
	ciphertext, err := cipherAlgo.CFBEncrypt(sessionKey, iv, plaintext)
	if err != nil {
		return nil, err
	}
	return &SymmetricallyEncrypted{Ciphertext: ciphertext}, nil
}

// SymmetricallyEncryptedIntegrityProtected is a SEIPD packet (tag 18), RFC
// 4880 section 5.13: the preferred, MDC-protected ciphertext envelope.
type SymmetricallyEncryptedIntegrityProtected struct {
	Version    int
	Ciphertext []byte
}

func (s *SymmetricallyEncryptedIntegrityProtected) Tag() Tag {
	return TagSymmetricallyEncryptedIntegrityProtected
}

func (s *SymmetricallyEncryptedIntegrityProtected) parseBody(body []byte) error {
	if len(body) < 1 {
		return errShortRead
	}
	s.Version = int(body[0])
	if s.Version != 1 {
		return pgperrors.UnsupportedAlgorithm("SEIPD version")
	}
	s.Ciphertext = append([]byte{}, body[1:]...)
	return nil
}

func (s *SymmetricallyEncryptedIntegrityProtected) serializeBody() ([]byte, error) {
	return append([]byte{1}, s.Ciphertext...), nil
}

// mdcTrailer is the fixed tag+length prefix an MDC packet's preimage uses,
// RFC 4880 section 5.14: 0xD3 0x14 (new-format tag 19, length 20) followed
// by the SHA-1 digest itself.
var mdcTrailer = [2]byte{0xD3, 0x14}

// Decrypt recovers the plaintext inner-packet stream, verifying the
// trailing MDC packet. Any mismatch is fatal: no partial plaintext is
// ever returned.
func (s *SymmetricallyEncryptedIntegrityProtected) Decrypt(cipherAlgo algorithm.CipherFunction, sessionKey []byte) ([]byte, error) {
	blockSize := cipherAlgo.BlockSize()
	iv := make([]byte, blockSize)
	plain, err := cipherAlgo.CFBDecrypt(sessionKey, iv, s.Ciphertext)
	if err != nil {
		return nil, pgperrors.IntegrityCheckFailed(err.Error())
	}
	if len(plain) < blockSize+2+22 {
		return nil, pgperrors.IntegrityCheckFailed("truncated SEIPD body")
	}
	if plain[blockSize-2] != plain[blockSize] || plain[blockSize-1] != plain[blockSize+1] {
		return nil, pgperrors.IntegrityCheckFailed("SEIPD quick-check mismatch")
	}

	withoutPrefix := plain[blockSize:]
	if len(withoutPrefix) < 22 {
		return nil, pgperrors.IntegrityCheckFailed("truncated SEIPD body")
	}
	mdcPacket := withoutPrefix[len(withoutPrefix)-22:]
	if mdcPacket[0] != mdcTrailer[0] || mdcPacket[1] != mdcTrailer[1] {
		return nil, pgperrors.IntegrityCheckFailed("missing MDC packet")
	}
	innerAndPrefix := plain[:len(plain)-20]
	want := algorithm.MDCHash(innerAndPrefix)
	got := mdcPacket[2:]
	if !bytesEqual(want, got) {
		return nil, pgperrors.IntegrityCheckFailed("MDC mismatch")
	}
	return withoutPrefix[:len(withoutPrefix)-22], nil
}

// EncryptSEIPD wraps innerPackets in a SEIPD envelope, appending the
// required MDC packet before encryption.
func EncryptSEIPD(cipherAlgo algorithm.CipherFunction, sessionKey, innerPackets []byte) (*SymmetricallyEncryptedIntegrityProtected, error) {
	blockSize := cipherAlgo.BlockSize()
	prefix, err := algorithm.RandomBytes(blockSize)
	if err != nil {
		return nil, err
	}
	plaintext := append(append([]byte{}, prefix...), prefix[blockSize-2:]...)
	plaintext = append(plaintext, innerPackets...)

	plaintext = append(plaintext, mdcTrailer[:]...)
	digest := algorithm.MDCHash(plaintext)
	plaintext = append(plaintext, digest...)

	iv := make([]byte, blockSize)
	ciphertext, err := cipherAlgo.CFBEncrypt(sessionKey, iv, plaintext)
	if err != nil {
		return nil, err
	}
	return &SymmetricallyEncryptedIntegrityProtected{Version: 1, Ciphertext: ciphertext}, nil
}

// ModificationDetectionCode is an MDC packet (tag 19), RFC 4880 section
// 5.14. Only parsed/serialized standalone for completeness; the pipeline
// normally handles it inline as part of SEIPD's plaintext, via the
// mdcTrailer helpers above.
type ModificationDetectionCode struct {
	Hash []byte
}

func (m *ModificationDetectionCode) Tag() Tag { return TagModificationDetectionCode }

func (m *ModificationDetectionCode) parseBody(body []byte) error {
	if len(body) != 20 {
		return errShortRead
	}
	m.Hash = append([]byte{}, body...)
	return nil
}

func (m *ModificationDetectionCode) serializeBody() ([]byte, error) { return m.Hash, nil }
