package packet

import (
	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/s2k"
)

// SymmetricKeyEncrypted is an SKESK packet (tag 3), RFC 4880 section 5.3:
// a passphrase-derived key, optionally itself wrapping a distinct session
// key for the data packet that follows.
type SymmetricKeyEncrypted struct {
	Version    int
	CipherAlgo algorithm.CipherFunction
	S2K        *s2k.Params
	// EncryptedKey is present when the S2K-derived key wraps a separate,
	// randomly chosen session key (RFC 4880 section 5.3); nil means the
	// S2K-derived key directly is the session key.
	EncryptedKey []byte
}

func (s *SymmetricKeyEncrypted) Tag() Tag { return TagSymmetricKeyEncryptedSessionKey }

func (s *SymmetricKeyEncrypted) parseBody(body []byte) error {
	if len(body) < 2 {
		return errShortRead
	}
	s.Version = int(body[0])
	if s.Version != 4 {
		return pgperrors.UnsupportedAlgorithm("SKESK version")
	}
	s.CipherAlgo = algorithm.CipherFunction(body[1])
	s.S2K = new(s2k.Params)
	consumed, err := s.S2K.ReadFrom(sliceReader(body[2:]))
	if err != nil {
		return err
	}
	rest := body[2+consumed:]
	if len(rest) > 0 {
		s.EncryptedKey = append([]byte{}, rest...)
	}
	return nil
}

func (s *SymmetricKeyEncrypted) serializeBody() ([]byte, error) {
	out := []byte{4, byte(s.CipherAlgo)}
	out = append(out, s.S2K.EncodedBytes()...)
	out = append(out, s.EncryptedKey...)
	return out, nil
}

// DecryptSessionKey derives the S2K key from passphrase and, if
// EncryptedKey is present, decrypts it (using IV=0 CFB, per RFC 4880
// section 5.3) to recover the true session key and its cipher algorithm.
func (s *SymmetricKeyEncrypted) DecryptSessionKey(passphrase []byte) (algorithm.CipherFunction, []byte, error) {
	derived, err := s.S2K.DeriveKey(passphrase, s.CipherAlgo.KeySize())
	if err != nil {
		return 0, nil, err
	}
	if len(s.EncryptedKey) == 0 {
		return s.CipherAlgo, derived, nil
	}
	iv := make([]byte, s.CipherAlgo.BlockSize())
	plain, err := s.CipherAlgo.CFBDecrypt(derived, iv, s.EncryptedKey)
	if err != nil {
		return 0, nil, err
	}
	if len(plain) < 1 {
		return 0, nil, pgperrors.PassphraseIncorrect("malformed SKESK payload")
	}
	cipherAlgo := algorithm.CipherFunction(plain[0])
	return cipherAlgo, plain[1:], nil
}

// NewSymmetricKeyEncrypted derives an S2K specifier from passphrase and
// wraps sessionKey under it, for a stand-alone passphrase-encrypted message
// (no PKESK recipients).
func NewSymmetricKeyEncrypted(passphrase []byte, s2kCipher, sessionCipher algorithm.CipherFunction, hashAlgo algorithm.HashFunction, sessionKey []byte) (*SymmetricKeyEncrypted, error) {
	params, err := s2k.Generate(hashAlgo)
	if err != nil {
		return nil, err
	}
	derived, err := params.DeriveKey(passphrase, s2kCipher.KeySize())
	if err != nil {
		return nil, err
	}
	payload := append([]byte{byte(sessionCipher)}, sessionKey...)
	iv := make([]byte, s2kCipher.BlockSize())
	encrypted, err := s2kCipher.CFBEncrypt(derived, iv, payload)
	if err != nil {
		return nil, err
	}
	return &SymmetricKeyEncrypted{
		Version:      4,
		CipherAlgo:   s2kCipher,
		S2K:          params,
		EncryptedKey: encrypted,
	}, nil
}
