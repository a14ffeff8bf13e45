package packet

import (
	"crypto/rsa"
	"encoding/binary"
	"math/big"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/encoding"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// EncryptedKey is a Public-Key Encrypted Session Key packet (PKESK, tag 1),
// RFC 4880 section 5.1. Adapted from
// github.com/ProtonMail/go-crypto/openpgp/packet's EncryptedKey, trimmed to
// the V3/classical-algorithm subset this module implements.
type EncryptedKey struct {
	Version int
	KeyId   uint64
	Algo    algorithm.PublicKeyAlgorithm

	// Wire-form ciphertext, algorithm-dependent.
	rsaCiphertext   *big.Int
	ecdhEphemeral   [32]byte
	ecdhWrapped     []byte
	kyberEphemeral  [32]byte
	kyberCiphertext []byte
	kyberWrapped    []byte

	// Populated only after a successful Decrypt.
	CipherFunc algorithm.CipherFunction
	Key        []byte
}

func (e *EncryptedKey) Tag() Tag { return TagPublicKeyEncryptedSessionKey }

func (e *EncryptedKey) parseBody(body []byte) error {
	if len(body) < 10 {
		return errShortRead
	}
	e.Version = int(body[0])
	if e.Version != 3 {
		return pgperrors.UnsupportedAlgorithm("PKESK version")
	}
	e.KeyId = binary.BigEndian.Uint64(body[1:9])
	e.Algo = algorithm.PublicKeyAlgorithm(body[9])
	rest := body[10:]

	switch e.Algo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly:
		m := new(encoding.MPI)
		if _, err := m.ReadFrom(sliceReader(rest)); err != nil {
			return err
		}
		e.rsaCiphertext = m.Int()
	case algorithm.PubKeyAlgoECDH:
		if len(rest) < 32 {
			return errShortRead
		}
		copy(e.ecdhEphemeral[:], rest[:32])
		wrapped := new(encoding.ShortByteString)
		if _, err := wrapped.ReadFrom(sliceReader(rest[32:])); err != nil {
			return err
		}
		e.ecdhWrapped = wrapped.Bytes()
	case algorithm.PubKeyAlgoKyber768X25519:
		if len(rest) < 32 {
			return errShortRead
		}
		copy(e.kyberEphemeral[:], rest[:32])
		rest = rest[32:]
		ct := new(encoding.ShortByteString)
		n, err := ct.ReadFrom(sliceReader(rest))
		if err != nil {
			return err
		}
		e.kyberCiphertext = ct.Bytes()
		wrapped := new(encoding.ShortByteString)
		if _, err := wrapped.ReadFrom(sliceReader(rest[n:])); err != nil {
			return err
		}
		e.kyberWrapped = wrapped.Bytes()
	default:
		return pgperrors.UnsupportedAlgorithm("PKESK public key algorithm")
	}
	return nil
}

func (e *EncryptedKey) serializeBody() ([]byte, error) {
	out := make([]byte, 10)
	out[0] = 3
	binary.BigEndian.PutUint64(out[1:9], e.KeyId)
	out[9] = byte(e.Algo)

	switch e.Algo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly:
		out = append(out, encoding.NewMPIFromInt(e.rsaCiphertext).EncodedBytes()...)
	case algorithm.PubKeyAlgoECDH:
		out = append(out, e.ecdhEphemeral[:]...)
		out = append(out, encoding.NewShortByteString(e.ecdhWrapped).EncodedBytes()...)
	case algorithm.PubKeyAlgoKyber768X25519:
		out = append(out, e.kyberEphemeral[:]...)
		out = append(out, encoding.NewShortByteString(e.kyberCiphertext).EncodedBytes()...)
		out = append(out, encoding.NewShortByteString(e.kyberWrapped).EncodedBytes()...)
	default:
		return nil, pgperrors.UnsupportedAlgorithm("PKESK public key algorithm")
	}
	return out, nil
}

// sessionKeyPlaintext builds the symAlg|sessionKey|checksum payload that
// gets encrypted under the recipient's public key.
func sessionKeyPlaintext(cipherAlgo algorithm.CipherFunction, sessionKey []byte) []byte {
	out := make([]byte, 0, 1+len(sessionKey)+2)
	out = append(out, byte(cipherAlgo))
	out = append(out, sessionKey...)
	var checksum uint16
	for _, b := range sessionKey {
		checksum += uint16(b)
	}
	out = append(out, byte(checksum>>8), byte(checksum))
	return out
}

// parseSessionKeyPlaintext reverses sessionKeyPlaintext and verifies the
// checksum.
func parseSessionKeyPlaintext(data []byte) (algorithm.CipherFunction, []byte, error) {
	if len(data) < 3 {
		return 0, nil, pgperrors.CryptoFailure("malformed session key payload")
	}
	cipherAlgo := algorithm.CipherFunction(data[0])
	keySize := cipherAlgo.KeySize()
	if keySize == 0 || len(data) != 1+keySize+2 {
		return 0, nil, pgperrors.CryptoFailure("malformed session key payload")
	}
	key := data[1 : 1+keySize]
	var checksum uint16
	for _, b := range key {
		checksum += uint16(b)
	}
	want := uint16(data[1+keySize])<<8 | uint16(data[2+keySize])
	if checksum != want {
		return 0, nil, pgperrors.CryptoFailure("session key checksum mismatch")
	}
	return cipherAlgo, append([]byte{}, key...), nil
}

// EncryptRSA wraps sessionKey under pub, addressed to keyID.
func EncryptRSA(keyID uint64, pub *rsa.PublicKey, cipherAlgo algorithm.CipherFunction, sessionKey []byte) (*EncryptedKey, error) {
	payload := sessionKeyPlaintext(cipherAlgo, sessionKey)
	ciphertext, err := algorithm.RSAEncrypt(pub, payload)
	if err != nil {
		return nil, err
	}
	return &EncryptedKey{
		Version:       3,
		KeyId:         keyID,
		Algo:          algorithm.PubKeyAlgoRSA,
		rsaCiphertext: new(big.Int).SetBytes(ciphertext),
	}, nil
}

// DecryptRSA recovers the session key from an RSA PKESK.
func (e *EncryptedKey) DecryptRSA(priv *rsa.PrivateKey) error {
	if e.Algo != algorithm.PubKeyAlgoRSA && e.Algo != algorithm.PubKeyAlgoRSAEncryptOnly {
		return pgperrors.CryptoFailure("PKESK algorithm mismatch")
	}
	plain, err := algorithm.RSADecrypt(priv, e.rsaCiphertext.Bytes())
	if err != nil {
		return err
	}
	cipherAlgo, key, err := parseSessionKeyPlaintext(plain)
	if err != nil {
		return err
	}
	e.CipherFunc = cipherAlgo
	e.Key = key
	return nil
}

// EncryptECDH wraps sessionKey under an X25519 ECDH public key.
func EncryptECDH(keyID uint64, pub [32]byte, cipherAlgo algorithm.CipherFunction, sessionKey []byte) (*EncryptedKey, error) {
	payload := sessionKeyPlaintext(cipherAlgo, sessionKey)
	ephemeral, wrapped, err := algorithm.ECDHEncrypt(&pub, payload)
	if err != nil {
		return nil, err
	}
	return &EncryptedKey{
		Version:     3,
		KeyId:       keyID,
		Algo:        algorithm.PubKeyAlgoECDH,
		ecdhEphemeral: ephemeral,
		ecdhWrapped: wrapped,
	}, nil
}

// DecryptECDH recovers the session key from an ECDH PKESK.
func (e *EncryptedKey) DecryptECDH(priv [32]byte) error {
	if e.Algo != algorithm.PubKeyAlgoECDH {
		return pgperrors.CryptoFailure("PKESK algorithm mismatch")
	}
	plain, err := algorithm.ECDHDecrypt(&priv, e.ecdhEphemeral, e.ecdhWrapped)
	if err != nil {
		return err
	}
	cipherAlgo, key, err := parseSessionKeyPlaintext(plain)
	if err != nil {
		return err
	}
	e.CipherFunc = cipherAlgo
	e.Key = key
	return nil
}

// EncryptKyber768X25519 wraps sessionKey under the composite PQC public key
// (x25519Pub, kyberPub), combining a classical X25519 exchange with a
// Kyber768 encapsulation.
func EncryptKyber768X25519(keyID uint64, x25519Pub [32]byte, kyberPub []byte, cipherAlgo algorithm.CipherFunction, sessionKey []byte) (*EncryptedKey, error) {
	payload := sessionKeyPlaintext(cipherAlgo, sessionKey)
	ephemeral, ciphertext, wrapped, err := algorithm.Kyber768X25519Encrypt(x25519Pub, kyberPub, payload)
	if err != nil {
		return nil, err
	}
	return &EncryptedKey{
		Version:         3,
		KeyId:           keyID,
		Algo:            algorithm.PubKeyAlgoKyber768X25519,
		kyberEphemeral:  ephemeral,
		kyberCiphertext: ciphertext,
		kyberWrapped:    wrapped,
	}, nil
}

// DecryptKyber768X25519 recovers the session key from a composite PKESK.
func (e *EncryptedKey) DecryptKyber768X25519(x25519Priv [32]byte, kyberPriv []byte) error {
	if e.Algo != algorithm.PubKeyAlgoKyber768X25519 {
		return pgperrors.CryptoFailure("PKESK algorithm mismatch")
	}
	plain, err := algorithm.Kyber768X25519Decrypt(x25519Priv, kyberPriv, e.kyberEphemeral, e.kyberCiphertext, e.kyberWrapped)
	if err != nil {
		return err
	}
	cipherAlgo, key, err := parseSessionKeyPlaintext(plain)
	if err != nil {
		return err
	}
	e.CipherFunc = cipherAlgo
	e.Key = key
	return nil
}
