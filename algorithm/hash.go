package algorithm

import (
	"crypto"
	"crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"hash"

	pgperrors "github.com/pgpflow/openpgp/errors"
	_ "golang.org/x/crypto/sha3"
)

// HashFunction identifies a hash algorithm, numbered per RFC 4880 section
// 9.4.
type HashFunction uint8

const (
	HashSHA1      HashFunction = 2
	HashSHA256    HashFunction = 8
	HashSHA384    HashFunction = 9
	HashSHA512    HashFunction = 10
	HashSHA3_256  HashFunction = 12
	HashSHA3_512  HashFunction = 14
)

var hashToCrypto = map[HashFunction]crypto.Hash{
	HashSHA1:     crypto.SHA1,
	HashSHA256:   crypto.SHA256,
	HashSHA384:   crypto.SHA384,
	HashSHA512:   crypto.SHA512,
	HashSHA3_256: crypto.SHA3_256,
	HashSHA3_512: crypto.SHA3_512,
}

// New returns a fresh streaming hash.Hash for alg.
func (alg HashFunction) New() (hash.Hash, error) {
	h, ok := hashToCrypto[alg]
	if !ok || !h.Available() {
		return nil, pgperrors.CryptoUnavailable("hash algorithm")
	}
	return h.New(), nil
}

// CryptoHash exposes the stdlib crypto.Hash identifier, needed by the PK
// facade when calling crypto/rsa and crypto/ecdsa's Sign/Verify, which take
// a crypto.Hash rather than a digest.
func (alg HashFunction) CryptoHash() (crypto.Hash, error) {
	h, ok := hashToCrypto[alg]
	if !ok || !h.Available() {
		return 0, pgperrors.CryptoUnavailable("hash algorithm")
	}
	return h, nil
}

// Sum hashes data in one call.
func (alg HashFunction) Sum(data []byte) ([]byte, error) {
	h, err := alg.New()
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// MDCHash is the fixed SHA-1 used for the Modification Detection Code,
// independent of the caller-chosen signature hash algorithm.
func MDCHash(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}
