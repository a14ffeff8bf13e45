// Package s2k implements RFC 4880 section 3.7's String-to-Key functions,
// which derive a symmetric key from a passphrase for locked secret keys and
// for SKESK packets. Adapted from github.com/ProtonMail/go-crypto/openpgp/s2k.
package s2k

import (
	"io"

	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// Mode identifies an S2K specifier form, per RFC 4880 section 3.7.1.
type Mode uint8

const (
	SimpleS2K         Mode = 0
	SaltedS2K         Mode = 1
	IteratedSaltedS2K Mode = 3
)

// Params is a parsed S2K specifier: enough to either derive a key from a
// passphrase or re-serialize the specifier unchanged.
type Params struct {
	Mode       Mode
	HashAlg    algorithm.HashFunction
	Salt       [8]byte
	Count      uint8 // encoded iteration count, RFC 4880 section 3.7.1.3
}

// Generate builds a fresh Params for emit, sized for a reasonable iteration
// count (~65536 octets hashed).
func Generate(hashAlg algorithm.HashFunction) (*Params, error) {
	p := &Params{Mode: IteratedSaltedS2K, HashAlg: hashAlg, Count: 96}
	salt, err := algorithm.RandomBytes(8)
	if err != nil {
		return nil, err
	}
	copy(p.Salt[:], salt)
	return p, nil
}

// decodedCount expands the encoded iteration count per RFC 4880 section
// 3.7.1.3's formula.
func (p *Params) decodedCount() int {
	return (16 + int(p.Count&15)) << (uint(p.Count>>4) + 6)
}

// DeriveKey runs the S2K function, producing keySize octets.
func (p *Params) DeriveKey(passphrase []byte, keySize int) ([]byte, error) {
	out := make([]byte, keySize)
	h, err := p.HashAlg.New()
	if err != nil {
		return nil, err
	}
	digestSize := h.Size()

	var preimage []byte
	switch p.Mode {
	case SimpleS2K:
		preimage = passphrase
	case SaltedS2K:
		preimage = append(append([]byte{}, p.Salt[:]...), passphrase...)
	case IteratedSaltedS2K:
		preimage = append(append([]byte{}, p.Salt[:]...), passphrase...)
	default:
		return nil, pgperrors.UnsupportedAlgorithm("s2k mode")
	}

	written := 0
	for prefix := 0; written < keySize; prefix++ {
		h.Reset()
		for i := 0; i < prefix; i++ {
			h.Write([]byte{0})
		}
		if p.Mode == IteratedSaltedS2K {
			count := p.decodedCount()
			n := 0
			for n+len(preimage) <= count {
				h.Write(preimage)
				n += len(preimage)
			}
			if n < count {
				h.Write(preimage[:count-n])
			}
		} else {
			h.Write(preimage)
		}
		sum := h.Sum(nil)
		n := copy(out[written:], sum)
		written += n
		if n < digestSize && written < keySize {
			// should not happen with the hash algorithms this facade exposes
			return nil, pgperrors.CryptoFailure("s2k: short digest")
		}
	}
	return out, nil
}

// ReadFrom parses an S2K specifier: mode octet, hash-algorithm octet, and
// (for salted modes) an 8-octet salt plus, for iterated-salted, a 1-octet
// encoded count.
func (p *Params) ReadFrom(r io.Reader) (int64, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	p.Mode = Mode(buf[0])
	p.HashAlg = algorithm.HashFunction(buf[1])
	n := int64(2)
	switch p.Mode {
	case SimpleS2K:
	case SaltedS2K:
		if _, err := io.ReadFull(r, p.Salt[:]); err != nil {
			return n, err
		}
		n += 8
	case IteratedSaltedS2K:
		if _, err := io.ReadFull(r, p.Salt[:]); err != nil {
			return n, err
		}
		n += 8
		var count [1]byte
		if _, err := io.ReadFull(r, count[:]); err != nil {
			return n, err
		}
		p.Count = count[0]
		n++
	default:
		return n, pgperrors.UnsupportedAlgorithm("s2k mode")
	}
	return n, nil
}

// EncodedBytes re-serializes the specifier.
func (p *Params) EncodedBytes() []byte {
	out := []byte{byte(p.Mode), byte(p.HashAlg)}
	switch p.Mode {
	case SaltedS2K:
		out = append(out, p.Salt[:]...)
	case IteratedSaltedS2K:
		out = append(out, p.Salt[:]...)
		out = append(out, p.Count)
	}
	return out
}
