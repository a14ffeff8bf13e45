package packet

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// SignatureType identifies what a Signature packet asserts over, RFC 4880
// section 5.2.1.
type SignatureType uint8

const (
	SigTypeBinary    SignatureType = 0x00
	SigTypeText      SignatureType = 0x01
	SigTypeGenericCert SignatureType = 0x10
	SigTypePositiveCert SignatureType = 0x13
	SigTypeSubkeyBinding SignatureType = 0x18
)

// Signature subpacket types this module reads and writes, RFC 4880 section
// 5.2.3.1 (a small subset — only what key selection and message
// verification consume).
const (
	subpacketSignatureCreationTime    = 2
	subpacketKeyExpirationTime        = 9
	subpacketPreferredSymmetric       = 11
	subpacketIssuerKeyId              = 16
	subpacketPreferredHash            = 21
	subpacketPreferredCompression     = 22
	subpacketKeyFlags                 = 27
)

// Signature is a V4 Signature packet (tag 2), RFC 4880 section 5.2.3.
type Signature struct {
	SigType  SignatureType
	PubKeyAlgo algorithm.PublicKeyAlgorithm
	HashAlgo algorithm.HashFunction

	CreationTime time.Time
	IssuerKeyId  uint64
	KeyExpiration *time.Duration

	// Self-signature preference lists, present only on direct-key / UserID
	// binding signatures.
	PreferredSymmetric   []algorithm.CipherFunction
	PreferredHash        []algorithm.HashFunction
	PreferredCompression []uint8
	KeyFlags             KeyFlags

	hashedSuffix   []byte // raw hashed-subpacket area, kept for the hash trailer
	unhashedSuffix []byte

	HashTag [2]byte // first two bytes of the digest, a quick plaintext-mismatch check

	RSA   *big.Int
	DSAR, DSAS *big.Int
	ECDSAR, ECDSAS *big.Int
	EdDSA []byte
}

// KeyFlags are the self-signature capability bits, subpacket type 27.
type KeyFlags struct {
	Certify, Sign, EncryptCommunications, EncryptStorage bool
}

func (s *Signature) Tag() Tag { return TagSignature }

func (s *Signature) parseBody(body []byte) error {
	if len(body) < 6 {
		return errShortRead
	}
	version := body[0]
	if version != 4 {
		return pgperrors.UnsupportedAlgorithm("signature version")
	}
	s.SigType = SignatureType(body[1])
	s.PubKeyAlgo = algorithm.PublicKeyAlgorithm(body[2])
	s.HashAlgo = algorithm.HashFunction(body[3])

	hashedLen := int(body[4])<<8 | int(body[5])
	if len(body) < 6+hashedLen {
		return errShortRead
	}
	s.hashedSuffix = append([]byte{}, body[6:6+hashedLen]...)
	if err := s.parseSubpackets(s.hashedSuffix); err != nil {
		return err
	}
	rest := body[6+hashedLen:]

	if len(rest) < 2 {
		return errShortRead
	}
	unhashedLen := int(rest[0])<<8 | int(rest[1])
	if len(rest) < 2+unhashedLen {
		return errShortRead
	}
	s.unhashedSuffix = append([]byte{}, rest[2:2+unhashedLen]...)
	if err := s.parseSubpackets(s.unhashedSuffix); err != nil {
		return err
	}
	rest = rest[2+unhashedLen:]

	if len(rest) < 2 {
		return errShortRead
	}
	s.HashTag[0], s.HashTag[1] = rest[0], rest[1]
	rest = rest[2:]

	return s.parseSignatureMPIs(rest)
}

func (s *Signature) parseSignatureMPIs(data []byte) error {
	switch s.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSASignOnly:
		m, err := readMPIInt(data)
		if err != nil {
			return err
		}
		s.RSA = m
	case algorithm.PubKeyAlgoDSA:
		r, rn, err := readMPIIntN(data)
		if err != nil {
			return err
		}
		sVal, _, err := readMPIIntN(data[rn:])
		if err != nil {
			return err
		}
		s.DSAR, s.DSAS = r, sVal
	case algorithm.PubKeyAlgoECDSA:
		r, rn, err := readMPIIntN(data)
		if err != nil {
			return err
		}
		sVal, _, err := readMPIIntN(data[rn:])
		if err != nil {
			return err
		}
		s.ECDSAR, s.ECDSAS = r, sVal
	case algorithm.PubKeyAlgoEdDSA:
		r, rn, err := readMPIBytesN(data)
		if err != nil {
			return err
		}
		sVal, _, err := readMPIBytesN(data[rn:])
		if err != nil {
			return err
		}
		// Ed25519 signatures are the 32-byte R and 32-byte S concatenated.
		sig := make([]byte, 64)
		copy(sig[32-len(r):32], r)
		copy(sig[64-len(sVal):64], sVal)
		s.EdDSA = sig
	default:
		return pgperrors.UnsupportedAlgorithm("signature public key algorithm")
	}
	return nil
}

func (s *Signature) serializeBody() ([]byte, error) {
	hashed := s.serializeHashedSubpackets()
	unhashed := s.serializeUnhashedSubpackets()

	out := []byte{4, byte(s.SigType), byte(s.PubKeyAlgo), byte(s.HashAlgo)}
	out = append(out, byte(len(hashed)>>8), byte(len(hashed)))
	out = append(out, hashed...)
	out = append(out, byte(len(unhashed)>>8), byte(len(unhashed)))
	out = append(out, unhashed...)
	out = append(out, s.HashTag[0], s.HashTag[1])

	sigBytes, err := s.serializeSignatureMPIs()
	if err != nil {
		return nil, err
	}
	return append(out, sigBytes...), nil
}

func (s *Signature) serializeSignatureMPIs() ([]byte, error) {
	switch s.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSASignOnly:
		return mpiBytesFromInt(s.RSA), nil
	case algorithm.PubKeyAlgoDSA:
		return append(mpiBytesFromInt(s.DSAR), mpiBytesFromInt(s.DSAS)...), nil
	case algorithm.PubKeyAlgoECDSA:
		return append(mpiBytesFromInt(s.ECDSAR), mpiBytesFromInt(s.ECDSAS)...), nil
	case algorithm.PubKeyAlgoEdDSA:
		r, sVal := s.EdDSA[:32], s.EdDSA[32:]
		return append(mpiBytesFromRaw(r), mpiBytesFromRaw(sVal)...), nil
	default:
		return nil, pgperrors.UnsupportedAlgorithm("signature public key algorithm")
	}
}

// hashTrailer builds the canonical trailer appended after the signed
// document octets before hashing: the hashed-subpacket area (with its own
// 6-octet V4 prefix) followed by a fixed 6-octet final trailer, RFC 4880
// section 5.2.4.
func (s *Signature) hashTrailer() []byte {
	hashed := s.hashedSuffix
	prefix := []byte{4, byte(s.SigType), byte(s.PubKeyAlgo), byte(s.HashAlgo), byte(len(hashed) >> 8), byte(len(hashed))}
	area := append(prefix, hashed...)
	totalLen := uint32(len(area))
	trailer := []byte{4, 0xFF, byte(totalLen >> 24), byte(totalLen >> 16), byte(totalLen >> 8), byte(totalLen)}
	return append(area, trailer...)
}

// PrepareHashed populates the hashed-subpacket area from this Signature's
// fields, ahead of computing Digest. Exported so package message can build
// a fresh Signature, fill in its fields, and hash it before the MPI
// material exists — serializeBody (called later by Serialize) recomputes
// the identical bytes, so this is safe to call more than once.
func (s *Signature) PrepareHashed() {
	s.serializeHashedSubpackets()
}

// Digest hashes documentOctets followed by the signature's hash trailer.
func (s *Signature) Digest(documentOctets []byte) ([]byte, error) {
	h, err := s.HashAlgo.New()
	if err != nil {
		return nil, err
	}
	h.Write(documentOctets)
	h.Write(s.hashTrailer())
	return h.Sum(nil), nil
}

// NewSignature builds a Signature shell ready for Sign: hashed subpackets
// carry the creation time and issuer key ID, per RFC 4880 section 5.2.3.4
// (issuer key ID may additionally live in the unhashed area for
// compatibility with V3-era verifiers, but this module only emits it
// hashed).
func NewSignature(sigType SignatureType, pubAlgo algorithm.PublicKeyAlgorithm, hashAlgo algorithm.HashFunction, issuerKeyId uint64, created time.Time) *Signature {
	return &Signature{
		SigType:      sigType,
		PubKeyAlgo:   pubAlgo,
		HashAlgo:     hashAlgo,
		CreationTime: created,
		IssuerKeyId:  issuerKeyId,
	}
}

func (s *Signature) serializeHashedSubpackets() []byte {
	var out []byte
	out = appendSubpacket(out, subpacketSignatureCreationTime, be32(uint32(s.CreationTime.Unix())))
	out = appendSubpacket(out, subpacketIssuerKeyId, be64(s.IssuerKeyId))
	if len(s.PreferredSymmetric) > 0 {
		buf := make([]byte, len(s.PreferredSymmetric))
		for i, c := range s.PreferredSymmetric {
			buf[i] = byte(c)
		}
		out = appendSubpacket(out, subpacketPreferredSymmetric, buf)
	}
	if len(s.PreferredHash) > 0 {
		buf := make([]byte, len(s.PreferredHash))
		for i, h := range s.PreferredHash {
			buf[i] = byte(h)
		}
		out = appendSubpacket(out, subpacketPreferredHash, buf)
	}
	if len(s.PreferredCompression) > 0 {
		out = appendSubpacket(out, subpacketPreferredCompression, s.PreferredCompression)
	}
	if flags := s.KeyFlags.encode(); flags != 0 {
		out = appendSubpacket(out, subpacketKeyFlags, []byte{flags})
	}
	s.hashedSuffix = out
	return out
}

func (s *Signature) serializeUnhashedSubpackets() []byte {
	return s.unhashedSuffix
}

func (s *Signature) parseSubpackets(data []byte) error {
	offset := 0
	for offset < len(data) {
		length, lengthLen, err := parseSubpacketLength(data[offset:])
		if err != nil {
			return err
		}
		offset += lengthLen
		if length < 1 || offset+length > len(data) {
			return errShortRead
		}
		spType := data[offset] &^ 0x80 // strip the "critical" high bit
		spBody := data[offset+1 : offset+length]
		s.applySubpacket(spType, spBody)
		offset += length
	}
	return nil
}

func (s *Signature) applySubpacket(spType byte, body []byte) {
	switch spType {
	case subpacketSignatureCreationTime:
		if len(body) == 4 {
			s.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(body)), 0)
		}
	case subpacketIssuerKeyId:
		if len(body) == 8 {
			s.IssuerKeyId = binary.BigEndian.Uint64(body)
		}
	case subpacketKeyExpirationTime:
		if len(body) == 4 {
			d := time.Duration(binary.BigEndian.Uint32(body)) * time.Second
			s.KeyExpiration = &d
		}
	case subpacketPreferredSymmetric:
		for _, b := range body {
			s.PreferredSymmetric = append(s.PreferredSymmetric, algorithm.CipherFunction(b))
		}
	case subpacketPreferredHash:
		for _, b := range body {
			s.PreferredHash = append(s.PreferredHash, algorithm.HashFunction(b))
		}
	case subpacketPreferredCompression:
		s.PreferredCompression = append(s.PreferredCompression, body...)
	case subpacketKeyFlags:
		if len(body) >= 1 {
			s.KeyFlags = decodeKeyFlags(body[0])
		}
	}
}

func (f KeyFlags) encode() byte {
	var b byte
	if f.Certify {
		b |= 0x01
	}
	if f.Sign {
		b |= 0x02
	}
	if f.EncryptCommunications {
		b |= 0x04
	}
	if f.EncryptStorage {
		b |= 0x08
	}
	return b
}

func decodeKeyFlags(b byte) KeyFlags {
	return KeyFlags{
		Certify:                b&0x01 != 0,
		Sign:                   b&0x02 != 0,
		EncryptCommunications:  b&0x04 != 0,
		EncryptStorage:         b&0x08 != 0,
	}
}

func appendSubpacket(out []byte, spType byte, body []byte) []byte {
	out = append(out, encodeSubpacketLength(1+len(body))...)
	out = append(out, spType)
	return append(out, body...)
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
