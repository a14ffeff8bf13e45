package packet

import (
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/binary"
	"math/big"
	"time"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/encoding"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// PublicKey represents a V4 PublicKey or PublicSubkey packet (tags 6/14),
// RFC 4880 section 5.5.2.
type PublicKey struct {
	Version      int
	CreationTime time.Time
	PubKeyAlgo   algorithm.PublicKeyAlgorithm
	IsSubkey     bool

	Fingerprint []byte // 20 octets, SHA-1 over the fingerprint preimage
	KeyId       uint64 // last 8 octets of Fingerprint

	// Algorithm-specific public material, populated depending on PubKeyAlgo.
	RSA   *rsaPublic
	DSA   *dsaPublic
	ECDSA *ecdsaPublic
	EdDSA *eddsaPublic
	ECDH  *ecdhPublic
	Kyber *kyberPublic
}

type rsaPublic struct {
	N, E *big.Int
}
type dsaPublic struct {
	P, Q, G, Y *big.Int
}
type ecdsaPublic struct {
	Curve elliptic.Curve
	X, Y  *big.Int
}
type eddsaPublic struct {
	Key ed25519.PublicKey
}
type ecdhPublic struct {
	Key [32]byte // X25519 only; other ECDH curves are out of this module's scope
}
type kyberPublic struct {
	X25519 [32]byte
	Kyber  []byte // serialized kyber768 public key
}

// NewRSAPublicKey builds a V4 PublicKey packet wrapping pub, with its
// fingerprint and KeyId computed immediately.
func NewRSAPublicKey(creationTime time.Time, pub *rsa.PublicKey, isSubkey bool) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime.Truncate(time.Second),
		PubKeyAlgo:   algorithm.PubKeyAlgoRSA,
		IsSubkey:     isSubkey,
		RSA:          &rsaPublic{N: pub.N, E: big.NewInt(int64(pub.E))},
	}
	pk.setFingerprintAndKeyID()
	return pk
}

func (pk *PublicKey) Tag() Tag {
	if pk.IsSubkey {
		return TagPublicSubkey
	}
	return TagPublicKey
}

func (pk *PublicKey) parseBody(body []byte) error {
	if len(body) < 6 {
		return errShortRead
	}
	pk.Version = int(body[0])
	if pk.Version != 4 {
		return pgperrors.UnsupportedAlgorithm("public key version")
	}
	pk.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0)
	pk.PubKeyAlgo = algorithm.PublicKeyAlgorithm(body[5])

	rest := body[6:]
	var err error
	switch pk.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly, algorithm.PubKeyAlgoRSASignOnly:
		err = pk.parseRSA(rest)
	case algorithm.PubKeyAlgoDSA:
		err = pk.parseDSA(rest)
	case algorithm.PubKeyAlgoECDSA:
		err = pk.parseECDSA(rest)
	case algorithm.PubKeyAlgoEdDSA:
		err = pk.parseEdDSA(rest)
	case algorithm.PubKeyAlgoECDH:
		err = pk.parseECDH(rest)
	case algorithm.PubKeyAlgoElGamal:
		err = pgperrors.CryptoUnavailable("ElGamal public key")
	case algorithm.PubKeyAlgoKyber768X25519:
		err = pk.parseKyberComposite(rest)
	default:
		err = pgperrors.UnsupportedAlgorithm("public key algorithm")
	}
	if err != nil {
		return err
	}
	pk.setFingerprintAndKeyID()
	return nil
}

func (pk *PublicKey) parseRSA(data []byte) error {
	n := new(encoding.MPI)
	consumed, err := n.ReadFrom(sliceReader(data))
	if err != nil {
		return err
	}
	e := new(encoding.MPI)
	if _, err := e.ReadFrom(sliceReader(data[consumed:])); err != nil {
		return err
	}
	pk.RSA = &rsaPublic{N: n.Int(), E: e.Int()}
	return nil
}

func (pk *PublicKey) parseDSA(data []byte) error {
	fields := make([]*big.Int, 4)
	offset := 0
	for i := range fields {
		m := new(encoding.MPI)
		n, err := m.ReadFrom(sliceReader(data[offset:]))
		if err != nil {
			return err
		}
		fields[i] = m.Int()
		offset += int(n)
	}
	pk.DSA = &dsaPublic{P: fields[0], Q: fields[1], G: fields[2], Y: fields[3]}
	return nil
}

func (pk *PublicKey) parseECDSA(data []byte) error {
	if len(data) < 1 {
		return errShortRead
	}
	oidLen := int(data[0])
	if len(data) < 1+oidLen {
		return errShortRead
	}
	curve, err := curveForOID(data[1 : 1+oidLen])
	if err != nil {
		return err
	}
	point := new(encoding.MPI)
	if _, err := point.ReadFrom(sliceReader(data[1+oidLen:])); err != nil {
		return err
	}
	x, y := elliptic.Unmarshal(curve, point.Bytes())
	if x == nil {
		return pgperrors.CryptoFailure("invalid ECDSA point encoding")
	}
	pk.ECDSA = &ecdsaPublic{Curve: curve, X: x, Y: y}
	return nil
}

func (pk *PublicKey) parseEdDSA(data []byte) error {
	if len(data) < 1 {
		return errShortRead
	}
	oidLen := int(data[0])
	if len(data) < 1+oidLen {
		return errShortRead
	}
	point := new(encoding.MPI)
	if _, err := point.ReadFrom(sliceReader(data[1+oidLen:])); err != nil {
		return err
	}
	raw := point.Bytes()
	// OpenPGP EdDSA MPIs are prefixed with 0x40 to mark native point format.
	if len(raw) == 33 && raw[0] == 0x40 {
		raw = raw[1:]
	}
	if len(raw) != ed25519.PublicKeySize {
		return pgperrors.CryptoFailure("invalid Ed25519 public key length")
	}
	pk.EdDSA = &eddsaPublic{Key: ed25519.PublicKey(raw)}
	return nil
}

func (pk *PublicKey) parseECDH(data []byte) error {
	if len(data) < 1 {
		return errShortRead
	}
	oidLen := int(data[0])
	if len(data) < 1+oidLen {
		return errShortRead
	}
	point := new(encoding.MPI)
	if _, err := point.ReadFrom(sliceReader(data[1+oidLen:])); err != nil {
		return err
	}
	raw := point.Bytes()
	if len(raw) == 33 && raw[0] == 0x40 {
		raw = raw[1:]
	}
	if len(raw) != 32 {
		return pgperrors.CryptoFailure("invalid X25519 public key length")
	}
	var key [32]byte
	copy(key[:], raw)
	pk.ECDH = &ecdhPublic{Key: key}
	// KDF parameters (hash/cipher for the RFC 6637 profile) follow the MPI;
	// this module always derives a 256-bit key-encryption key with
	// HKDF-SHA256 and wraps with AES-256 (see algorithm.ECDHEncrypt), so the
	// declared parameters are not re-parsed beyond this point.
	return nil
}

func (pk *PublicKey) parseKyberComposite(data []byte) error {
	if len(data) < 32 {
		return errShortRead
	}
	var key kyberPublic
	copy(key.X25519[:], data[:32])
	key.Kyber = append([]byte{}, data[32:]...)
	pk.Kyber = &key
	return nil
}

func (pk *PublicKey) serializeBody() ([]byte, error) {
	out := []byte{4}
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], uint32(pk.CreationTime.Unix()))
	out = append(out, t[:]...)
	out = append(out, byte(pk.PubKeyAlgo))

	switch pk.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly, algorithm.PubKeyAlgoRSASignOnly:
		out = append(out, encoding.NewMPIFromInt(pk.RSA.N).EncodedBytes()...)
		out = append(out, encoding.NewMPIFromInt(pk.RSA.E).EncodedBytes()...)
	case algorithm.PubKeyAlgoDSA:
		out = append(out, encoding.NewMPIFromInt(pk.DSA.P).EncodedBytes()...)
		out = append(out, encoding.NewMPIFromInt(pk.DSA.Q).EncodedBytes()...)
		out = append(out, encoding.NewMPIFromInt(pk.DSA.G).EncodedBytes()...)
		out = append(out, encoding.NewMPIFromInt(pk.DSA.Y).EncodedBytes()...)
	case algorithm.PubKeyAlgoECDSA:
		oid, err := oidForCurve(pk.ECDSA.Curve)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(len(oid)))
		out = append(out, oid...)
		point := elliptic.Marshal(pk.ECDSA.Curve, pk.ECDSA.X, pk.ECDSA.Y)
		out = append(out, encoding.NewMPI(point).EncodedBytes()...)
	case algorithm.PubKeyAlgoEdDSA:
		out = append(out, byte(len(oidEd25519)))
		out = append(out, oidEd25519...)
		point := append([]byte{0x40}, pk.EdDSA.Key...)
		out = append(out, encoding.NewMPI(point).EncodedBytes()...)
	case algorithm.PubKeyAlgoECDH:
		out = append(out, byte(len(oidX25519)))
		out = append(out, oidX25519...)
		point := append([]byte{0x40}, pk.ECDH.Key[:]...)
		out = append(out, encoding.NewMPI(point).EncodedBytes()...)
		// KDF parameters: length(3), reserved(1), hash(SHA-256), cipher(AES-128)
		out = append(out, 3, 1, byte(algorithm.HashSHA256), byte(algorithm.CipherAES128))
	case algorithm.PubKeyAlgoKyber768X25519:
		out = append(out, pk.Kyber.X25519[:]...)
		out = append(out, pk.Kyber.Kyber...)
	default:
		return nil, pgperrors.UnsupportedAlgorithm("public key algorithm")
	}
	return out, nil
}

// setFingerprintAndKeyID computes the V4 fingerprint (SHA-1 over a
// 0x99-tagged, 2-octet-length-prefixed copy of the public key body) and
// derives the key ID from its last 8 octets, per RFC 4880 section 12.2.
func (pk *PublicKey) setFingerprintAndKeyID() {
	body, err := pk.serializeBody()
	if err != nil {
		return
	}
	preimage := make([]byte, 0, 3+len(body))
	preimage = append(preimage, 0x99, byte(len(body)>>8), byte(len(body)))
	preimage = append(preimage, body...)
	sum := sha1.Sum(preimage)
	pk.Fingerprint = sum[:]
	pk.KeyId = binary.BigEndian.Uint64(pk.Fingerprint[12:20])
}

// CanEncrypt reports whether this key's algorithm supports session-key
// encryption.
func (pk *PublicKey) CanEncrypt() bool { return pk.PubKeyAlgo.CanEncrypt() }

// CanSign reports whether this key's algorithm supports signing.
func (pk *PublicKey) CanSign() bool { return pk.PubKeyAlgo.CanSign() }
