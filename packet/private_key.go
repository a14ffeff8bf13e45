package packet

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"math/big"
	"time"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/encoding"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/s2k"
)

// PrivateKey represents a SecretKey or SecretSubkey packet (tags 5/7),
// RFC 4880 section 5.5.3. Material is decrypted lazily via Unlock; Locked
// is true until a correct passphrase has been supplied (or the key never
// needed one).
type PrivateKey struct {
	Public   *PublicKey
	IsSubkey bool

	s2kUsage   uint8 // 0 = plaintext, 254/255 = S2K-protected w/ integrity, 253 = AEAD (unsupported)
	cipherAlgo algorithm.CipherFunction
	s2kParams  *s2k.Params
	iv         []byte
	encrypted  []byte // ciphertext of the secret MPIs, only set while Locked

	Locked bool

	// Decrypted secret material, valid once Locked is false.
	RSA   *rsaSecret
	DSA   *dsaSecret
	ECDSA *ecdsaSecret
	EdDSA *eddsaSecret
	ECDH  *ecdhSecret
	Kyber *kyberSecret
}

type rsaSecret struct{ D, P, Q *big.Int }
type dsaSecret struct{ X *big.Int }
type ecdsaSecret struct{ D *big.Int }
type eddsaSecret struct{ Key ed25519.PrivateKey }
type ecdhSecret struct{ Key [32]byte }
type kyberSecret struct {
	X25519 [32]byte
	Kyber  []byte
}

// NewRSAPrivateKey builds an unlocked (Locked == false) SecretKey packet
// wrapping priv, with its embedded PublicKey built via NewRSAPublicKey.
func NewRSAPrivateKey(creationTime time.Time, priv *rsa.PrivateKey, isSubkey bool) *PrivateKey {
	priv.Precompute()
	return &PrivateKey{
		Public:   NewRSAPublicKey(creationTime, &priv.PublicKey, isSubkey),
		IsSubkey: isSubkey,
		Locked:   false,
		RSA:      &rsaSecret{D: priv.D, P: priv.Primes[0], Q: priv.Primes[1]},
	}
}

func (pk *PrivateKey) Tag() Tag {
	if pk.IsSubkey {
		return TagSecretSubkey
	}
	return TagSecretKey
}

func (pk *PrivateKey) parseBody(body []byte) error {
	pubBody, err := pk.Public.serializeBodyForParse(body)
	if err != nil {
		return err
	}
	if err := pk.Public.parseBody(pubBody); err != nil {
		return err
	}
	rest := body[len(pubBody):]
	if len(rest) < 1 {
		return errShortRead
	}
	pk.s2kUsage = rest[0]
	rest = rest[1:]

	switch pk.s2kUsage {
	case 0:
		pk.Locked = false
		return pk.parsePlaintextMaterial(rest)
	case 254, 255:
		if len(rest) < 1 {
			return errShortRead
		}
		pk.cipherAlgo = algorithm.CipherFunction(rest[0])
		rest = rest[1:]
		pk.s2kParams = new(s2k.Params)
		consumed, err := pk.s2kParams.ReadFrom(sliceReader(rest))
		if err != nil {
			return err
		}
		rest = rest[consumed:]
		blockSize := pk.cipherAlgo.BlockSize()
		if blockSize == 0 || len(rest) < blockSize {
			return pgperrors.UnsupportedAlgorithm("secret key cipher")
		}
		pk.iv = append([]byte{}, rest[:blockSize]...)
		pk.encrypted = append([]byte{}, rest[blockSize:]...)
		pk.Locked = true
		return nil
	default:
		return pgperrors.UnsupportedAlgorithm("secret key S2K usage")
	}
}

// serializeBodyForParse is a parse-time helper: it needs to know exactly
// how many leading bytes of body belong to the embedded PublicKey, which it
// determines by re-running the public-key field parse against a copy and
// measuring what serializeBody would have produced. Simpler than threading
// an io.Reader cursor through two unrelated parseBody implementations.
func (pub *PublicKey) serializeBodyForParse(body []byte) ([]byte, error) {
	shadow := &PublicKey{IsSubkey: pub.IsSubkey}
	if err := shadow.parseBody(body); err != nil {
		return nil, err
	}
	encoded, err := shadow.serializeBody()
	if err != nil {
		return nil, err
	}
	if len(encoded) > len(body) {
		return nil, errShortRead
	}
	*pub = *shadow
	return encoded, nil
}

func (pk *PrivateKey) parsePlaintextMaterial(data []byte) error {
	fields, err := readSecretMPIs(pk.Public.PubKeyAlgo, data)
	if err != nil {
		return err
	}
	return pk.assignSecretFields(fields)
}

// readSecretMPIs reads the checksum-terminated plaintext MPI sequence for
// alg and verifies the trailing 2-octet sum-mod-65536 checksum, RFC 4880
// section 5.5.3.
func readSecretMPIs(alg algorithm.PublicKeyAlgorithm, data []byte) ([]*big.Int, error) {
	count := secretFieldCount(alg)
	fields := make([]*big.Int, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		m := new(encoding.MPI)
		n, err := m.ReadFrom(sliceReader(data[offset:]))
		if err != nil {
			return nil, err
		}
		fields = append(fields, m.Int())
		offset += int(n)
	}
	if len(data)-offset < 2 {
		return nil, errShortRead
	}
	var checksum uint16
	for _, b := range data[:offset] {
		checksum += uint16(b)
	}
	want := uint16(data[offset])<<8 | uint16(data[offset+1])
	if checksum != want {
		return nil, pgperrors.PassphraseIncorrect("secret key checksum mismatch")
	}
	return fields, nil
}

func secretFieldCount(alg algorithm.PublicKeyAlgorithm) int {
	switch alg {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly, algorithm.PubKeyAlgoRSASignOnly:
		return 4 // d, p, q, u
	case algorithm.PubKeyAlgoDSA:
		return 1 // x
	case algorithm.PubKeyAlgoECDSA:
		return 1 // d
	case algorithm.PubKeyAlgoEdDSA, algorithm.PubKeyAlgoECDH:
		return 1 // scalar
	default:
		return 0
	}
}

func (pk *PrivateKey) assignSecretFields(fields []*big.Int) error {
	switch pk.Public.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly, algorithm.PubKeyAlgoRSASignOnly:
		if len(fields) != 4 {
			return errShortRead
		}
		pk.RSA = &rsaSecret{D: fields[0], P: fields[1], Q: fields[2]}
	case algorithm.PubKeyAlgoDSA:
		pk.DSA = &dsaSecret{X: fields[0]}
	case algorithm.PubKeyAlgoECDSA:
		pk.ECDSA = &ecdsaSecret{D: fields[0]}
	case algorithm.PubKeyAlgoEdDSA:
		seed := fields[0].Bytes()
		if len(seed) < ed25519.SeedSize {
			padded := make([]byte, ed25519.SeedSize)
			copy(padded[ed25519.SeedSize-len(seed):], seed)
			seed = padded
		}
		pk.EdDSA = &eddsaSecret{Key: ed25519.NewKeyFromSeed(seed)}
	case algorithm.PubKeyAlgoECDH:
		var key [32]byte
		b := fields[0].Bytes()
		copy(key[32-len(b):], b)
		pk.ECDH = &ecdhSecret{Key: key}
	default:
		return pgperrors.UnsupportedAlgorithm("secret key algorithm")
	}
	return nil
}

// Unlock decrypts a passphrase-protected secret key in place. A no-op
// (and always successful) if the key was never locked.
func (pk *PrivateKey) Unlock(passphrase []byte) error {
	if !pk.Locked {
		return nil
	}
	key, err := pk.s2kParams.DeriveKey(passphrase, pk.cipherAlgo.KeySize())
	if err != nil {
		return err
	}
	plain, err := pk.cipherAlgo.CFBDecrypt(key, pk.iv, pk.encrypted)
	if err != nil {
		return err
	}
	defer zero(plain)

	if pk.s2kUsage == 254 {
		if len(plain) < sha1.Size {
			return pgperrors.PassphraseIncorrect("truncated secret key material")
		}
		payload := plain[:len(plain)-sha1.Size]
		want := plain[len(plain)-sha1.Size:]
		got := sha1.Sum(payload)
		if !bytesEqual(got[:], want) {
			return pgperrors.PassphraseIncorrect("secret key integrity check failed")
		}
		fields, err := readPlainSecretMPIs(pk.Public.PubKeyAlgo, payload)
		if err != nil {
			return err
		}
		if err := pk.assignSecretFields(fields); err != nil {
			return err
		}
	} else {
		fields, err := readSecretMPIs(pk.Public.PubKeyAlgo, plain)
		if err != nil {
			return err
		}
		if err := pk.assignSecretFields(fields); err != nil {
			return err
		}
	}
	pk.Locked = false
	pk.encrypted = nil
	return nil
}

// readPlainSecretMPIs reads an un-checksummed MPI sequence (used with
// s2kUsage 254, where the trailer is a SHA-1 hash rather than a 2-octet
// checksum).
func readPlainSecretMPIs(alg algorithm.PublicKeyAlgorithm, data []byte) ([]*big.Int, error) {
	count := secretFieldCount(alg)
	fields := make([]*big.Int, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		m := new(encoding.MPI)
		n, err := m.ReadFrom(sliceReader(data[offset:]))
		if err != nil {
			return nil, err
		}
		fields = append(fields, m.Int())
		offset += int(n)
	}
	return fields, nil
}

func (pk *PrivateKey) serializeBody() ([]byte, error) {
	pubBody, err := pk.Public.serializeBody()
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, pubBody...)

	if !pk.Locked && pk.s2kUsage == 0 {
		material, err := pk.plaintextMaterial()
		if err != nil {
			return nil, err
		}
		out = append(out, 0)
		out = append(out, material...)
		return out, nil
	}

	if pk.Locked {
		out = append(out, pk.s2kUsage, byte(pk.cipherAlgo))
		out = append(out, pk.s2kParams.EncodedBytes()...)
		out = append(out, pk.iv...)
		out = append(out, pk.encrypted...)
		return out, nil
	}

	return nil, pgperrors.General("cannot serialize an unlocked key without re-locking it")
}

func (pk *PrivateKey) plaintextMaterial() ([]byte, error) {
	fields, err := pk.secretFields()
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, f := range fields {
		out = append(out, encoding.NewMPIFromInt(f).EncodedBytes()...)
	}
	var checksum uint16
	for _, b := range out {
		checksum += uint16(b)
	}
	out = append(out, byte(checksum>>8), byte(checksum))
	return out, nil
}

func (pk *PrivateKey) secretFields() ([]*big.Int, error) {
	switch pk.Public.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly, algorithm.PubKeyAlgoRSASignOnly:
		return []*big.Int{pk.RSA.D, pk.RSA.P, pk.RSA.Q, new(big.Int)}, nil
	case algorithm.PubKeyAlgoDSA:
		return []*big.Int{pk.DSA.X}, nil
	case algorithm.PubKeyAlgoECDSA:
		return []*big.Int{pk.ECDSA.D}, nil
	case algorithm.PubKeyAlgoEdDSA:
		return []*big.Int{new(big.Int).SetBytes(pk.EdDSA.Key.Seed())}, nil
	case algorithm.PubKeyAlgoECDH:
		return []*big.Int{new(big.Int).SetBytes(pk.ECDH.Key[:])}, nil
	default:
		return nil, pgperrors.UnsupportedAlgorithm("secret key algorithm")
	}
}

// Lock re-encrypts the secret material under passphrase using a fresh S2K
// specifier, leaving the receiver in the Locked state serializeBody expects.
func (pk *PrivateKey) Lock(passphrase []byte, cipherAlgo algorithm.CipherFunction, hashAlgo algorithm.HashFunction) error {
	material, err := pk.plaintextMaterialWithSHA1Trailer()
	if err != nil {
		return err
	}
	params, err := s2k.Generate(hashAlgo)
	if err != nil {
		return err
	}
	key, err := params.DeriveKey(passphrase, cipherAlgo.KeySize())
	if err != nil {
		return err
	}
	iv, err := algorithm.RandomBytes(cipherAlgo.BlockSize())
	if err != nil {
		return err
	}
	ciphertext, err := cipherAlgo.CFBEncrypt(key, iv, material)
	if err != nil {
		return err
	}
	pk.s2kUsage = 254
	pk.cipherAlgo = cipherAlgo
	pk.s2kParams = params
	pk.iv = iv
	pk.encrypted = ciphertext
	pk.Locked = true
	return nil
}

func (pk *PrivateKey) plaintextMaterialWithSHA1Trailer() ([]byte, error) {
	fields, err := pk.secretFields()
	if err != nil {
		return nil, err
	}
	var payload []byte
	for _, f := range fields {
		payload = append(payload, encoding.NewMPIFromInt(f).EncodedBytes()...)
	}
	sum := sha1.Sum(payload)
	return append(payload, sum[:]...), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
