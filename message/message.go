// Package message drives the encrypt/decrypt/sign/verify flows: composing
// and decomposing well-formed OpenPGP messages from the packet primitives
// in package packet, using package key to resolve which packet belongs to
// which recipient or signer. Adapted from the orchestration in
// github.com/ProtonMail/go-crypto/openpgp/v2/write.go and read.go, ported
// from their io.Reader/io.WriteCloser streaming design to operate on whole
// in-memory byte slices, matching this module's byte-slice packet contract.
package message

import (
	"time"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/armor"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/packet"
)

// PassphraseFunc is invoked synchronously to retrieve the passphrase for a
// locked secret key; ok is false when no passphrase is available, which
// surfaces as PassphraseRequired rather than being retried.
type PassphraseFunc func(lockedKey *key.Key) (passphrase []byte, ok bool)

// Options configures Encrypt.
type Options struct {
	// SignWith, if non-nil, wraps the literal content in a OnePassSignature
	// and trailing Signature computed with this key's signing subkey.
	SignWith *key.Key
	// Passphrase unlocks SignWith if it is passphrase-protected.
	Passphrase PassphraseFunc
	Armored    bool
	HashAlgo   algorithm.HashFunction // defaults to SHA-512, "Sign"
}

func (o Options) hashAlgo() algorithm.HashFunction {
	if o.HashAlgo == 0 {
		return algorithm.HashSHA512
	}
	return o.HashAlgo
}

// Encrypt encrypts data to recipients, optionally signing it first.
func Encrypt(data []byte, recipients []*key.Key, opts Options) ([]byte, error) {
	usable := make([]*key.Key, 0, len(recipients))
	var encKeys []*packet.PublicKey
	for _, r := range recipients {
		pub := r.EncryptionKey()
		if pub == nil {
			continue
		}
		usable = append(usable, r)
		encKeys = append(encKeys, pub)
	}
	if len(encKeys) == 0 {
		return nil, pgperrors.InvalidMessage("no usable encryption key in recipient set")
	}

	symAlgo := key.PreferredCipher(usable)
	sessionKey, err := algorithm.RandomBytes(symAlgo.KeySize())
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, pub := range encKeys {
		esk, err := encryptSessionKeyTo(pub, symAlgo, sessionKey)
		if err != nil {
			return nil, err
		}
		b, err := packet.Serialize(esk)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}

	inner, err := buildInnerContent(data, usable, opts)
	if err != nil {
		return nil, err
	}

	seipd, err := packet.EncryptSEIPD(symAlgo, sessionKey, inner)
	if err != nil {
		return nil, err
	}
	seipdBytes, err := packet.Serialize(seipd)
	if err != nil {
		return nil, err
	}
	out = append(out, seipdBytes...)

	if opts.Armored {
		return []byte(armor.Wrap(armor.Message, out)), nil
	}
	return out, nil
}

func encryptSessionKeyTo(pub *packet.PublicKey, symAlgo algorithm.CipherFunction, sessionKey []byte) (*packet.EncryptedKey, error) {
	switch pub.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly:
		return packet.EncryptRSA(pub.KeyId, pub.RSAPublicKey(), symAlgo, sessionKey)
	case algorithm.PubKeyAlgoECDH:
		return packet.EncryptECDH(pub.KeyId, pub.ECDH.Key, symAlgo, sessionKey)
	case algorithm.PubKeyAlgoKyber768X25519:
		return packet.EncryptKyber768X25519(pub.KeyId, pub.Kyber.X25519, pub.Kyber.Kyber, symAlgo, sessionKey)
	default:
		return nil, pgperrors.UnsupportedAlgorithm("recipient public key algorithm")
	}
}

// buildInnerContent assembles the packet sequence that goes inside the
// SEIPD envelope: either a signed bundle (OnePassSignature | Literal |
// Signature) or a compressed literal.
func buildInnerContent(data []byte, recipients []*key.Key, opts Options) ([]byte, error) {
	literal := &packet.LiteralData{
		Format: packet.FormatBinary,
		Time:   uint32(time.Now().Unix()),
		Body:   data,
	}

	if opts.SignWith == nil {
		litBytes, err := packet.Serialize(literal)
		if err != nil {
			return nil, err
		}
		compAlgo := packet.CompressionAlgorithm(key.PreferredCompressionAlgorithm(recipients))
		compressed, err := packet.NewCompressedData(compAlgo, litBytes)
		if err != nil {
			return nil, err
		}
		return packet.Serialize(compressed)
	}

	signer := opts.SignWith.SigningKey()
	if signer == nil {
		return nil, pgperrors.InvalidMessage("sign-with key has no usable signing subkey")
	}
	if signer.Locked {
		if err := unlockWithCallback(signer, opts.SignWith, opts.Passphrase); err != nil {
			return nil, err
		}
	}

	ops := &packet.OnePassSignature{
		Version:  3,
		SigType:  packet.SigTypeBinary,
		HashAlgo: opts.hashAlgo(),
		PubAlgo:  signer.Public.PubKeyAlgo,
		KeyId:    signer.Public.KeyId,
		IsNested: false,
	}

	sig, err := signDocument(literal.SignedOctets(), signer, packet.SigTypeBinary, opts.hashAlgo())
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, p := range []packet.Packet{ops, literal, sig} {
		b, err := packet.Serialize(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func unlockWithCallback(priv *packet.PrivateKey, owner *key.Key, cb PassphraseFunc) error {
	if !priv.Locked {
		return nil
	}
	if cb == nil {
		return pgperrors.PassphraseRequired("signing key is locked")
	}
	passphrase, ok := cb(owner)
	if !ok {
		return pgperrors.PassphraseRequired("signing key is locked")
	}
	if err := priv.Unlock(passphrase); err != nil {
		return pgperrors.PassphraseIncorrect(err.Error())
	}
	return nil
}

