package message

import (
	"math/big"
	"time"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/armor"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/packet"
)

// signDocument builds a V4 Signature packet of sigType over documentOctets
// using signer's secret key.
func signDocument(documentOctets []byte, signer *packet.PrivateKey, sigType packet.SignatureType, hashAlgo algorithm.HashFunction) (*packet.Signature, error) {
	sig := packet.NewSignature(sigType, signer.Public.PubKeyAlgo, hashAlgo, signer.Public.KeyId, time.Now())
	sig.PrepareHashed()

	digest, err := sig.Digest(documentOctets)
	if err != nil {
		return nil, err
	}
	sig.HashTag[0], sig.HashTag[1] = digest[0], digest[1]

	switch signer.Public.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSASignOnly:
		priv, err := signer.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		sigBytes, err := algorithm.RSASign(priv, hashAlgo, digest)
		if err != nil {
			return nil, err
		}
		sig.RSA = new(big.Int).SetBytes(sigBytes)
	case algorithm.PubKeyAlgoDSA:
		priv, err := signer.DSAPrivateKey()
		if err != nil {
			return nil, err
		}
		r, s, err := algorithm.DSASign(priv, digest)
		if err != nil {
			return nil, err
		}
		sig.DSAR, sig.DSAS = r, s
	case algorithm.PubKeyAlgoECDSA:
		priv, err := signer.ECDSAPrivateKey()
		if err != nil {
			return nil, err
		}
		r, s, err := algorithm.ECDSASign(priv, digest)
		if err != nil {
			return nil, err
		}
		sig.ECDSAR, sig.ECDSAS = r, s
	case algorithm.PubKeyAlgoEdDSA:
		if signer.EdDSA == nil {
			return nil, pgperrors.CryptoFailure("not an EdDSA secret key")
		}
		sigBytes, err := algorithm.EdDSASign(signer.EdDSA.Key, digest)
		if err != nil {
			return nil, err
		}
		sig.EdDSA = sigBytes
	default:
		return nil, pgperrors.UnsupportedAlgorithm("signing public key algorithm")
	}
	return sig, nil
}

// Sign signs data with signer. detached produces a lone Signature packet
// over data; embedded produces OnePassSignature|LiteralData|Signature.
func Sign(data []byte, signer *key.Key, opts Options, detached bool) ([]byte, error) {
	priv := signer.SigningKey()
	if priv == nil {
		return nil, pgperrors.InvalidMessage("key has no usable signing subkey")
	}
	if priv.Locked {
		if err := unlockWithCallback(priv, signer, opts.Passphrase); err != nil {
			return nil, err
		}
	}

	var out []byte
	if detached {
		sig, err := signDocument(data, priv, packet.SigTypeBinary, opts.hashAlgo())
		if err != nil {
			return nil, err
		}
		b, err := packet.Serialize(sig)
		if err != nil {
			return nil, err
		}
		out = b
	} else {
		literal := &packet.LiteralData{Format: packet.FormatBinary, Time: uint32(time.Now().Unix()), Body: data}
		sig, err := signDocument(literal.SignedOctets(), priv, packet.SigTypeBinary, opts.hashAlgo())
		if err != nil {
			return nil, err
		}
		ops := &packet.OnePassSignature{
			Version: 3, SigType: packet.SigTypeBinary, HashAlgo: opts.hashAlgo(),
			PubAlgo: priv.Public.PubKeyAlgo, KeyId: priv.Public.KeyId, IsNested: false,
		}
		for _, p := range []packet.Packet{ops, literal, sig} {
			b, err := packet.Serialize(p)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}

	if opts.Armored {
		kind := armor.Signature
		if !detached {
			kind = armor.Message
		}
		return []byte(armor.Wrap(kind, out)), nil
	}
	return out, nil
}
