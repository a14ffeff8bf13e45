package message

import (
	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/packet"
)

// verifySignature checks sig against documentOctets using the public key
// packet the issuer's KeyID resolves to within keys.
func verifySignature(sig *packet.Signature, documentOctets []byte, keys []*key.Key) error {
	signer := key.FindKey(sig.IssuerKeyId, keys)
	if signer == nil {
		return pgperrors.InvalidSignature("issuer key not found")
	}
	pub := signer.Primary
	if pub.KeyId != sig.IssuerKeyId {
		for _, sub := range signer.Subkeys {
			if sub.Public != nil && sub.Public.KeyId == sig.IssuerKeyId {
				pub = sub.Public
			}
		}
	}

	digest, err := sig.Digest(documentOctets)
	if err != nil {
		return pgperrors.InvalidSignature(err.Error())
	}
	if digest[0] != sig.HashTag[0] || digest[1] != sig.HashTag[1] {
		return pgperrors.InvalidSignature("hash tag mismatch")
	}

	var ok bool
	switch sig.PubKeyAlgo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSASignOnly:
		ok = algorithm.RSAVerify(pub.RSAPublicKey(), sig.HashAlgo, digest, sig.RSA.Bytes())
	case algorithm.PubKeyAlgoDSA:
		ok = algorithm.DSAVerify(pub.DSAPublicKey(), digest, sig.DSAR, sig.DSAS)
	case algorithm.PubKeyAlgoECDSA:
		ok = algorithm.ECDSAVerify(pub.ECDSAPublicKey(), digest, sig.ECDSAR, sig.ECDSAS)
	case algorithm.PubKeyAlgoEdDSA:
		if pub.EdDSA == nil {
			return pgperrors.InvalidSignature("issuer key is not an EdDSA key")
		}
		ok = algorithm.EdDSAVerify(pub.EdDSA.Key, digest, sig.EdDSA)
	default:
		return pgperrors.UnsupportedAlgorithm("signature public key algorithm")
	}
	if !ok {
		return pgperrors.InvalidSignature("signature does not verify")
	}
	return nil
}

// Verify checks data against keys. With a detached signature, data is
// hashed as-is against it. Without one, data is treated as a full message:
// decrypted first if encrypted, then its trailing Signature and
// LiteralData packets are located and checked against each other.
func Verify(data []byte, detachedSig []byte, keys []*key.Key, passphrase PassphraseFunc) (bool, error) {
	if len(detachedSig) > 0 {
		packets := packet.ParseAll(detachedSig)
		sig := lastSignature(packets)
		if sig == nil {
			return false, pgperrors.InvalidMessage("no signature packet found")
		}
		if err := verifySignature(sig, data, keys); err != nil {
			return false, err
		}
		return true, nil
	}

	plain, sig, err := decodeSignedOrEncrypted(data, keys, passphrase)
	if err != nil {
		return false, err
	}
	if sig == nil {
		return false, pgperrors.NotSigned("")
	}
	if err := verifySignature(sig, plain, keys); err != nil {
		return false, err
	}
	return true, nil
}

func lastSignature(packets []packet.Packet) *packet.Signature {
	var last *packet.Signature
	for _, p := range packets {
		if sig, ok := p.(*packet.Signature); ok {
			last = sig
		}
	}
	return last
}

// decodeSignedOrEncrypted resolves data (armored or not, encrypted or
// plaintext) down to its literal body and, if present, the Signature
// packet that covers it — shared by Verify and Decrypt.
func decodeSignedOrEncrypted(data []byte, keys []*key.Key, passphrase PassphraseFunc) ([]byte, *packet.Signature, error) {
	inner, err := dearmorAndDecrypt(data, keys, passphrase)
	if err != nil {
		return nil, nil, err
	}
	packets := descendCompressed(packet.ParseAll(inner))

	var literal *packet.LiteralData
	var sig *packet.Signature
	for _, p := range packets {
		switch v := p.(type) {
		case *packet.LiteralData:
			literal = v
		case *packet.Signature:
			sig = v
		}
	}
	if literal == nil {
		return nil, nil, pgperrors.InvalidMessage("no literal data packet found")
	}
	body := literal.SignedOctets()
	if sig == nil {
		return literal.Body, nil, nil
	}
	return body, sig, nil
}

func descendCompressed(packets []packet.Packet) []packet.Packet {
	var out []packet.Packet
	for _, p := range packets {
		if c, ok := p.(*packet.CompressedData); ok {
			inner, err := c.Decompress()
			if err != nil {
				continue
			}
			out = append(out, descendCompressed(packet.ParseAll(inner))...)
			continue
		}
		out = append(out, p)
	}
	return out
}
