package message

import (
	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/armor"
	pgperrors "github.com/pgpflow/openpgp/errors"
	"github.com/pgpflow/openpgp/key"
	"github.com/pgpflow/openpgp/packet"
)

// Decrypt de-armors data, finds a PKESK addressed to an available secret
// key, recovers the session key, decrypts the SEIPD/SED envelope, and
// returns the literal body. If verify is set, the trailing Signature is
// also checked; a message without one fails with NotSigned.
func Decrypt(data []byte, keys []*key.Key, passphrase PassphraseFunc, verify bool) ([]byte, error) {
	if !verify {
		inner, err := dearmorAndDecrypt(data, keys, passphrase)
		if err != nil {
			return nil, err
		}
		packets := descendCompressed(packet.ParseAll(inner))
		for _, p := range packets {
			if lit, ok := p.(*packet.LiteralData); ok {
				return lit.Body, nil
			}
		}
		return nil, pgperrors.InvalidMessage("no literal data packet found")
	}

	plain, sig, err := decodeSignedOrEncrypted(data, keys, passphrase)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, pgperrors.NotSigned("")
	}
	if err := verifySignature(sig, plain, keys); err != nil {
		return nil, err
	}
	return plain, nil
}

// dearmorAndDecrypt resolves data down to the packet stream a SEIPD/SED
// envelope decrypts to — or, for an unencrypted message, the message's own
// packet stream unchanged.
func dearmorAndDecrypt(data []byte, keys []*key.Key, passphrase PassphraseFunc) ([]byte, error) {
	blocks, err := armor.ExtractBlocks(data)
	if err != nil {
		return nil, pgperrors.InvalidMessage(err.Error())
	}
	var firstErr error
	for _, block := range blocks {
		out, err := decryptBlock(block, keys, passphrase)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, pgperrors.InvalidMessage("empty message")
}

func decryptBlock(data []byte, keys []*key.Key, passphrase PassphraseFunc) ([]byte, error) {
	packets := packet.ParseAll(data)

	var esks []*packet.EncryptedKey
	var seipd *packet.SymmetricallyEncryptedIntegrityProtected
	var sed *packet.SymmetricallyEncrypted
	for _, p := range packets {
		switch v := p.(type) {
		case *packet.EncryptedKey:
			esks = append(esks, v)
		case *packet.SymmetricallyEncryptedIntegrityProtected:
			seipd = v
		case *packet.SymmetricallyEncrypted:
			sed = v
		}
	}

	if seipd == nil && sed == nil {
		// No ESK/SEIPD envelope at all: treat the stream as already plaintext.
		return data, nil
	}

	symAlgo, sessionKey, err := recoverSessionKey(esks, keys, passphrase)
	if err != nil {
		return nil, err
	}

	if seipd != nil {
		return seipd.Decrypt(symAlgo, sessionKey)
	}
	return sed.Decrypt(symAlgo, sessionKey)
}

// recoverSessionKey scans esks for one whose KeyId matches a usable secret
// key, unlocking it via passphrase if needed. PassphraseRequired takes
// precedence over InvalidMessage when a locked key's callback returned
// nothing.
func recoverSessionKey(esks []*packet.EncryptedKey, keys []*key.Key, passphrase PassphraseFunc) (algorithm.CipherFunction, []byte, error) {
	var passphraseErr error
	for _, esk := range esks {
		owner := key.FindKey(esk.KeyId, keys)
		if owner == nil {
			continue
		}
		priv := owner.DecryptionKey(esk.KeyId)
		if priv == nil {
			continue
		}
		if priv.Locked {
			if err := unlockWithCallback(priv, owner, passphrase); err != nil {
				if passphraseErr == nil {
					passphraseErr = err
				}
				continue
			}
		}
		if err := decryptESK(esk, priv); err != nil {
			continue
		}
		return esk.CipherFunc, esk.Key, nil
	}
	if passphraseErr != nil {
		return 0, nil, passphraseErr
	}
	return 0, nil, pgperrors.InvalidMessage("no matching secret key found for any PKESK")
}

func decryptESK(esk *packet.EncryptedKey, priv *packet.PrivateKey) error {
	switch esk.Algo {
	case algorithm.PubKeyAlgoRSA, algorithm.PubKeyAlgoRSAEncryptOnly:
		rsaPriv, err := priv.RSAPrivateKey()
		if err != nil {
			return err
		}
		return esk.DecryptRSA(rsaPriv)
	case algorithm.PubKeyAlgoECDH:
		if priv.ECDH == nil {
			return pgperrors.CryptoFailure("not an ECDH secret key")
		}
		return esk.DecryptECDH(priv.ECDH.Key)
	case algorithm.PubKeyAlgoKyber768X25519:
		if priv.Kyber == nil {
			return pgperrors.CryptoFailure("not a composite PQC secret key")
		}
		return esk.DecryptKyber768X25519(priv.Kyber.X25519, priv.Kyber.Kyber)
	default:
		return pgperrors.UnsupportedAlgorithm("PKESK public key algorithm")
	}
}
