package packet

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"math/big"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// RSAPublicKey adapts this packet's RSA public material to crypto/rsa,
// for use by the algorithm facade's Sign/Verify/Encrypt calls.
func (pk *PublicKey) RSAPublicKey() *rsa.PublicKey {
	if pk.RSA == nil {
		return nil
	}
	return &rsa.PublicKey{N: pk.RSA.N, E: int(pk.RSA.E.Int64())}
}

// RSAPrivateKey adapts this packet's RSA secret material to crypto/rsa.
func (pk *PrivateKey) RSAPrivateKey() (*rsa.PrivateKey, error) {
	if pk.RSA == nil {
		return nil, pgperrors.CryptoFailure("not an RSA secret key")
	}
	priv := &rsa.PrivateKey{
		PublicKey: *pk.Public.RSAPublicKey(),
		D:         pk.RSA.D,
		Primes:    []*big.Int{pk.RSA.P, pk.RSA.Q},
	}
	priv.Precompute()
	return priv, nil
}

func (pk *PublicKey) DSAPublicKey() *dsa.PublicKey {
	if pk.DSA == nil {
		return nil
	}
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: pk.DSA.P, Q: pk.DSA.Q, G: pk.DSA.G},
		Y:          pk.DSA.Y,
	}
}

func (pk *PrivateKey) DSAPrivateKey() (*dsa.PrivateKey, error) {
	if pk.DSA == nil {
		return nil, pgperrors.CryptoFailure("not a DSA secret key")
	}
	return &dsa.PrivateKey{
		PublicKey: *pk.Public.DSAPublicKey(),
		X:         pk.DSA.X,
	}, nil
}

func (pk *PublicKey) ECDSAPublicKey() *ecdsa.PublicKey {
	if pk.ECDSA == nil {
		return nil
	}
	return &ecdsa.PublicKey{Curve: pk.ECDSA.Curve, X: pk.ECDSA.X, Y: pk.ECDSA.Y}
}

func (pk *PrivateKey) ECDSAPrivateKey() (*ecdsa.PrivateKey, error) {
	if pk.ECDSA == nil {
		return nil, pgperrors.CryptoFailure("not an ECDSA secret key")
	}
	return &ecdsa.PrivateKey{
		PublicKey: *pk.Public.ECDSAPublicKey(),
		D:         pk.ECDSA.D,
	}, nil
}
