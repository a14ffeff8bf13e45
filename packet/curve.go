package packet

import (
	"bytes"
	"crypto/elliptic"
	"io"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// sliceReader adapts a byte slice to io.Reader for the encoding.Field
// ReadFrom contract, without allocating beyond the bytes.Reader itself.
func sliceReader(data []byte) io.Reader { return bytes.NewReader(data) }

// Curve OIDs, RFC 4880bis section 9.2 / 9.3.
var (
	oidNistP256 = []byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07}
	oidNistP384 = []byte{0x2B, 0x81, 0x04, 0x00, 0x22}
	oidNistP521 = []byte{0x2B, 0x81, 0x04, 0x00, 0x23}
	oidEd25519  = []byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01}
	oidX25519   = []byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01}
)

func curveForOID(oid []byte) (elliptic.Curve, error) {
	switch {
	case bytes.Equal(oid, oidNistP256):
		return elliptic.P256(), nil
	case bytes.Equal(oid, oidNistP384):
		return elliptic.P384(), nil
	case bytes.Equal(oid, oidNistP521):
		return elliptic.P521(), nil
	default:
		return nil, pgperrors.UnsupportedAlgorithm("elliptic curve OID")
	}
}

func oidForCurve(curve elliptic.Curve) ([]byte, error) {
	switch curve {
	case elliptic.P256():
		return oidNistP256, nil
	case elliptic.P384():
		return oidNistP384, nil
	case elliptic.P521():
		return oidNistP521, nil
	default:
		return nil, pgperrors.UnsupportedAlgorithm("elliptic curve")
	}
}
