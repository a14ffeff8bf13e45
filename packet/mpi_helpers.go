package packet

import (
	"math/big"

	"github.com/pgpflow/openpgp/encoding"
)

// readMPIInt reads a single MPI and returns it as a big.Int, used by
// signature algorithms with exactly one MPI field (RSA).
func readMPIInt(data []byte) (*big.Int, error) {
	v, _, err := readMPIIntN(data)
	return v, err
}

// readMPIIntN is readMPIInt but also reports bytes consumed, for signature
// algorithms with multiple sequential MPI fields (DSA, ECDSA r/s).
func readMPIIntN(data []byte) (*big.Int, int, error) {
	m := new(encoding.MPI)
	n, err := m.ReadFrom(sliceReader(data))
	if err != nil {
		return nil, 0, err
	}
	return m.Int(), int(n), nil
}

// readMPIBytesN is readMPIIntN but returns the raw big-endian bytes instead
// of a big.Int, for EdDSA's fixed-width R/S components.
func readMPIBytesN(data []byte) ([]byte, int, error) {
	m := new(encoding.MPI)
	n, err := m.ReadFrom(sliceReader(data))
	if err != nil {
		return nil, 0, err
	}
	return m.Bytes(), int(n), nil
}

func mpiBytesFromInt(v *big.Int) []byte {
	return encoding.NewMPIFromInt(v).EncodedBytes()
}

func mpiBytesFromRaw(b []byte) []byte {
	return encoding.NewMPI(b).EncodedBytes()
}
