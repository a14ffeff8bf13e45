package algorithm

import (
	"crypto/rand"
	"io"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// Random is the process-wide CSPRNG. It is the one piece of shared mutable
// state in the facade; crypto/rand.Reader is itself safe for concurrent use,
// so no additional locking is needed here.
var Random io.Reader = rand.Reader

// RandomBytes returns n cryptographically random octets.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(Random, buf); err != nil {
		return nil, pgperrors.CryptoFailure("random source: " + err.Error())
	}
	return buf, nil
}
