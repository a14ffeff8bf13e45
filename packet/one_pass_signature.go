package packet

import (
	"encoding/binary"

	"github.com/pgpflow/openpgp/algorithm"
	pgperrors "github.com/pgpflow/openpgp/errors"
)

// OnePassSignature (tag 4) precedes the literal content it signs, so a
// streaming verifier can start hashing before seeing the trailing
// Signature. A run of OnePassSignature packets and the trailing run of
// Signature packets bracket the literal content LIFO; IsNested is true
// on all but the innermost (first emitted, last consumed).
type OnePassSignature struct {
	Version  int
	SigType  SignatureType
	HashAlgo algorithm.HashFunction
	PubAlgo  algorithm.PublicKeyAlgorithm
	KeyId    uint64
	IsNested bool
}

func (o *OnePassSignature) Tag() Tag { return TagOnePassSignature }

func (o *OnePassSignature) parseBody(body []byte) error {
	if len(body) != 13 {
		return errShortRead
	}
	o.Version = int(body[0])
	if o.Version != 3 {
		return pgperrors.UnsupportedAlgorithm("OnePassSignature version")
	}
	o.SigType = SignatureType(body[1])
	o.HashAlgo = algorithm.HashFunction(body[2])
	o.PubAlgo = algorithm.PublicKeyAlgorithm(body[3])
	o.KeyId = binary.BigEndian.Uint64(body[4:12])
	o.IsNested = body[12] == 0
	return nil
}

func (o *OnePassSignature) serializeBody() ([]byte, error) {
	out := make([]byte, 13)
	out[0] = 3
	out[1] = byte(o.SigType)
	out[2] = byte(o.HashAlgo)
	out[3] = byte(o.PubAlgo)
	binary.BigEndian.PutUint64(out[4:12], o.KeyId)
	if o.IsNested {
		out[12] = 0
	} else {
		out[12] = 1
	}
	return out, nil
}
