package packet

import (
	"encoding/binary"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// LiteralFormat identifies how LiteralData.Body should be interpreted, per
// RFC 4880 section 5.9.
type LiteralFormat byte

const (
	FormatBinary LiteralFormat = 'b'
	FormatText   LiteralFormat = 't'
	FormatUTF8   LiteralFormat = 'u'
)

// LiteralData is the innermost content-bearing packet (tag 11): a file
// name, a modification time, and a body of the given format.
type LiteralData struct {
	Format LiteralFormat
	FileName string
	Time   uint32
	Body   []byte
}

func (l *LiteralData) Tag() Tag { return TagLiteralData }

func (l *LiteralData) parseBody(body []byte) error {
	if len(body) < 1 {
		return errShortRead
	}
	l.Format = LiteralFormat(body[0])
	if len(body) < 2 {
		return errShortRead
	}
	nameLen := int(body[1])
	if len(body) < 2+nameLen+4 {
		return errShortRead
	}
	l.FileName = string(body[2 : 2+nameLen])
	l.Time = binary.BigEndian.Uint32(body[2+nameLen : 2+nameLen+4])
	l.Body = append([]byte{}, body[2+nameLen+4:]...)
	return nil
}

func (l *LiteralData) serializeBody() ([]byte, error) {
	if len(l.FileName) > 255 {
		return nil, pgperrors.General("literal data file name too long")
	}
	out := make([]byte, 0, 2+len(l.FileName)+4+len(l.Body))
	out = append(out, byte(l.Format), byte(len(l.FileName)))
	out = append(out, l.FileName...)
	var timeBuf [4]byte
	binary.BigEndian.PutUint32(timeBuf[:], l.Time)
	out = append(out, timeBuf[:]...)
	out = append(out, l.Body...)
	return out, nil
}

// SignedOctets returns the octet stream a Signature over this literal body
// is computed against. For text modes, line endings are normalized to CRLF
// first, per RFC 4880's canonical text signing rule.
func (l *LiteralData) SignedOctets() []byte {
	if l.Format == FormatBinary {
		return l.Body
	}
	return normalizeCRLF(l.Body)
}

func normalizeCRLF(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' && (i == 0 || data[i-1] != '\r') {
			out = append(out, '\r', '\n')
		} else {
			out = append(out, data[i])
		}
	}
	return out
}
