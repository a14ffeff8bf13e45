package packet

import (
	"bytes"
	"compress/bzip2"
	"compress/flate"
	"compress/zlib"
	"io"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// CompressionAlgorithm identifies the compression method of a CompressedData
// packet's body, RFC 4880 section 9.3.
type CompressionAlgorithm uint8

const (
	CompressionNone CompressionAlgorithm = 0
	CompressionZIP  CompressionAlgorithm = 1
	CompressionZLIB CompressionAlgorithm = 2
	CompressionBZIP2 CompressionAlgorithm = 3
)

// CompressedData is a CompressedData packet (tag 8): one algorithm octet
// followed by the compressed stream, which itself contains further OpenPGP
// packets once decompressed.
type CompressedData struct {
	Algo       CompressionAlgorithm
	Contents   []byte // compressed bytes, as stored/read
}

func (c *CompressedData) Tag() Tag { return TagCompressedData }

func (c *CompressedData) parseBody(body []byte) error {
	if len(body) < 1 {
		return errShortRead
	}
	c.Algo = CompressionAlgorithm(body[0])
	c.Contents = append([]byte{}, body[1:]...)
	return nil
}

func (c *CompressedData) serializeBody() ([]byte, error) {
	return append([]byte{byte(c.Algo)}, c.Contents...), nil
}

// Decompress inflates Contents into the inner packet stream.
func (c *CompressedData) Decompress() ([]byte, error) {
	switch c.Algo {
	case CompressionNone:
		return c.Contents, nil
	case CompressionZIP:
		r := flate.NewReader(bytes.NewReader(c.Contents))
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZLIB:
		r, err := zlib.NewReader(bytes.NewReader(c.Contents))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionBZIP2:
		// decompress-only: Go's standard library does not implement a
		// bzip2 writer.
		r := bzip2.NewReader(bytes.NewReader(c.Contents))
		return io.ReadAll(r)
	default:
		return nil, pgperrors.UnsupportedAlgorithm("compression algorithm")
	}
}

// NewCompressedData compresses innerPackets under algo and wraps the result
// in a CompressedData packet. CompressionBZIP2 is rejected: there is no
// bzip2 encoder in the standard library and none of this module's
// dependencies supply one (see DESIGN.md).
func NewCompressedData(algo CompressionAlgorithm, innerPackets []byte) (*CompressedData, error) {
	switch algo {
	case CompressionNone:
		return &CompressedData{Algo: algo, Contents: innerPackets}, nil
	case CompressionZIP:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(innerPackets); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return &CompressedData{Algo: algo, Contents: buf.Bytes()}, nil
	case CompressionZLIB:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(innerPackets); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return &CompressedData{Algo: algo, Contents: buf.Bytes()}, nil
	case CompressionBZIP2:
		return nil, pgperrors.UnsupportedAlgorithm("BZIP2 compression on emit")
	default:
		return nil, pgperrors.UnsupportedAlgorithm("compression algorithm")
	}
}
