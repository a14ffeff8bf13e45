package encoding

import "io"

// OctetArray is a fixed-length field with no on-wire length prefix of its
// own — the length is implied by context (a 20-octet V4 fingerprint, a
// 16-octet IV, a curve OID length byte handled by the caller).
type OctetArray struct {
	length int
	data   []byte
}

// NewOctetArray wraps an existing fixed-length buffer.
func NewOctetArray(data []byte) *OctetArray {
	return &OctetArray{length: len(data), data: data}
}

// NewEmptyOctetArray allocates space for a ReadFrom of the given length.
func NewEmptyOctetArray(length int) *OctetArray {
	return &OctetArray{length: length}
}

func (o *OctetArray) Bytes() []byte       { return o.data }
func (o *OctetArray) BitLength() uint16   { return uint16(o.length * 8) }
func (o *OctetArray) EncodedBytes() []byte { return o.data }
func (o *OctetArray) EncodedLength() uint16 { return uint16(o.length) }

func (o *OctetArray) ReadFrom(r io.Reader) (int64, error) {
	o.data = make([]byte, o.length)
	n, err := io.ReadFull(r, o.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(n), err
}

// ShortByteString is a field prefixed by a single 2-octet big-endian byte
// count (used by the composite KEM ciphertext field, which is larger than
// a typical curve OID but still fits RFC 4880's 2-octet length convention
// for opaque blobs).
type ShortByteString struct {
	length uint16
	data   []byte
}

func NewShortByteString(data []byte) *ShortByteString {
	return &ShortByteString{length: uint16(len(data)), data: data}
}

func (s *ShortByteString) Bytes() []byte     { return s.data }
func (s *ShortByteString) BitLength() uint16 { return s.length * 8 }

func (s *ShortByteString) EncodedBytes() []byte {
	out := make([]byte, 2, 2+len(s.data))
	out[0] = byte(s.length >> 8)
	out[1] = byte(s.length)
	return append(out, s.data...)
}

func (s *ShortByteString) EncodedLength() uint16 { return s.length + 2 }

func (s *ShortByteString) ReadFrom(r io.Reader) (int64, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	s.length = uint16(header[0])<<8 | uint16(header[1])
	s.data = make([]byte, s.length)
	n, err := io.ReadFull(r, s.data)
	return int64(2 + n), err
}
