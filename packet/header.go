package packet

import pgperrors "github.com/pgpflow/openpgp/errors"

// parseHeader reads a packet header starting at data[offset]. It returns the
// packet's tag, the body's byte range within data, and the total number of
// header-plus-body bytes consumed. An unrecognized tag byte or a length
// that runs past the end of data is reported as an error with
// consumed>=1 so the caller can resynchronize by skipping a single byte
// and retrying.
func parseHeader(data []byte, offset int) (tag Tag, bodyStart, bodyEnd, consumed int, err error) {
	if offset >= len(data) {
		return 0, 0, 0, 0, pgperrors.StructuralError("truncated header")
	}
	first := data[offset]
	if first&0x80 == 0 {
		return 0, 0, 0, 1, pgperrors.StructuralError("invalid packet tag byte")
	}

	var bodyLen int
	var headerLen int
	if first&0x40 != 0 {
		// New format: 11TTTTTT
		tag = Tag(first & 0x3F)
		if offset+1 >= len(data) {
			return 0, 0, 0, 1, pgperrors.StructuralError("truncated new-format length")
		}
		l0 := data[offset+1]
		switch {
		case l0 < 192:
			bodyLen = int(l0)
			headerLen = 2
		case l0 < 224:
			if offset+2 >= len(data) {
				return 0, 0, 0, 1, pgperrors.StructuralError("truncated new-format length")
			}
			bodyLen = (int(l0)-192)<<8 + int(data[offset+2]) + 192
			headerLen = 3
		case l0 == 255:
			if offset+5 >= len(data) {
				return 0, 0, 0, 1, pgperrors.StructuralError("truncated new-format length")
			}
			bodyLen = int(data[offset+2])<<24 | int(data[offset+3])<<16 | int(data[offset+4])<<8 | int(data[offset+5])
			headerLen = 6
		default:
			// Partial body lengths (224-254): not produced by this pipeline
			// and not required by any operation; treated as
			// a structural error so the stream resynchronizes past it.
			return 0, 0, 0, 1, pgperrors.StructuralError("partial body lengths are not supported")
		}
	} else {
		// Old format: 10TTTTLL
		tag = Tag((first & 0x3C) >> 2)
		lengthType := first & 0x03
		switch lengthType {
		case 0:
			if offset+1 >= len(data) {
				return 0, 0, 0, 1, pgperrors.StructuralError("truncated old-format length")
			}
			bodyLen = int(data[offset+1])
			headerLen = 2
		case 1:
			if offset+2 >= len(data) {
				return 0, 0, 0, 1, pgperrors.StructuralError("truncated old-format length")
			}
			bodyLen = int(data[offset+1])<<8 | int(data[offset+2])
			headerLen = 3
		case 2:
			if offset+4 >= len(data) {
				return 0, 0, 0, 1, pgperrors.StructuralError("truncated old-format length")
			}
			bodyLen = int(data[offset+1])<<24 | int(data[offset+2])<<16 | int(data[offset+3])<<8 | int(data[offset+4])
			headerLen = 5
		case 3:
			bodyLen = len(data) - offset - 1
			headerLen = 1
		}
	}

	bodyStart = offset + headerLen
	bodyEnd = bodyStart + bodyLen
	if bodyEnd > len(data) {
		return 0, 0, 0, 1, pgperrors.StructuralError("length overruns buffer")
	}
	return tag, bodyStart, bodyEnd, headerLen + bodyLen, nil
}

// serializeHeader emits the smallest legal new-format header for tag and
// bodyLen. The codec always emits new-format headers on compose, never
// old-format.
func serializeHeader(tag Tag, bodyLen int) []byte {
	first := 0xC0 | byte(tag)
	switch {
	case bodyLen < 192:
		return []byte{first, byte(bodyLen)}
	case bodyLen < 8384:
		adjusted := bodyLen - 192
		return []byte{first, byte(adjusted>>8) + 192, byte(adjusted)}
	default:
		return []byte{
			first, 255,
			byte(bodyLen >> 24), byte(bodyLen >> 16), byte(bodyLen >> 8), byte(bodyLen),
		}
	}
}
