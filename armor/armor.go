// Package armor implements the ASCII armor boundary (RFC 4880 section 6):
// detecting, extracting and producing the Base64 + CRC-24 text envelope
// that wraps a binary OpenPGP packet stream for transport over text-only
// channels.
package armor

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"

	pgperrors "github.com/pgpflow/openpgp/errors"
)

// Type identifies the kind of armored block, selecting its BEGIN/END header
// text per RFC 4880 section 6.2.
type Type string

const (
	Message    Type = "MESSAGE"
	PublicKey  Type = "PUBLIC KEY BLOCK"
	PrivateKey Type = "PRIVATE KEY BLOCK"
	Signature  Type = "SIGNATURE"
)

const crc24Init = 0xB704CE
const crc24Poly = 0x864CFB

// crc24 computes the RFC 4880 section 6.1 checksum used as the armor
// trailer.
func crc24(data []byte) uint32 {
	crc := uint32(crc24Init)
	for _, b := range data {
		crc ^= uint32(b) << 16
		for i := 0; i < 8; i++ {
			crc <<= 1
			if crc&0x1000000 != 0 {
				crc ^= crc24Poly
			}
		}
	}
	return crc & 0xFFFFFF
}

var beginMarker = regexp.MustCompile(`-----BEGIN PGP ([A-Z ]+)-----[ \t]*\r?\n`)
var endMarker = regexp.MustCompile(`-----END PGP ([A-Z ]+)-----`)

// IsArmored reports whether data's UTF-8 prefix looks like an ASCII-armored
// OpenPGP block.
func IsArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\r\n\t "), []byte("-----BEGIN PGP "))
}

// normalizeNewlines converts bare LF to CRLF, the line ending RFC 4880
// section 6.2 specifies for armored text, before scanning for markers.
func normalizeNewlines(data []byte) []byte {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	return []byte(s)
}

// ExtractBlocks scans data for every BEGIN/END PGP marker pair and
// Base64-decodes each body into a binary packet stream, verifying the
// trailing CRC-24 line when present. Input with no armor markers passes
// through unchanged as the sole element.
func ExtractBlocks(data []byte) ([][]byte, error) {
	if !IsArmored(data) {
		return [][]byte{data}, nil
	}
	normalized := normalizeNewlines(data)
	text := string(normalized)

	begins := beginMarker.FindAllStringSubmatchIndex(text, -1)
	if len(begins) == 0 {
		return nil, pgperrors.InvalidMessage("no armor begin marker found")
	}

	var blocks [][]byte
	for _, b := range begins {
		bodyStart := b[1]
		kind := text[b[2]:b[3]]
		rest := text[bodyStart:]
		endIdx := endMarker.FindStringSubmatchIndex(rest)
		if endIdx == nil {
			return nil, pgperrors.InvalidMessage("no armor end marker for " + kind)
		}
		body := rest[:endIdx[0]]

		block, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// decodeBody splits an armor body into its headers, Base64 payload and
// optional CRC-24 checksum line, verifying the checksum when present.
func decodeBody(body string) ([]byte, error) {
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")

	idx := 0
	for idx < len(lines) && strings.TrimSpace(lines[idx]) != "" {
		idx++ // skip armor headers (Version:, Comment:, ...)
	}
	idx++ // skip the blank line separating headers from payload

	var payloadLines []string
	var crcLine string
	for _, line := range lines[min(idx, len(lines)):] {
		if strings.HasPrefix(line, "=") && len(line) == 5 {
			crcLine = line
			continue
		}
		payloadLines = append(payloadLines, line)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.Join(payloadLines, ""))
	if err != nil {
		return nil, pgperrors.InvalidMessage("armor body is not valid base64: " + err.Error())
	}

	if crcLine != "" {
		crcBytes, err := base64.StdEncoding.DecodeString(crcLine[1:])
		if err != nil || len(crcBytes) != 3 {
			return nil, pgperrors.InvalidMessage("malformed armor CRC-24 line")
		}
		want := uint32(crcBytes[0])<<16 | uint32(crcBytes[1])<<8 | uint32(crcBytes[2])
		if crc24(decoded) != want {
			return nil, pgperrors.InvalidMessage("armor CRC-24 mismatch")
		}
	}
	return decoded, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Wrap encodes data as a complete ASCII-armored block of the given kind:
// BEGIN marker, 64-column Base64 body, CRC-24 checksum line, END marker.
func Wrap(kind Type, data []byte) string {
	var buf bytes.Buffer
	buf.WriteString("-----BEGIN PGP " + string(kind) + "-----\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString(data)
	for i := 0; i < len(encoded); i += 64 {
		end := i + 64
		if end > len(encoded) {
			end = len(encoded)
		}
		buf.WriteString(encoded[i:end])
		buf.WriteString("\r\n")
	}

	crc := crc24(data)
	crcBytes := []byte{byte(crc >> 16), byte(crc >> 8), byte(crc)}
	buf.WriteString("=" + base64.StdEncoding.EncodeToString(crcBytes) + "\r\n")
	buf.WriteString("-----END PGP " + string(kind) + "-----\r\n")
	return buf.String()
}
