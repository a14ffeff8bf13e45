// Package packet implements the RFC 4880 packet codec: bit-exact parsing
// and serialization of each packet kind, plus the tag dispatch table that
// the message pipeline (package message) drives. Grounded on
// github.com/ProtonMail/go-crypto/openpgp/packet, adapted from an
// io.Reader-streaming design to a byte-slice contract:
// parse(bytes, offset) -> (packet, bytesConsumed).
package packet

import pgperrors "github.com/pgpflow/openpgp/errors"

// Packet is the closed tagged union of every RFC 4880 packet kind this
// module understands. There is no open-ended subclassing: ParseOne dispatches
// on Tag through a fixed constructor table.
type Packet interface {
	// Tag returns this packet's kind.
	Tag() Tag
	// parseBody decodes body into the packet's fields.
	parseBody(body []byte) error
	// serializeBody encodes the packet's fields back to wire bytes.
	serializeBody() ([]byte, error)
}

var constructors = map[Tag]func() Packet{
	TagPublicKeyEncryptedSessionKey:             func() Packet { return new(EncryptedKey) },
	TagSignature:                                func() Packet { return new(Signature) },
	TagSymmetricKeyEncryptedSessionKey:          func() Packet { return new(SymmetricKeyEncrypted) },
	TagOnePassSignature:                         func() Packet { return new(OnePassSignature) },
	TagSecretKey:                                func() Packet { return &PrivateKey{Public: &PublicKey{}} },
	TagPublicKey:                                func() Packet { return new(PublicKey) },
	TagSecretSubkey:                             func() Packet { return &PrivateKey{Public: &PublicKey{IsSubkey: true}, IsSubkey: true} },
	TagCompressedData:                           func() Packet { return new(CompressedData) },
	TagSymmetricallyEncrypted:                   func() Packet { return new(SymmetricallyEncrypted) },
	TagMarker:                                   func() Packet { return &Opaque{tag: TagMarker} },
	TagLiteralData:                              func() Packet { return new(LiteralData) },
	TagTrust:                                    func() Packet { return &Opaque{tag: TagTrust} },
	TagUserId:                                   func() Packet { return new(UserID) },
	TagPublicSubkey:                             func() Packet { return &PublicKey{IsSubkey: true} },
	TagUserAttribute:                            func() Packet { return new(UserAttribute) },
	TagSymmetricallyEncryptedIntegrityProtected: func() Packet { return new(SymmetricallyEncryptedIntegrityProtected) },
	TagModificationDetectionCode:                func() Packet { return new(ModificationDetectionCode) },
}

// ParseOne decodes a single packet starting at data[offset]. On success it
// returns the packet and the total bytes consumed (header + body). On a
// structural failure (bad tag, truncated or overrunning length) it returns a
// nil packet, consumed>=1, and a non-nil error; the caller is expected to
// advance by consumed and retry.
func ParseOne(data []byte, offset int) (Packet, int, error) {
	tag, bodyStart, bodyEnd, consumed, err := parseHeader(data, offset)
	if err != nil {
		return nil, consumed, err
	}
	ctor, ok := constructors[tag]
	if !ok {
		return &Opaque{tag: tag, body: append([]byte{}, data[bodyStart:bodyEnd]...)}, consumed, nil
	}
	p := ctor()
	if err := p.parseBody(data[bodyStart:bodyEnd]); err != nil {
		return nil, consumed, err
	}
	return p, consumed, nil
}

// ParseAll decodes every packet in data, silently resynchronizing past any
// single-byte or packet-level parse failure — this tolerates Marker packets,
// unknown experimental tags, and trailing junk the way real-world PGP
// streams require.
func ParseAll(data []byte) []Packet {
	var packets []Packet
	offset := 0
	for offset < len(data) {
		p, consumed, err := ParseOne(data, offset)
		if err != nil {
			if consumed < 1 {
				consumed = 1
			}
			offset += consumed
			continue
		}
		packets = append(packets, p)
		offset += consumed
	}
	return packets
}

// Serialize emits a packet's header and body. Emission is deterministic:
// re-parsing the output with ParseOne yields a semantically equal packet.
func Serialize(p Packet) ([]byte, error) {
	body, err := p.serializeBody()
	if err != nil {
		return nil, err
	}
	header := serializeHeader(p.Tag(), len(body))
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out, nil
}

// SerializeAll concatenates the wire form of every packet in order.
func SerializeAll(packets []Packet) ([]byte, error) {
	var out []byte
	for _, p := range packets {
		b, err := Serialize(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Opaque is the fallback packet for any recognized-but-unimplemented tag
// (Trust, Marker) or any tag this module's constructor table does not know
// about at all. It round-trips its body unchanged without interpreting it.
type Opaque struct {
	tag  Tag
	body []byte
}

func (o *Opaque) Tag() Tag { return o.tag }

func (o *Opaque) parseBody(body []byte) error {
	o.body = append([]byte{}, body...)
	return nil
}

func (o *Opaque) serializeBody() ([]byte, error) { return o.body, nil }

// Body exposes the opaque packet's raw contents.
func (o *Opaque) Body() []byte { return o.body }

var errShortRead = pgperrors.StructuralError("short packet body")
