// Package key implements key selection: grouping a parsed packet stream
// into primary/subkey units, matching a Key-ID against a set of keys, and
// picking the right packet for encryption, decryption or signing. Adapted
// from the Entity/Subkey model in
// github.com/ProtonMail/go-crypto/openpgp/v2/keys.go, simplified to what
// the message pipeline (package message) consumes.
package key

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/armor"
	"github.com/pgpflow/openpgp/packet"
)

// Subkey is a Subkey packet (public, and secret if available) together with
// the binding Signature that certifies its capability flags.
type Subkey struct {
	Public  *packet.PublicKey
	Private *packet.PrivateKey // nil if this keyring entry carries no secret material
	Binding *packet.Signature
}

// Key is a primary key and everything bound to it: identities, their
// self-signatures, and subkeys. Public and secret material are resolved
// together into one type whenever both are present in the same parse.
type Key struct {
	Primary  *packet.PublicKey
	Private  *packet.PrivateKey // nil if this is a public-only key
	UserIDs  []*packet.UserID
	SelfSigs []*packet.Signature // binding signatures over the primary/identities, in stream order
	Subkeys  []*Subkey
}

// KeyID returns the primary key's 64-bit identifier.
func (k *Key) KeyID() uint64 { return k.Primary.KeyId }

// Fingerprint returns the primary key's 20-byte V4 fingerprint.
func (k *Key) Fingerprint() []byte { return k.Primary.Fingerprint }

// preferredSelfSig returns the first self-signature in SelfSigs that declares
// preference subpackets; if none does, the first self-signature, or nil when
// SelfSigs is empty.
func (k *Key) preferredSelfSig() *packet.Signature {
	for _, sig := range k.SelfSigs {
		if len(sig.PreferredSymmetric) > 0 || len(sig.PreferredCompression) > 0 {
			return sig
		}
	}
	if len(k.SelfSigs) > 0 {
		return k.SelfSigs[0]
	}
	return nil
}

// PreferredSymmetric returns this key's declared cipher preference list
// (self-signature subpacket 11), or nil if it declared none.
func (k *Key) PreferredSymmetric() []algorithm.CipherFunction {
	if sig := k.preferredSelfSig(); sig != nil {
		return sig.PreferredSymmetric
	}
	return nil
}

// PreferredCompression returns this key's declared compression preference
// list (self-signature subpacket 22), or nil if it declared none.
func (k *Key) PreferredCompression() []uint8 {
	if sig := k.preferredSelfSig(); sig != nil {
		return sig.PreferredCompression
	}
	return nil
}

// EncryptionSubkey returns the subkey that should receive new PKESKs:
// the first encryption-flagged subkey with a binding signature and an
// encryption-capable algorithm.
func (k *Key) EncryptionSubkey() *packet.PublicKey {
	for _, sub := range k.Subkeys {
		if sub.Binding == nil || sub.Public == nil {
			continue
		}
		if !sub.Public.CanEncrypt() {
			continue
		}
		if sub.Binding.KeyFlags.EncryptCommunications || sub.Binding.KeyFlags.EncryptStorage {
			return sub.Public
		}
	}
	return nil
}

// EncryptionKey resolves the public-key packet a new PKESK should be
// addressed to: an encryption-flagged subkey if one exists and is usable,
// else the primary if it is itself encryption-capable.
func (k *Key) EncryptionKey() *packet.PublicKey {
	if sub := k.EncryptionSubkey(); sub != nil {
		return sub
	}
	if k.Primary.CanEncrypt() {
		return k.Primary
	}
	return nil
}

// DecryptionKey returns the secret-key packet matching keyID that is usable
// for decrypting a PKESK addressed to it.
func (k *Key) DecryptionKey(keyID uint64) *packet.PrivateKey {
	if k.Private != nil && k.Primary.KeyId == keyID && k.Primary.CanEncrypt() {
		return k.Private
	}
	for _, sub := range k.Subkeys {
		if sub.Private == nil || sub.Public == nil {
			continue
		}
		if sub.Public.KeyId != keyID {
			continue
		}
		if !sub.Public.CanEncrypt() {
			continue
		}
		if sub.Binding == nil || sub.Binding.KeyFlags.EncryptCommunications || sub.Binding.KeyFlags.EncryptStorage {
			return sub.Private
		}
	}
	return nil
}

// SigningKey returns the secret-key packet that should produce new
// signatures: a sign-flagged subkey if one exists, else the primary if it
// is itself sign-capable.
func (k *Key) SigningKey() *packet.PrivateKey {
	for _, sub := range k.Subkeys {
		if sub.Private == nil || sub.Public == nil || sub.Binding == nil {
			continue
		}
		if sub.Public.CanSign() && sub.Binding.KeyFlags.Sign {
			return sub.Private
		}
	}
	if k.Private != nil && k.Primary.CanSign() {
		return k.Private
	}
	return nil
}

// HasKeyID reports whether keyID names this key's primary or any subkey.
func (k *Key) HasKeyID(keyID uint64) bool {
	if k.Primary.KeyId == keyID {
		return true
	}
	for _, sub := range k.Subkeys {
		if sub.Public != nil && sub.Public.KeyId == keyID {
			return true
		}
	}
	return false
}

// FindKey scans keys for the one whose primary or any subkey matches
// keyID.
func FindKey(keyID uint64, keys []*Key) *Key {
	for _, k := range keys {
		if k.HasKeyID(keyID) {
			return k
		}
	}
	return nil
}

// ReadKeys parses data (binary or armored) into a keyring: one Key per
// primary PublicKey/SecretKey packet encountered, with trailing
// UserID/UserAttribute, Signature and Subkey packets attached to it.
// Never fails on malformed input: unparseable trailing bytes are dropped by
// the packet codec's own resync, and a completely unusable stream yields an
// empty, non-nil slice.
func ReadKeys(data []byte) ([]*Key, error) {
	blocks, err := armor.ExtractBlocks(data)
	if err != nil || len(blocks) == 0 {
		blocks = [][]byte{data}
	}

	keys := []*Key{}
	for _, block := range blocks {
		keys = append(keys, parseKeyBlock(block)...)
	}
	return keys, nil
}

func parseKeyBlock(data []byte) []*Key {
	packets := packet.ParseAll(data)

	var keys []*Key
	var cur *Key
	var pendingSubkey *Subkey

	flushSubkey := func() {
		if cur != nil && pendingSubkey != nil {
			cur.Subkeys = append(cur.Subkeys, pendingSubkey)
		}
		pendingSubkey = nil
	}
	flushKey := func() {
		flushSubkey()
		if cur != nil {
			keys = append(keys, cur)
		}
		cur = nil
	}

	for _, p := range packets {
		switch v := p.(type) {
		case *packet.PublicKey:
			if v.IsSubkey {
				flushSubkey()
				pendingSubkey = &Subkey{Public: v}
			} else {
				flushKey()
				cur = &Key{Primary: v}
			}
		case *packet.PrivateKey:
			if v.IsSubkey {
				flushSubkey()
				pendingSubkey = &Subkey{Public: v.Public, Private: v}
			} else {
				flushKey()
				cur = &Key{Primary: v.Public, Private: v}
			}
		case *packet.UserID:
			if cur != nil {
				flushSubkey()
				cur.UserIDs = append(cur.UserIDs, v)
			}
		case *packet.Signature:
			switch {
			case pendingSubkey != nil:
				pendingSubkey.Binding = v
			case cur != nil:
				cur.SelfSigs = append(cur.SelfSigs, v)
			}
		}
	}
	flushKey()
	return keys
}

// ReadKeysFromFile reads and parses a keyring file, expanding a leading
// "~" to the user's home directory. Directories are refused; any other
// failure to read or parse yields an empty key list rather than an error.
func ReadKeysFromFile(path string) ([]*Key, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	keys, err := ReadKeys(data)
	if err != nil {
		return nil, nil
	}
	return keys, nil
}
