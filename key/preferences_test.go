package key

import (
	"testing"

	"github.com/pgpflow/openpgp/algorithm"
	"github.com/pgpflow/openpgp/packet"
)

func keyWithPreferences(cipher []algorithm.CipherFunction, compression []uint8) *Key {
	return &Key{
		Primary: &packet.PublicKey{},
		SelfSigs: []*packet.Signature{
			{PreferredSymmetric: cipher, PreferredCompression: compression},
		},
	}
}

func TestPreferredCipherIntersection(t *testing.T) {
	alice := keyWithPreferences([]algorithm.CipherFunction{algorithm.CipherAES256, algorithm.CipherAES128}, nil)
	bob := keyWithPreferences([]algorithm.CipherFunction{algorithm.CipherAES128, algorithm.CipherCAST5}, nil)

	got := PreferredCipher([]*Key{alice, bob})
	if got != algorithm.CipherAES128 {
		t.Fatalf("got %v, want CipherAES128", got)
	}
}

func TestPreferredCipherSilentRecipientForcesDefault(t *testing.T) {
	alice := keyWithPreferences([]algorithm.CipherFunction{algorithm.CipherAES256}, nil)
	silent := keyWithPreferences(nil, nil)

	got := PreferredCipher([]*Key{alice, silent})
	if got != algorithm.CipherAES128 {
		t.Fatalf("got %v, want default CipherAES128 (a silent recipient contributes nothing to the intersection)", got)
	}
}

func TestPreferredCipherDefaultsOnEmptyIntersection(t *testing.T) {
	alice := keyWithPreferences([]algorithm.CipherFunction{algorithm.CipherAES256}, nil)
	bob := keyWithPreferences([]algorithm.CipherFunction{algorithm.CipherCAST5}, nil)

	got := PreferredCipher([]*Key{alice, bob})
	if got != algorithm.CipherAES128 {
		t.Fatalf("got %v, want default CipherAES128", got)
	}
}

func TestPreferredCipherEmptyKeyListDefaults(t *testing.T) {
	if got := PreferredCipher(nil); got != algorithm.CipherAES128 {
		t.Fatalf("got %v, want default CipherAES128", got)
	}
}

func TestPreferredCompressionAlgorithmIntersection(t *testing.T) {
	alice := keyWithPreferences(nil, []uint8{2, 1, 0})
	bob := keyWithPreferences(nil, []uint8{1, 0})

	got := PreferredCompressionAlgorithm([]*Key{alice, bob})
	if got != 1 {
		t.Fatalf("got %d, want 1 (ZIP)", got)
	}
}

func TestPreferredCompressionAlgorithmDefaultsToZLIB(t *testing.T) {
	alice := keyWithPreferences(nil, []uint8{0})
	bob := keyWithPreferences(nil, []uint8{1})

	got := PreferredCompressionAlgorithm([]*Key{alice, bob})
	if got != 2 {
		t.Fatalf("got %d, want 2 (ZLIB default when no common preference)", got)
	}
}
