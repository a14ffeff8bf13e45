package key

import "github.com/pgpflow/openpgp/algorithm"

// PreferredCipher intersects each recipient's declared
// PreferredSymmetricAlgorithms and returns the highest-ranked algorithm
// common to all, defaulting to AES-128 if the intersection is empty or any
// recipient declared no preference.
func PreferredCipher(keys []*Key) algorithm.CipherFunction {
	ranked := []algorithm.CipherFunction{
		algorithm.CipherAES256,
		algorithm.CipherAES192,
		algorithm.CipherAES128,
		algorithm.CipherCAST5,
		algorithm.Cipher3DES,
	}
	for _, candidate := range ranked {
		if allPrefer(keys, candidate, func(k *Key) []algorithm.CipherFunction { return k.PreferredSymmetric() }) {
			return candidate
		}
	}
	return algorithm.CipherAES128
}

// PreferredCompressionAlgorithm intersects each recipient's declared
// PreferredCompressionAlgorithms and returns the highest-ranked common
// value, defaulting to ZLIB when no common preference can be determined.
func PreferredCompressionAlgorithm(keys []*Key) uint8 {
	const (
		compZLIB = 2
		compZIP  = 1
		compNone = 0
	)
	ranked := []uint8{compZLIB, compZIP, compNone}
	for _, candidate := range ranked {
		if allPrefer(keys, candidate, func(k *Key) []uint8 { return k.PreferredCompression() }) {
			return candidate
		}
	}
	return compZLIB
}

// allPrefer reports whether every key in keys declared a preference list
// that includes candidate. A key that declared no preference list at all
// contributes nothing to the intersection, so it fails every candidate and
// forces the caller's default.
func allPrefer[T comparable](keys []*Key, candidate T, declared func(*Key) []T) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		list := declared(k)
		if len(list) == 0 {
			return false
		}
		if !contains(list, candidate) {
			return false
		}
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
