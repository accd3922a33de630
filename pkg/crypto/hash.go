package crypto

import (
	"encoding/base64"
	"hash"
)

// HashString writes s through hash and returns the base64 raw url
// encoded sum. With firstHalf only the left half of the sum is
// encoded, as required for the *_hash id_token claims.
func HashString(hash hash.Hash, s string, firstHalf bool) string {
	if hash == nil {
		return s
	}
	//nolint:errcheck
	hash.Write([]byte(s))
	size := hash.Size()
	if firstHalf {
		size = size / 2
	}
	sum := hash.Sum(nil)[:size]
	return base64.RawURLEncoding.EncodeToString(sum)
}
