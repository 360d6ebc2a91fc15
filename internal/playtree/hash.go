package playtree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm change.
const (
	DomainTree     = "playtree/tree/v1"
	DomainSnapshot = "playtree/snapshot/v1"
)

// HashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// keeps domain and data from running into each other.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns the content-addressed identity of a tree. Two trees
// that decode from equivalent documents hash identically regardless of map
// order or whether shares were written out.
func ContentHash(t *Playtree) (string, error) {
	canonical, err := MarshalCanonical(t.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainTree, canonical), nil
}

// MustContentHash is like ContentHash but panics on error.
// Use only in tests or when the tree is known to be valid.
func MustContentHash(t *Playtree) string {
	h, err := ContentHash(t)
	if err != nil {
		panic(err)
	}
	return h
}
