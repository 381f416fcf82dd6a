// Package fingerprint computes content-stable identifiers for issues.
//
// A fingerprint is the hex digest of the canonical token stream of the scope
// an issue is anchored in, followed by a fixed list of discriminators.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm names a digest function.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
)

// discriminatorSeparator cannot occur in node kinds or config values.
const discriminatorSeparator = "\x00"

// Hasher maps canonical strings to hex digests.
type Hasher struct {
	Algorithm Algorithm
}

// NewHasher returns a hasher for the named algorithm. An empty name selects sha256.
func NewHasher(name string) (*Hasher, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	switch alg {
	case "":
		alg = SHA256
	case SHA256, BLAKE2b:
	default:
		return nil, fmt.Errorf("unknown fingerprint algorithm %q", name)
	}
	return &Hasher{Algorithm: alg}, nil
}

func (h *Hasher) newHash() hash.Hash {
	if h != nil && h.Algorithm == BLAKE2b {
		// A nil key never fails.
		d, _ := blake2b.New256(nil)
		return d
	}
	return sha256.New()
}

// Sum hashes canonical followed by every discriminator, each preceded by a
// NUL byte. Empty discriminators still take their position.
func (h *Hasher) Sum(canonical string, discriminators ...string) string {
	d := h.newHash()
	d.Write([]byte(canonical))
	for _, disc := range discriminators {
		d.Write([]byte(discriminatorSeparator))
		d.Write([]byte(disc))
	}
	return hex.EncodeToString(d.Sum(nil))
}

// ContentDigest returns the sha256 hex digest of source, used as cache key.
func ContentDigest(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
