package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// ContentHash covers the raw cell values of a dataset.
	ContentHash Hash
	// ConfigHash covers a canonical serialization of an analysis configuration.
	ConfigHash Hash
	// Fingerprint identifies a (dataset content, configuration) pair and is
	// the key under which analysis results are cached.
	Fingerprint Hash
)

// Constructors
func NewContentHash(data []byte) ContentHash { return ContentHash(NewHash(data)) }
func NewConfigHash(data []byte) ConfigHash   { return ConfigHash(NewHash(data)) }

// String conversions
func (h ContentHash) String() string { return Hash(h).String() }
func (h ConfigHash) String() string  { return Hash(h).String() }
func (f Fingerprint) String() string { return Hash(f).String() }

// IsEmpty checks if the fingerprint is empty
func (f Fingerprint) IsEmpty() bool { return Hash(f).IsEmpty() }

// NewFingerprint combines a content hash and a config hash into a cache key
func NewFingerprint(content ContentHash, config ConfigHash) Fingerprint {
	return Fingerprint(NewHash([]byte(content.String() + ":" + config.String())))
}

// ComputeConfigHash hashes any configuration value through a canonical
// JSON form. Map keys are sorted by the encoder, so equal configs always
// produce equal hashes.
func ComputeConfigHash(cfg interface{}) (ConfigHash, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("config hash: %w", err)
	}
	return NewConfigHash(data), nil
}

// ComputeKeyedHash hashes a set of named byte segments in key order.
// Used for dataset content hashing where column order must not matter.
func ComputeKeyedHash(segments map[string][]byte) Hash {
	keys := make([]string, 0, len(segments))
	for k := range segments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("\x00")
		data.Write(segments[key])
		data.WriteString("\x00")
	}
	return NewHash([]byte(data.String()))
}
