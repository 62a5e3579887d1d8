package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID     ID
	ColumnKey ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (k ColumnKey) String() string { return ID(k).String() }

// ParseColumnKey parses a string into ColumnKey
func ParseColumnKey(s string) (ColumnKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column key cannot be empty")
	}
	return ColumnKey(s), nil
}

// PairKey identifies an unordered column pair. Keys are stored in
// lexicographic order so (a,b) and (b,a) resolve to the same pair.
type PairKey struct {
	Left  ColumnKey `json:"left"`
	Right ColumnKey `json:"right"`
}

// NewPairKey builds a canonical PairKey from two column keys
func NewPairKey(a, b ColumnKey) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Left: a, Right: b}
}

// Contains reports whether the pair includes the given column
func (p PairKey) Contains(k ColumnKey) bool {
	return p.Left == k || p.Right == k
}

// String returns "left|right"
func (p PairKey) String() string {
	return string(p.Left) + "|" + string(p.Right)
}

// MarshalText lets PairKey serve as a JSON map key
func (p PairKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the "left|right" form
func (p *PairKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid pair key %q", string(text))
	}
	*p = NewPairKey(ColumnKey(parts[0]), ColumnKey(parts[1]))
	return nil
}
