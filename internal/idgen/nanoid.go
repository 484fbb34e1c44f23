package idgen

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultListingPrefix   = "PROP-"
	DefaultListingSize     = 10
	DefaultListingAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// ListingIDGenerator generates public listing codes such as "PROP-7K2M9QX4TB".
type ListingIDGenerator struct {
	prefix   string
	size     int
	alphabet string
}

// NewListingIDGenerator creates a new ListingIDGenerator.
// size must be between 4 and 32. alphabet must have at least 2 characters.
func NewListingIDGenerator(prefix string, size int, alphabet string) (*ListingIDGenerator, error) {
	if size < 4 || size > 32 {
		return nil, fmt.Errorf("listing id size must be between 4 and 32, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("listing id alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &ListingIDGenerator{prefix: prefix, size: size, alphabet: alphabet}, nil
}

// NewDefaultListingIDGenerator uses the default prefix, size and alphabet.
func NewDefaultListingIDGenerator() *ListingIDGenerator {
	return &ListingIDGenerator{prefix: DefaultListingPrefix, size: DefaultListingSize, alphabet: DefaultListingAlphabet}
}

func (g *ListingIDGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate listing id: %w", err)
	}
	return g.prefix + id, nil
}

// Validate reports whether id was produced by this generator.
func (g *ListingIDGenerator) Validate(id string) bool {
	body, ok := strings.CutPrefix(id, g.prefix)
	if !ok || len(body) != g.size {
		return false
	}
	for _, c := range body {
		if !strings.ContainsRune(g.alphabet, c) {
			return false
		}
	}
	return true
}
