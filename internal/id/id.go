// Package id generates the opaque keys of libraries and categories.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Key prefixes.
const (
	LibraryPrefix  = "lib"
	CategoryPrefix = "cat"
)

// Generator returns a new unique key carrying the given prefix.
type Generator func(prefix string) string

// Generate creates a prefixed NanoID key, e.g. "lib_V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "_" + n, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
func MustGenerate(prefix string) string {
	k, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate id: %v", err))
	}
	return k
}

// Sequence returns a deterministic Generator for tests: prefix_1, prefix_2, ...
// The counter is shared across prefixes and is not safe for concurrent use.
func Sequence() Generator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}
