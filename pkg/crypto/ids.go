package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"

	"github.com/lborres/evently/core"
)

const (
	idAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	DefaultIDSize = 22 // 132 bits, more than a uuid
	minAlphabet   = 8
	maxAlphabet   = 255
)

var (
	ErrAlphabetSize     = errors.New("alphabet must contain between 8 and 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// IDGenerator produces URL-safe random account identifiers.
// It is safe for concurrent use.
type IDGenerator struct {
	alphabet string
	mask     byte
	size     int
}

// NewIDGenerator returns a generator of size-character IDs. An empty alphabet
// selects the URL-safe default and a non-positive size selects DefaultIDSize.
func NewIDGenerator(alphabet string, size int) (*IDGenerator, error) {
	if alphabet == "" {
		alphabet = idAlphabet
	}
	if size <= 0 {
		size = DefaultIDSize
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) < minAlphabet || len(alphabet) > maxAlphabet {
		return nil, ErrAlphabetSize
	}

	return &IDGenerator{alphabet: alphabet, mask: maskFor(len(alphabet)), size: size}, nil
}

// NewDefaultIDGenerator returns a generator of DefaultIDSize IDs over the
// URL-safe alphabet
func NewDefaultIDGenerator() *IDGenerator {
	return &IDGenerator{alphabet: idAlphabet, mask: maskFor(len(idAlphabet)), size: DefaultIDSize}
}

// maskFor returns the smallest all-ones bitmask covering every index below n
func maskFor(n int) byte {
	mask := 1
	for mask < n-1 {
		mask = mask<<1 | 1
	}
	return byte(mask)
}

// NewID returns a fresh identifier. Random bytes outside the alphabet are
// discarded so every character is equally likely.
func (g *IDGenerator) NewID() (string, error) {
	n := len(g.alphabet)
	step := int(math.Ceil(1.6 * float64(int(g.mask)*g.size) / float64(n)))

	id := make([]byte, 0, g.size)
	buf := make([]byte, step)
	for len(id) < g.size {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("%w: generate id: %w", core.ErrHashing, err)
		}
		for _, b := range buf {
			if idx := int(b & g.mask); idx < n {
				id = append(id, g.alphabet[idx])
				if len(id) == g.size {
					break
				}
			}
		}
	}
	return string(id), nil
}
