package crypto

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDGenerator(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
		wantErr  error
		wantSize int
	}{
		{name: "defaults", alphabet: "", size: 0, wantSize: DefaultIDSize},
		{name: "custom", alphabet: "ABCDEFGH", size: 12, wantSize: 12},
		{name: "negative size uses default", alphabet: "", size: -3, wantSize: DefaultIDSize},
		{name: "alphabet too short", alphabet: "ABC", wantErr: ErrAlphabetSize},
		{name: "alphabet too long", alphabet: strings.Repeat("a", 256), wantErr: ErrAlphabetSize},
		{name: "non ascii", alphabet: "ABCDEFGHé", wantErr: ErrAlphabetNotASCII},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			g, err := NewIDGenerator(test.alphabet, test.size)

			// Assert
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantSize, g.size)
		})
	}
}

func TestNewDefaultIDGenerator(t *testing.T) {
	g := NewDefaultIDGenerator()

	assert.Equal(t, idAlphabet, g.alphabet)
	assert.Equal(t, DefaultIDSize, g.size)
	assert.Equal(t, byte(63), g.mask)
}

// Requirement: the mask is the smallest all-ones value that can index every
// alphabet character, so no more random bytes are discarded than necessary.
func TestMaskFor(t *testing.T) {
	tests := []struct {
		n    int
		want byte
	}{
		{n: 8, want: 7},
		{n: 9, want: 15},
		{n: 16, want: 15},
		{n: 17, want: 31},
		{n: 33, want: 63},
		{n: 64, want: 63},
		{n: 65, want: 127},
		{n: 128, want: 127},
		{n: 255, want: 255},
	}

	for _, test := range tests {
		got := maskFor(test.n)

		assert.Equal(t, test.want, got, "maskFor(%d)", test.n)
		assert.GreaterOrEqual(t, int(got), test.n-1, "maskFor(%d) must reach the last index", test.n)
	}
}

func TestIDGenerator_NewID_Alphabet(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
	}{
		{name: "default alphabet", alphabet: idAlphabet, size: 100},
		{name: "numeric", alphabet: "0123456789", size: 50},
		{name: "single repeated char", alphabet: strings.Repeat("a", 200), size: 30},
		{name: "length one", alphabet: "ABCDEFGH", size: 1},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			g, err := NewIDGenerator(test.alphabet, test.size)
			require.NoError(t, err)

			// Act
			id, err := g.NewID()

			// Assert
			require.NoError(t, err)
			assert.Len(t, id, test.size)
			for i, c := range id {
				assert.True(t, strings.ContainsRune(test.alphabet, c), "id[%d] = %q, not in alphabet", i, c)
			}
		})
	}
}

func TestIDGenerator_NewID_UsesWholeAlphabet(t *testing.T) {
	// Arrange
	g := NewDefaultIDGenerator()
	seen := make(map[rune]bool)

	// Act
	for i := 0; i < 200; i++ {
		id, err := g.NewID()
		require.NoError(t, err)
		for _, c := range id {
			seen[c] = true
		}
	}

	// Assert
	assert.Len(t, seen, len(idAlphabet))
}

func TestIDGenerator_NewID_UniqueConcurrent(t *testing.T) {
	// Arrange
	g := NewDefaultIDGenerator()
	const goroutines = 50
	const perGoroutine = 200

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)

	// Act
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id, err := g.NewID()
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Len(t, seen, goroutines*perGoroutine)
}
