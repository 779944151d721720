package coordinator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// CodeGenerator draws candidate security codes. Tests replace it to force collisions.
type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator draws codes uniformly from an alphabet using crypto/rand.
type RandomCodeGenerator struct {
	alphabet string
	length   int
	reader   io.Reader
}

// NewRandomCodeGenerator validates the alphabet and length. The alphabet must
// hold between 2 and 256 distinct bytes.
func NewRandomCodeGenerator(alphabet string, length int) (*RandomCodeGenerator, error) {
	if length < 1 {
		return nil, errors.New("code length must be positive")
	}
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return nil, fmt.Errorf("code alphabet must have 2-256 symbols, got %d", len(alphabet))
	}
	seen := make(map[byte]struct{}, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		if _, dup := seen[alphabet[i]]; dup {
			return nil, fmt.Errorf("code alphabet repeats %q", alphabet[i])
		}
		seen[alphabet[i]] = struct{}{}
	}
	return &RandomCodeGenerator{alphabet: alphabet, length: length, reader: rand.Reader}, nil
}

// Generate returns a code of the configured length. Bytes at or above the
// largest multiple of the alphabet size are rejected so every symbol is equally likely.
func (g *RandomCodeGenerator) Generate() (string, error) {
	n := len(g.alphabet)
	limit := 256 - 256%n

	out := make([]byte, 0, g.length)
	buf := make([]byte, g.length*2)
	for len(out) < g.length {
		if _, err := io.ReadFull(g.reader, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, g.alphabet[int(b)%n])
			if len(out) == g.length {
				break
			}
		}
	}
	return string(out), nil
}
