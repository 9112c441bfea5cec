package history

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
)

// ErrEmbedding wraps any embedding-provider failure. The gate fails closed
// on it: no embedding, no results.
var ErrEmbedding = errors.New("embedding provider failed")

// Embedder turns text into a vector. Implementations wrap an external
// provider; Name identifies the provider in results so callers can tell a
// stubbed answer from a real one.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// StubDimensions is the vector size of the deterministic stub embedder.
const StubDimensions = 64

// StubEmbedder is a deterministic bag-of-words embedder for tests and
// offline runs. Texts sharing tokens get similar vectors; its Name reports
// "stub" so results are clearly distinguishable from a real provider's.
type StubEmbedder struct{}

func (StubEmbedder) Name() string { return "stub" }

func (StubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, StubDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%StubDimensions]++
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
