package history

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// Filter restricts a vector search. NotAfter is the knowledge cutoff,
// boundary inclusive; a zero value means no temporal bound. Region, when
// set, keeps only snippets tagged with that region.
type Filter struct {
	NotAfter time.Time
	Region   string
}

// Match is one scored search hit.
type Match struct {
	Snippet Snippet
	Score   float32
}

// Index is a vector-similarity index over the snippet corpus.
type Index interface {
	// Search returns up to limit matches ordered by descending similarity.
	// Implementations apply the filter where they can; the gate re-checks
	// it regardless.
	Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]Match, error)

	// Close releases any resources held by the index.
	Close() error
}

// MemoryIndex is a brute-force cosine-similarity Index for tests and small
// corpora.
type MemoryIndex struct {
	mu       sync.RWMutex
	snippets []Snippet
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add inserts snippets into the index. Their Embedding must be set.
func (ix *MemoryIndex) Add(snippets ...Snippet) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.snippets = append(ix.snippets, snippets...)
}

func (ix *MemoryIndex) Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make([]Match, 0, limit)
	for _, s := range ix.snippets {
		if !filter.NotAfter.IsZero() && s.EventDate.After(filter.NotAfter) {
			continue
		}
		if filter.Region != "" && s.Region != filter.Region {
			continue
		}
		matches = append(matches, Match{Snippet: s, Score: cosine(vector, s.Embedding)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (ix *MemoryIndex) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
