package history

import (
	"context"
	"fmt"
	"time"

	"conquest/game"
)

// DefaultTopK is the result count when the caller does not ask for one.
const DefaultTopK = 5

// overfetchFactor leaves headroom for candidates the temporal and region
// filters will drop.
const overfetchFactor = 3

// QueryOptions tunes one retrieval query.
type QueryOptions struct {
	// TopK caps the result count; zero means DefaultTopK.
	TopK int
	// Region keeps only snippets from one region when set.
	Region string
}

// Result is one retrieved snippet with its citation fields.
type Result struct {
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	EventDate time.Time `json:"eventDate"`
	Source    string    `json:"source"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Region    string    `json:"region"`
	Score     float32   `json:"score"`
	// Provider names the embedder that produced the query vector, so a
	// stubbed result can never pass for a real one.
	Provider string `json:"provider"`
}

// Gate answers knowledge queries for a game under its temporal horizon. The
// cutoff is resolved from server-held game state only; a caller cannot widen
// its own horizon by supplying a date.
type Gate struct {
	embedder Embedder
	index    Index
}

// NewGate wires a Gate from an embedder and an index.
func NewGate(embedder Embedder, index Index) *Gate {
	return &Gate{embedder: embedder, index: index}
}

// Query returns up to TopK snippets most similar to the question, every one
// of them dated on or before the game's current date. An embedding failure
// fails closed: an error and no results, never unfiltered retrieval.
func (gt *Gate) Query(ctx context.Context, g *game.Game, question string, opts QueryOptions) ([]Result, error) {
	cutoff := g.CurrentDate

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := gt.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	filter := Filter{NotAfter: cutoff, Region: opts.Region}
	matches, err := gt.index.Search(ctx, vector, filter, topK*overfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("snippet search: %w", err)
	}

	results := make([]Result, 0, topK)
	for _, m := range matches {
		// Re-check the filter: the index is trusted for ranking, not for
		// the temporal horizon.
		if m.Snippet.EventDate.After(cutoff) {
			continue
		}
		if opts.Region != "" && m.Snippet.Region != opts.Region {
			continue
		}
		results = append(results, Result{
			Title:     m.Snippet.Title,
			Content:   m.Snippet.Content,
			EventDate: m.Snippet.EventDate,
			Source:    m.Snippet.Source,
			SourceURL: m.Snippet.SourceURL,
			Region:    m.Snippet.Region,
			Score:     m.Score,
			Provider:  gt.embedder.Name(),
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}
