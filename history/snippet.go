// Package history retrieves historical-knowledge snippets for AI
// participants without ever surfacing events past a game's in-world date.
package history

import "time"

// Snippet is one chunk of the historical corpus. Snippets are written by an
// offline ingestion pipeline and read-only during gameplay.
type Snippet struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`

	// EventDate is when the described event happened; the temporal filter
	// runs against it. PublicationDate is when the knowledge became
	// available, usually the same day.
	EventDate       time.Time `json:"eventDate"`
	PublicationDate time.Time `json:"publicationDate"`

	Source       string   `json:"source"`
	SourceURL    string   `json:"sourceUrl,omitempty"`
	Region       string   `json:"region"`
	Tags         []string `json:"tags,omitempty"`
	Participants []string `json:"participants,omitempty"`

	Embedding []float32 `json:"embedding,omitempty"`
}
