// Package qdrant implements history.Index on a Qdrant collection. Snippet
// payloads follow the ingestion pipeline's layout: content and citation
// fields as strings, event_date and publication_date as unix milliseconds so
// the temporal cutoff becomes a server-side range condition.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"conquest/history"
)

// Config holds Qdrant connection settings.
type Config struct {
	// URL is the Qdrant server address (e.g. "https://example.qdrant.io:6334").
	URL string

	// Collection is the snippet collection to search.
	Collection string

	// APIKey is an optional API key.
	APIKey string
}

// Index implements history.Index for Qdrant.
type Index struct {
	client     *qdrant.Client
	collection string
}

// New connects to Qdrant.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	parsed := cfg.URL
	if !strings.HasPrefix(parsed, "http://") && !strings.HasPrefix(parsed, "https://") {
		parsed = "https://" + parsed
	}
	u, err := url.Parse(parsed)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Index{client: client, collection: cfg.Collection}, nil
}

// Search implements history.Index.
func (ix *Index) Search(ctx context.Context, vector []float32, filter history.Filter, limit int) ([]history.Match, error) {
	limitUint64 := uint64(limit)
	points, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ix.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitUint64,
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	matches := make([]history.Match, 0, len(points))
	for _, point := range points {
		m := history.Match{Score: point.Score}

		if point.Id != nil {
			if uuid := point.Id.GetUuid(); uuid != "" {
				m.Snippet.ID = uuid
			} else {
				m.Snippet.ID = fmt.Sprintf("%d", point.Id.GetNum())
			}
		}

		for k, v := range point.Payload {
			switch k {
			case "content":
				m.Snippet.Content = v.GetStringValue()
			case "title":
				m.Snippet.Title = v.GetStringValue()
			case "source":
				m.Snippet.Source = v.GetStringValue()
			case "source_url":
				m.Snippet.SourceURL = v.GetStringValue()
			case "region":
				m.Snippet.Region = v.GetStringValue()
			case "event_date":
				m.Snippet.EventDate = fromMillis(v.GetIntegerValue())
			case "publication_date":
				m.Snippet.PublicationDate = fromMillis(v.GetIntegerValue())
			case "tags":
				for _, item := range v.GetListValue().GetValues() {
					m.Snippet.Tags = append(m.Snippet.Tags, item.GetStringValue())
				}
			case "participants":
				for _, item := range v.GetListValue().GetValues() {
					m.Snippet.Participants = append(m.Snippet.Participants, item.GetStringValue())
				}
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Close implements history.Index.
func (ix *Index) Close() error {
	return ix.client.Close()
}

// buildFilter converts the gate's filter into qdrant conditions: a lte range
// on event_date and a keyword match on region.
func buildFilter(filter history.Filter) *qdrant.Filter {
	var conditions []*qdrant.Condition

	if !filter.NotAfter.IsZero() {
		lte := float64(toMillis(filter.NotAfter))
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "event_date",
					Range: &qdrant.Range{Lte: &lte},
				},
			},
		})
	}

	if filter.Region != "" {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "region",
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: filter.Region}},
				},
			},
		})
	}

	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Compile-time check that Index implements history.Index.
var _ history.Index = (*Index)(nil)
