// Package domain defines core types and interfaces for feed ingest
package domain

import (
	"fmt"
	"strings"
)

// Feed is one collector (channel, query) pair
type Feed struct {
	Channel string
	Query   string
}

// ParseFeeds parses a csv of channel:query pairs
func ParseFeeds(items []string) ([]Feed, error) {
	out := make([]Feed, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		ch, q, ok := strings.Cut(it, ":")
		ch, q = strings.TrimSpace(ch), strings.TrimSpace(q)
		if !ok || ch == "" || q == "" {
			return nil, fmt.Errorf("ingest: bad feed %q, want channel:query", it)
		}
		out = append(out, Feed{Channel: ch, Query: q})
	}
	return out, nil
}

// Summary totals one ingest pass
type Summary struct {
	Batches  int // batch files read
	Missing  int // batch files the source did not have
	Rows     int // csv rows parsed
	Skipped  int // malformed rows skipped
	Inserted int
	Deduped  int
}

// Add accumulates another summary into s
func (s *Summary) Add(o Summary) {
	s.Batches += o.Batches
	s.Missing += o.Missing
	s.Rows += o.Rows
	s.Skipped += o.Skipped
	s.Inserted += o.Inserted
	s.Deduped += o.Deduped
}
