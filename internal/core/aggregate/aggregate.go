// Package aggregate turns per-post category hits into per-window count
// tables at category and keyword granularity. A Batch owns its maps and
// is not safe for concurrent use; run one Batch per partition
package aggregate

import (
	"sort"
	"time"

	"buzzwatch/internal/core/mapper"
)

// Key identifies one category-level aggregate row
type Key struct {
	Window   time.Time
	Channel  string
	Query    string
	Category string
}

// KeywordKey identifies one keyword-level aggregate row
type KeywordKey struct {
	Window   time.Time
	Channel  string
	Query    string
	Category string
	Keyword  string
}

// GroupKey identifies the per-(window, channel, query) total
type GroupKey struct {
	Window  time.Time
	Channel string
	Query   string
}

// Row is a materialized category-level count, always >= 1
type Row struct {
	Key
	Count int64
}

// KeywordRow is a materialized keyword-level count, always >= 1
type KeywordRow struct {
	KeywordKey
	Count int64
}

// Batch accumulates hits for one window pass
type Batch struct {
	cats   map[Key]int64
	kws    map[KeywordKey]int64
	totals map[GroupKey]int64
}

// NewBatch returns an empty accumulator
func NewBatch() *Batch {
	return &Batch{
		cats:   make(map[Key]int64, 64),
		kws:    make(map[KeywordKey]int64, 256),
		totals: make(map[GroupKey]int64, 8),
	}
}

// Add folds one post's hits into the batch
func (b *Batch) Add(window time.Time, channel, query string, hits []mapper.Hit) {
	for _, h := range hits {
		b.cats[Key{Window: window, Channel: channel, Query: query, Category: h.Category}]++
		b.kws[KeywordKey{
			Window:   window,
			Channel:  channel,
			Query:    query,
			Category: h.Category,
			Keyword:  h.Keyword,
		}]++
		b.totals[GroupKey{Window: window, Channel: channel, Query: query}]++
	}
}

// Rows returns category-level rows sorted by window, channel, query, category
func (b *Batch) Rows() []Row {
	out := make([]Row, 0, len(b.cats))
	for k, c := range b.cats {
		out = append(out, Row{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.less(out[j].Key) })
	return out
}

// KeywordRows returns keyword-level rows sorted by window, channel, query, category, keyword
func (b *Batch) KeywordRows() []KeywordRow {
	out := make([]KeywordRow, 0, len(b.kws))
	for k, c := range b.kws {
		out = append(out, KeywordRow{KeywordKey: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeywordKey.less(out[j].KeywordKey) })
	return out
}

// Total returns the all-category hit count of one (window, channel, query)
// absence means 0
func (b *Batch) Total(window time.Time, channel, query string) int64 {
	return b.totals[GroupKey{Window: window, Channel: channel, Query: query}]
}

// Len returns the number of distinct category-level keys
func (b *Batch) Len() int { return len(b.cats) }

func (k Key) less(o Key) bool {
	if !k.Window.Equal(o.Window) {
		return k.Window.Before(o.Window)
	}
	if k.Channel != o.Channel {
		return k.Channel < o.Channel
	}
	if k.Query != o.Query {
		return k.Query < o.Query
	}
	return k.Category < o.Category
}

func (k KeywordKey) less(o KeywordKey) bool {
	if !k.Window.Equal(o.Window) {
		return k.Window.Before(o.Window)
	}
	if k.Channel != o.Channel {
		return k.Channel < o.Channel
	}
	if k.Query != o.Query {
		return k.Query < o.Query
	}
	if k.Category != o.Category {
		return k.Category < o.Category
	}
	return k.Keyword < o.Keyword
}
