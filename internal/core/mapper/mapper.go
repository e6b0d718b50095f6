// Package mapper matches token sequences against the keyword dictionary,
// producing category hits for downstream aggregation
package mapper

import (
	"sort"

	"buzzwatch/internal/core/wordbag"
)

// Hit is one matched (category, keyword) pair for a post
type Hit struct {
	Category string
	Keyword  string
}

// Mapper runs exact-token matching over tokenized text
type Mapper struct {
	bag *wordbag.Bag
}

// New creates a Mapper over a compiled bag
func New(bag *wordbag.Bag) *Mapper { return &Mapper{bag: bag} }

// Map returns the distinct hits for one post's tokens.
// A token matching keywords in multiple categories yields a hit in each.
// Repeat mentions inside one post do not multiply hits. Zero hits is nil,
// not an error. Output order is category then keyword ascending
func (m *Mapper) Map(tokens []string) []Hit {
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[Hit]struct{}, 4)
	for _, tok := range tokens {
		cats := m.bag.CategoriesFor(tok)
		if cats == nil {
			continue
		}
		for _, cat := range cats {
			seen[Hit{Category: cat, Keyword: tok}] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]Hit, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}
