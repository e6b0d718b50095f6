// Package wordbag loads and compiles the category keyword dictionary.
// The source format is CSV with a category,keyword header, one pair per
// row. Values are lowercased and trimmed on load and duplicate pairs
// collapse. A compiled default ships embedded; a file path overrides it
package wordbag

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed wordbag.csv
var embedded []byte

// Bag is a compiled dictionary, immutable after load
type Bag struct {
	cats  []string            // sorted category names
	byCat map[string][]string // category -> sorted keywords
	byKw  map[string][]string // keyword -> sorted categories
	pairs int
}

// Load returns the compiled bag from the embedded default CSV
func Load() (*Bag, error) {
	return Parse(bytes.NewReader(embedded))
}

// LoadFile returns a compiled bag from a CSV file at path
func LoadFile(path string) (*Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordbag: open %q: %w", path, err)
	}
	defer f.Close()
	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("wordbag: %q: %w", path, err)
	}
	return b, nil
}

// Parse compiles a bag from CSV content
func Parse(r io.Reader) (*Bag, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("wordbag: read header: %w", err)
	}
	if len(header) != 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "category") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "keyword") {
		return nil, fmt.Errorf("wordbag: bad header %v (want category,keyword)", header)
	}

	byCat := make(map[string]map[string]struct{}, 16)
	byKw := make(map[string]map[string]struct{}, 256)

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("wordbag: line %d: %w", line, err)
		}
		cat := strings.ToLower(strings.TrimSpace(rec[0]))
		kw := strings.ToLower(strings.TrimSpace(rec[1]))
		if cat == "" || kw == "" {
			return nil, fmt.Errorf("wordbag: line %d: empty category or keyword", line)
		}
		if byCat[cat] == nil {
			byCat[cat] = make(map[string]struct{}, 16)
		}
		byCat[cat][kw] = struct{}{}
		if byKw[kw] == nil {
			byKw[kw] = make(map[string]struct{}, 2)
		}
		byKw[kw][cat] = struct{}{}
	}

	b := &Bag{
		byCat: make(map[string][]string, len(byCat)),
		byKw:  make(map[string][]string, len(byKw)),
	}
	for cat, kws := range byCat {
		b.cats = append(b.cats, cat)
		lst := make([]string, 0, len(kws))
		for kw := range kws {
			lst = append(lst, kw)
		}
		sort.Strings(lst)
		b.byCat[cat] = lst
		b.pairs += len(lst)
	}
	sort.Strings(b.cats)
	for kw, cats := range byKw {
		lst := make([]string, 0, len(cats))
		for cat := range cats {
			lst = append(lst, cat)
		}
		sort.Strings(lst)
		b.byKw[kw] = lst
	}

	if b.pairs == 0 {
		return nil, fmt.Errorf("wordbag: no keyword rows")
	}
	return b, nil
}

// Categories returns category names in sorted order
func (b *Bag) Categories() []string { return b.cats }

// Keywords returns the sorted keywords of a category, nil when unknown
func (b *Bag) Keywords(category string) []string { return b.byCat[category] }

// CategoriesFor returns the sorted categories a keyword belongs to, nil when absent
func (b *Bag) CategoriesFor(keyword string) []string { return b.byKw[keyword] }

// Contains reports whether the keyword exists in any category
func (b *Bag) Contains(keyword string) bool {
	_, ok := b.byKw[keyword]
	return ok
}

// Pairs returns the number of distinct (category, keyword) pairs
func (b *Bag) Pairs() int { return b.pairs }
