package aggregate

import (
	"reflect"
	"testing"
	"time"

	"buzzwatch/internal/core/mapper"
)

var t0 = time.Date(2025, 8, 25, 11, 0, 0, 0, time.UTC)

func TestBatch_AddAndRows(t *testing.T) {
	b := NewBatch()

	// two posts on (x, avante), one on (threads, sonata)
	b.Add(t0, "x", "avante", []mapper.Hit{
		{Category: "safety", Keyword: "fire"},
		{Category: "quality", Keyword: "defect"},
	})
	b.Add(t0, "x", "avante", []mapper.Hit{
		{Category: "safety", Keyword: "fire"},
	})
	b.Add(t0, "threads", "sonata", []mapper.Hit{
		{Category: "safety", Keyword: "smoke"},
	})

	rows := b.Rows()
	want := []Row{
		{Key: Key{Window: t0, Channel: "threads", Query: "sonata", Category: "safety"}, Count: 1},
		{Key: Key{Window: t0, Channel: "x", Query: "avante", Category: "quality"}, Count: 1},
		{Key: Key{Window: t0, Channel: "x", Query: "avante", Category: "safety"}, Count: 2},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("Rows = %+v, want %+v", rows, want)
	}

	kws := b.KeywordRows()
	wantKw := []KeywordRow{
		{KeywordKey: KeywordKey{Window: t0, Channel: "threads", Query: "sonata", Category: "safety", Keyword: "smoke"}, Count: 1},
		{KeywordKey: KeywordKey{Window: t0, Channel: "x", Query: "avante", Category: "quality", Keyword: "defect"}, Count: 1},
		{KeywordKey: KeywordKey{Window: t0, Channel: "x", Query: "avante", Category: "safety", Keyword: "fire"}, Count: 2},
	}
	if !reflect.DeepEqual(kws, wantKw) {
		t.Fatalf("KeywordRows = %+v, want %+v", kws, wantKw)
	}
}

func TestBatch_Totals(t *testing.T) {
	b := NewBatch()
	b.Add(t0, "x", "avante", []mapper.Hit{
		{Category: "safety", Keyword: "fire"},
		{Category: "quality", Keyword: "defect"},
	})
	b.Add(t0, "x", "avante", []mapper.Hit{
		{Category: "safety", Keyword: "brake"},
	})

	if got := b.Total(t0, "x", "avante"); got != 3 {
		t.Fatalf("Total = %d, want 3", got)
	}
	if got := b.Total(t0, "x", "elsewhere"); got != 0 {
		t.Fatalf("Total for absent group = %d, want 0", got)
	}
}

func TestBatch_DeterministicAcrossOrder(t *testing.T) {
	posts := [][]mapper.Hit{
		{{Category: "safety", Keyword: "fire"}},
		{{Category: "quality", Keyword: "defect"}, {Category: "safety", Keyword: "smoke"}},
		{{Category: "safety", Keyword: "fire"}},
	}

	forward := NewBatch()
	for _, hs := range posts {
		forward.Add(t0, "x", "avante", hs)
	}
	backward := NewBatch()
	for i := len(posts) - 1; i >= 0; i-- {
		backward.Add(t0, "x", "avante", posts[i])
	}

	if !reflect.DeepEqual(forward.Rows(), backward.Rows()) {
		t.Fatalf("category rows depend on insertion order")
	}
	if !reflect.DeepEqual(forward.KeywordRows(), backward.KeywordRows()) {
		t.Fatalf("keyword rows depend on insertion order")
	}
}

func TestBatch_ZeroHitsMaterializeNothing(t *testing.T) {
	b := NewBatch()
	b.Add(t0, "x", "avante", nil)

	if b.Len() != 0 {
		t.Fatalf("Len = %d, want 0", b.Len())
	}
	if rows := b.Rows(); len(rows) != 0 {
		t.Fatalf("Rows = %+v, want empty", rows)
	}
	if got := b.Total(t0, "x", "avante"); got != 0 {
		t.Fatalf("Total = %d, want 0", got)
	}
}
