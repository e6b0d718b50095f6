package store

import (
	"context"
	"errors"
	"testing"

	"buzzwatch/internal/platform/store/ch"
)

// TestCHAdapter_NilInner_Guards ensures the adapter refuses to operate without a client
func TestCHAdapter_NilInner_Guards(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(nil)

	if err := a.Insert(context.Background(), "t", []string{"a"}, [][]any{{1}}); err == nil {
		t.Fatalf("Insert on nil inner expected error, got nil")
	}
	if rows, err := a.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("Query on nil inner expected error, got rows %#v", rows)
	}
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("Ping on nil inner expected error, got nil")
	}
	// Close stays quiet so teardown paths don't double-fail
	if err := a.Close(); err != nil {
		t.Fatalf("Close on nil inner returned error: %v", err)
	}
}

// TestCHAdapter_UnopenedInner_PropagatesErrors passes the client's own guard errors through
func TestCHAdapter_UnopenedInner_PropagatesErrors(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(&ch.CH{})

	if err := a.Insert(context.Background(), "t", []string{"a"}, [][]any{{1}}); err == nil {
		t.Fatalf("Insert on unopened inner expected error, got nil")
	}
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("Ping on unopened inner expected error, got nil")
	}
}

// fakeChRows satisfies ch.Rows for delegation checks
type fakeChRows struct {
	nexts  int
	closed bool
	err    error
}

func (f *fakeChRows) Next() bool             { f.nexts++; return false }
func (f *fakeChRows) Scan(dest ...any) error { return nil }
func (f *fakeChRows) Err() error             { return f.err }
func (f *fakeChRows) Close() error           { f.closed = true; return nil }
func (f *fakeChRows) Columns() []string      { return []string{"alpha", "beta"} }

// TestCHRowsAdapter_Delegations verifies the rows wrapper forwards every call
func TestCHRowsAdapter_Delegations(t *testing.T) {
	t.Parallel()

	f := &fakeChRows{}
	var r Rows = &chRowsAdapter{r: f}

	if r.Next() {
		t.Fatalf("Next should be false on fake")
	}
	if f.nexts != 1 {
		t.Fatalf("Next did not delegate, calls=%d", f.nexts)
	}

	var v int
	if err := r.Scan(&v); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if r.Err() != nil {
		t.Fatalf("Err should be nil")
	}

	cols := r.Columns()
	if len(cols) != 2 || cols[0] != "alpha" || cols[1] != "beta" {
		t.Fatalf("Columns mismatch: %#v", cols)
	}

	r.Close()
	if !f.closed {
		t.Fatalf("Close did not delegate to underlying rows")
	}
}

// TestCHRowsAdapter_ErrPassthrough surfaces iteration errors from the inner rows
func TestCHRowsAdapter_ErrPassthrough(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := &fakeChRows{err: boom}
	var r Rows = &chRowsAdapter{r: f}

	if !errors.Is(r.Err(), boom) {
		t.Fatalf("Err should pass through inner error, got %v", r.Err())
	}
}
