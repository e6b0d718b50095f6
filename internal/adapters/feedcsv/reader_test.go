package feedcsv

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testRef = NewBatchRef("x", "avante", time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC))

func TestBatchRef_Filename(t *testing.T) {
	if got := testRef.Filename(); got != "x-avante-20250825T1030.csv" {
		t.Fatalf("Filename = %q", got)
	}
	loc := time.FixedZone("KST", 9*3600)
	local := NewBatchRef("threads", "sonata", time.Date(2025, 8, 25, 19, 30, 0, 0, loc))
	if got := local.Filename(); got != "threads-sonata-20250825T1030.csv" {
		t.Fatalf("local window not normalized to UTC: %q", got)
	}
}

func body(lines ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(lines, "\n")))
}

func TestNewReader_HeaderValidation(t *testing.T) {
	if _, err := NewReader(testRef, body("username,collected_time,channel,query,text")); err != nil {
		t.Fatalf("minimal header rejected: %v", err)
	}
	_, err := NewReader(testRef, body("username,uploaded_time,channel,query,text"))
	if err == nil || !strings.Contains(err.Error(), "collected_time") {
		t.Fatalf("missing collected_time not reported: %v", err)
	}
	if _, err := NewReader(testRef, body("")); err == nil {
		t.Fatalf("empty file should fail header read")
	}
}

func TestReader_Rows(t *testing.T) {
	rd, err := NewReader(testRef, body(
		"username,uploaded_time,collected_time,channel,query,text",
		"kim,2025-08-25 10:12:00,2025-08-25 10:31:02,x,avante,brake noise again",
		"lee,,2025-08-25T10:32:00Z,,,fire risk recall",
	))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer rd.Close()

	r1, err := rd.Next()
	if err != nil {
		t.Fatalf("row 1: %v", err)
	}
	if r1.Username != "kim" || r1.Channel != "x" || r1.Query != "avante" {
		t.Fatalf("row 1 = %+v", r1)
	}
	if r1.UploadedTime == nil || !r1.UploadedTime.Equal(time.Date(2025, 8, 25, 10, 12, 0, 0, time.UTC)) {
		t.Fatalf("row 1 uploaded = %v", r1.UploadedTime)
	}

	r2, err := rd.Next()
	if err != nil {
		t.Fatalf("row 2: %v", err)
	}
	if r2.UploadedTime != nil {
		t.Fatalf("empty uploaded_time should stay nil, got %v", r2.UploadedTime)
	}
	if r2.Channel != "x" || r2.Query != "avante" {
		t.Fatalf("empty channel/query should inherit the feed's: %+v", r2)
	}

	if _, err := rd.Next(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
	rows, skipped := rd.Stats()
	if rows != 2 || skipped != 0 {
		t.Fatalf("stats = (%d, %d)", rows, skipped)
	}
}

func TestReader_SkipsMalformedRows(t *testing.T) {
	rd, err := NewReader(testRef, body(
		"username,uploaded_time,collected_time,channel,query,text",
		",2025-08-25 10:12:00,2025-08-25 10:31:02,x,avante,no username",
		"kim,2025-08-25 10:12:00,not-a-time,x,avante,bad collected",
		"lee,2025-08-25 10:12:00,2025-08-25 10:31:02,x,avante,",
		"park,2025-08-25 10:12:00,2025-08-25 10:33:00,x,avante,engine stall",
	))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer rd.Close()

	rec, err := rd.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Username != "park" {
		t.Fatalf("first good row = %+v", rec)
	}
	if _, err := rd.Next(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
	rows, skipped := rd.Stats()
	if rows != 1 || skipped != 3 {
		t.Fatalf("stats = (%d, %d), want (1, 3)", rows, skipped)
	}
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	content := "username,collected_time,channel,query,text\nkim,2025-08-25 10:31:00,x,avante,ok\n"
	if err := os.WriteFile(filepath.Join(dir, testRef.Filename()), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &DirFetcher{Dir: dir}
	rc, err := f.Fetch(context.Background(), testRef)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(b) != content {
		t.Fatalf("Fetch content mismatch: %v %q", err, b)
	}

	missing := NewBatchRef("x", "sonata", testRef.Window)
	if _, err := f.Fetch(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing batch = %v, want ErrNotFound", err)
	}
}

func TestCachedFetcher_ServesFromDiskAfterFirstFetch(t *testing.T) {
	content := "username,collected_time,channel,query,text\nkim,2025-08-25 10:31:00,x,avante,ok\n"
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if !strings.HasSuffix(r.URL.Path, testRef.Filename()) {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cf := NewCachedFetcher(dir, NewHTTPFetcherWithTimeout(srv.URL, 2*time.Second))

	for i := 0; i < 2; i++ {
		rc, err := cf.Fetch(context.Background(), testRef)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil || string(b) != content {
			t.Fatalf("fetch %d content mismatch: %v", i, err)
		}
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1 (second fetch should come from cache)", hits)
	}
	if _, err := os.Stat(filepath.Join(dir, testRef.Filename())); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}

func TestHTTPFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcherWithTimeout(srv.URL, 2*time.Second)
	_, err := f.Fetch(context.Background(), testRef)
	if err == nil || !strings.Contains(err.Error(), "unexpected status 500") {
		t.Fatalf("500 not surfaced: %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("500 must not read as not-found")
	}
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcherWithTimeout(srv.URL, 2*time.Second)
	if _, err := f.Fetch(context.Background(), testRef); !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 = %v, want ErrNotFound", err)
	}
}

func TestParseWindowFromName(t *testing.T) {
	w, ok := parseWindowFromName("x-avante-20250825T1030.csv")
	if !ok || !w.Equal(testRef.Window) {
		t.Fatalf("parse = %v %v", w, ok)
	}
	if _, ok := parseWindowFromName("garbage.csv"); ok {
		t.Fatalf("garbage name should not parse")
	}
}
