package feedcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTO = 0

// ErrNotFound means the source has no batch file for the requested window.
// Feeds with nothing collected are a normal condition, not a failure
var ErrNotFound = errors.New("feedcsv: batch not found")

// Fetcher fetches a reader for a given batch
type Fetcher interface {
	Fetch(ctx context.Context, ref BatchRef) (io.ReadCloser, error)
}

// DirFetcher serves batch files from a local drop directory
type DirFetcher struct {
	Dir string
}

// Fetch opens the batch file under the drop directory
func (f *DirFetcher) Fetch(_ context.Context, ref BatchRef) (io.ReadCloser, error) {
	rc, err := os.Open(filepath.Join(f.Dir, ref.Filename()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}
	return rc, nil
}

// HTTPFetcher fetches batch files from a collector HTTP base URL
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

// NewHTTPFetcherWithTimeout creates an HTTPFetcher with the given client timeout
func NewHTTPFetcherWithTimeout(base string, d time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Base: base, Client: &http.Client{Timeout: d}}
}

// Fetch returns a reader for the batch file at <base>/<filename>
func (f *HTTPFetcher) Fetch(ctx context.Context, ref BatchRef) (io.ReadCloser, error) {
	u, err := url.JoinPath(f.Base, ref.Filename())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTO}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		if closeErr != nil {
			return nil, fmt.Errorf(
				"feedcsv: unexpected status %d for %s; error closing body: %v",
				resp.StatusCode, u, closeErr,
			)
		}
		return nil, fmt.Errorf("feedcsv: unexpected status %d for %s", resp.StatusCode, u)
	}
	return resp.Body, nil
}

// timeLayouts are accepted for uploaded_time and collected_time columns.
// Collector exports use the space-separated form; RFC3339 covers replays
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Reader streams Records from one batch file. Malformed rows are skipped
// and counted, never fatal
type Reader struct {
	ref  BatchRef
	rc   io.ReadCloser
	csv  *csv.Reader
	cols map[string]int
	err  error

	rows    int
	skipped int
}

// NewReader wraps rc, validating the header line up front
func NewReader(ref BatchRef, rc io.ReadCloser) (*Reader, error) {
	cr := csv.NewReader(rc)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if cerr := rc.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("feedcsv: %s: read header: %w", ref, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"username", "collected_time", "text"} {
		if _, ok := cols[required]; !ok {
			if cerr := rc.Close(); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("feedcsv: %s: header missing %q column", ref, required)
		}
	}
	return &Reader{ref: ref, rc: rc, csv: cr, cols: cols}, nil
}

// Next reads the next well-formed record; returns io.EOF when done
func (rd *Reader) Next() (Record, error) {
	if rd.err != nil {
		return Record{}, rd.err
	}
	for {
		fields, err := rd.csv.Read()
		if err == io.EOF {
			rd.err = io.EOF
			return Record{}, io.EOF
		}
		if err != nil {
			// a mangled line; the csv reader recovers on the next one
			if _, ok := err.(*csv.ParseError); ok {
				rd.skipped++
				continue
			}
			rd.err = err
			return Record{}, err
		}

		rec, ok := rd.parse(fields)
		if !ok {
			rd.skipped++
			continue
		}
		rd.rows++
		return rec, nil
	}
}

func (rd *Reader) parse(fields []string) (Record, bool) {
	get := func(name string) string {
		i, ok := rd.cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	username := get("username")
	text := get("text")
	if username == "" || text == "" {
		return Record{}, false
	}

	collected, err := parseTime(get("collected_time"))
	if err != nil {
		return Record{}, false
	}

	var uploaded *time.Time
	if raw := get("uploaded_time"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return Record{}, false
		}
		uploaded = &t
	}

	channel := get("channel")
	if channel == "" {
		channel = rd.ref.Channel
	}
	query := get("query")
	if query == "" {
		query = rd.ref.Query
	}

	return Record{
		Username:      username,
		UploadedTime:  uploaded,
		CollectedTime: collected,
		Channel:       channel,
		Query:         query,
		Text:          text,
	}, true
}

// Close closes the underlying stream
func (rd *Reader) Close() error {
	if rd.rc == nil {
		return nil
	}
	return rd.rc.Close()
}

// Stats returns rows returned and rows skipped so far
func (rd *Reader) Stats() (rows, skipped int) { return rd.rows, rd.skipped }

func parseTime(s string) (time.Time, error) {
	var last error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		last = err
	}
	return time.Time{}, last
}
