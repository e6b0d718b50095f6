package feedcsv

import (
	"fmt"
	"time"
)

// stampLayout is the UTC window-start stamp embedded in batch filenames
const stampLayout = "20060102T1504"

// BatchRef identifies one collector batch file (UTC window start)
type BatchRef struct {
	Channel string
	Query   string
	Window  time.Time
}

// NewBatchRef builds a BatchRef, normalizing the window to UTC
func NewBatchRef(channel, query string, window time.Time) BatchRef {
	return BatchRef{Channel: channel, Query: query, Window: window.UTC()}
}

// Stamp returns the filename window stamp
func (b BatchRef) Stamp() string { return b.Window.UTC().Format(stampLayout) }

// Filename returns the batch filename, e.g. x-avante-20250825T1030.csv
func (b BatchRef) Filename() string {
	return fmt.Sprintf("%s-%s-%s.csv", b.Channel, b.Query, b.Stamp())
}

// String implements fmt.Stringer for logs
func (b BatchRef) String() string { return b.Filename() }

// Record is one collector row. UploadedTime is nil when the collector
// could not recover the original post time
type Record struct {
	Username      string
	UploadedTime  *time.Time
	CollectedTime time.Time
	Channel       string
	Query         string
	Text          string
}
