// Package domain defines core types and interfaces for collected posts
package domain

import "time"

// AfterKey supports stable keyset pagination over (collected_time, id)
type AfterKey struct {
	CollectedAt time.Time
	ID          string // uuid
}

// ListInput defines the input parameters for listing posts in one window
type ListInput struct {
	Window time.Time // window start, UTC
	After  AfterKey  // zero value = from start
	Limit  int       // hard-capped in service

	// Optional filters (all ANDed)
	Channel string
	Query   string
}

// Post is one collected social media post
type Post struct {
	ID            string // uuid
	Channel       string
	Query         string
	Username      string
	UploadedTime  *time.Time // original post time when the channel exposes it
	CollectedTime time.Time
	Window        time.Time // bucket start the post aggregates into
	Text          string
	TextHash      []byte // sha256 of the trimmed text
}

// InsertStats summarizes an InsertBatch call
type InsertStats struct {
	Inserted int // rows newly written
	Deduped  int // rows dropped by the uniqueness constraint
	Skipped  int // rows rejected before write (missing fields)
}
