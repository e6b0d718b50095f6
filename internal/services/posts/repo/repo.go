// Package repo provides repository implementations for posts
package repo

import (
	"context"
	"fmt"
	"strings"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/posts/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the posts repository
type Storage interface {
	InsertBatch(ctx context.Context, xs []domain.Post) (int, error)
	ListWindow(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Post, domain.AfterKey, error)
}

// InsertBatch implements Storage, returning the number of rows actually written
func (s *pg) InsertBatch(ctx context.Context, xs []domain.Post) (int, error) {
	if len(xs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO posts
		(id, channel, query, username, uploaded_time, collected_time, window_time, text_body, text_hash) VALUES `)

	args := make([]any, 0, len(xs)*9)
	for i, p := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*9 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)

		args = append(args,
			p.ID, p.Channel, p.Query, p.Username,
			p.UploadedTime, p.CollectedTime, p.Window, p.Text, p.TextHash,
		)
	}
	// Re-collected posts collapse on the content hash inside a window
	sb.WriteString(` ON CONFLICT (channel, query, window_time, text_hash) DO NOTHING`)
	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ListWindow implements Storage
func (s *pg) ListWindow(
	ctx context.Context,
	in domain.ListInput,
	hardLimit int,
) ([]domain.Post, domain.AfterKey, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT
			p.id::text,
			p.channel,
			p.query,
			p.username,
			p.uploaded_time,
			p.collected_time,
			p.window_time,
			p.text_body,
			p.text_hash
		FROM posts p
		WHERE p.window_time = ` + arg(in.Window) + `
	`)

	// Keyset only when AfterKey is set (avoid ""::uuid on first page)
	if in.After.ID != "" {
		sb.WriteString("  AND (p.collected_time, p.id) > (" + arg(in.After.CollectedAt) + ", " + arg(in.After.ID) + "::uuid)\n")
	}

	if in.Channel != "" {
		sb.WriteString("  AND p.channel = " + arg(in.Channel) + "\n")
	}
	if in.Query != "" {
		sb.WriteString("  AND p.query = " + arg(in.Query) + "\n")
	}

	sb.WriteString("ORDER BY p.collected_time, p.id\nLIMIT " + arg(hardLimit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	defer rows.Close()

	out := make([]domain.Post, 0, hardLimit)
	var last domain.AfterKey
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.Channel, &p.Query, &p.Username,
			&p.UploadedTime, &p.CollectedTime, &p.Window, &p.Text, &p.TextHash,
		); err != nil {
			return nil, domain.AfterKey{}, err
		}
		out = append(out, p)
		last = domain.AfterKey{CollectedAt: p.CollectedTime, ID: p.ID}
	}
	return out, last, rows.Err()
}
