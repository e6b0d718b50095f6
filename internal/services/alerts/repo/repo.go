// Package repo provides the alerts repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/alerts/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the alerts repository
type Storage interface {
	InsertAlerts(ctx context.Context, xs []domain.Alert) error
	List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Alert, error)
	ListPending(ctx context.Context, limit int) ([]domain.Alert, error)
	MarkDispatched(ctx context.Context, ids []string) error
}

const alertCols = `
	a.id::text, a.channel, a.query, a.category, a.cur_time, a.prev_time,
	a.cur_count, a.prev_count, a.keyword, a.keyword_count,
	a.short_term_growth, a.long_term_ratio, a.ratio_to_total, a.score,
	a.dispatched_at, a.created_at`

func scanAlert(rows repokit.Rows, a *domain.Alert) error {
	return rows.Scan(
		&a.ID, &a.Channel, &a.Query, &a.Category, &a.CurTime, &a.PrevTime,
		&a.CurCount, &a.PrevCount, &a.Keyword, &a.KeywordCount,
		&a.ShortTermGrowth, &a.LongTermRatio, &a.RatioToTotal, &a.Score,
		&a.DispatchedAt, &a.CreatedAt,
	)
}

// InsertAlerts implements Storage
func (s *pg) InsertAlerts(ctx context.Context, xs []domain.Alert) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO alerts
		(id, channel, query, category, cur_time, prev_time, cur_count, prev_count,
		keyword, keyword_count, short_term_growth, long_term_ratio, ratio_to_total,
		score) VALUES `)

	args := make([]any, 0, len(xs)*14)
	for i, a := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*14 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12, base+13)

		args = append(args,
			a.ID, a.Channel, a.Query, a.Category, a.CurTime, a.PrevTime,
			a.CurCount, a.PrevCount, a.Keyword, a.KeywordCount,
			a.ShortTermGrowth, a.LongTermRatio, a.RatioToTotal, a.Score,
		)
	}
	// Re-flagged windows keep their first write per keyword
	sb.WriteString(` ON CONFLICT (channel, query, category, cur_time, keyword) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// List implements Storage
func (s *pg) List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Alert, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT` + alertCols + `
		FROM alerts a
		WHERE 1=1
	`)
	if in.Channel != "" {
		sb.WriteString("  AND a.channel = " + arg(in.Channel) + "\n")
	}
	if in.Query != "" {
		sb.WriteString("  AND a.query = " + arg(in.Query) + "\n")
	}
	if in.Category != "" {
		sb.WriteString("  AND a.category = " + arg(in.Category) + "\n")
	}
	if !in.Since.IsZero() {
		sb.WriteString("  AND a.cur_time >= " + arg(in.Since) + "\n")
	}
	if !in.Until.IsZero() {
		sb.WriteString("  AND a.cur_time < " + arg(in.Until) + "\n")
	}
	sb.WriteString("ORDER BY a.cur_time DESC, a.score DESC, a.keyword_count DESC, a.keyword\nLIMIT " + arg(hardLimit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Alert, 0, hardLimit)
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListPending implements Storage
// Locks the claimed rows for the enclosing tx so concurrent drains skip them
func (s *pg) ListPending(ctx context.Context, limit int) ([]domain.Alert, error) {
	rows, err := s.q.Query(ctx, `SELECT`+alertCols+`
		FROM alerts a
		WHERE a.dispatched_at IS NULL
		ORDER BY a.created_at, a.id
		LIMIT $1
		FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Alert, 0, limit)
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkDispatched implements Storage
func (s *pg) MarkDispatched(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.q.Exec(ctx,
		`UPDATE alerts SET dispatched_at = now() WHERE id = ANY($1::uuid[])`, ids)
	return err
}
