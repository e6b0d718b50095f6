// Package repo provides the metrics warehouse repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/metrics/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the metrics repository
type Storage interface {
	InsertMetrics(ctx context.Context, recs []domain.Record) error
	List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Record, error)
	Summary(ctx context.Context, channel, query string) ([]domain.Record, error)
}

const recordCols = `
	m.channel, m.query, m.category, m.cur_time, m.prev_time,
	m.cur_count, m.prev_count,
	m.short_term_growth, m.long_term_ratio, m.volatility,
	m.streak_growth, m.streak_duration, m.ratio_to_total,
	m.acceleration, m.score, m.degraded`

func scanRecord(rows repokit.Rows, r *domain.Record) error {
	return rows.Scan(
		&r.Channel, &r.Query, &r.Category, &r.CurTime, &r.PrevTime,
		&r.CurCount, &r.PrevCount,
		&r.ShortTermGrowth, &r.LongTermRatio, &r.Volatility,
		&r.StreakGrowth, &r.StreakDuration, &r.RatioToTotal,
		&r.Acceleration, &r.Score, &r.Degraded,
	)
}

// InsertMetrics implements Storage
func (s *pg) InsertMetrics(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO metrics
		(channel, query, category, cur_time, prev_time, cur_count, prev_count,
		short_term_growth, long_term_ratio, volatility, streak_growth, streak_duration,
		ratio_to_total, acceleration, score, degraded) VALUES `)

	args := make([]any, 0, len(recs)*16)
	for i, r := range recs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*16 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13, base+14, base+15)

		args = append(args,
			r.Channel, r.Query, r.Category, r.CurTime, r.PrevTime,
			r.CurCount, r.PrevCount,
			r.ShortTermGrowth, r.LongTermRatio, r.Volatility,
			r.StreakGrowth, r.StreakDuration, r.RatioToTotal,
			r.Acceleration, r.Score, r.Degraded,
		)
	}
	// Re-scored windows keep their first write
	sb.WriteString(` ON CONFLICT (channel, query, category, cur_time) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// List implements Storage
func (s *pg) List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Record, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT` + recordCols + `
		FROM metrics m
		WHERE 1=1
	`)
	if in.Channel != "" {
		sb.WriteString("  AND m.channel = " + arg(in.Channel) + "\n")
	}
	if in.Query != "" {
		sb.WriteString("  AND m.query = " + arg(in.Query) + "\n")
	}
	if in.Category != "" {
		sb.WriteString("  AND m.category = " + arg(in.Category) + "\n")
	}
	if !in.Since.IsZero() {
		sb.WriteString("  AND m.cur_time >= " + arg(in.Since) + "\n")
	}
	if !in.Until.IsZero() {
		sb.WriteString("  AND m.cur_time < " + arg(in.Until) + "\n")
	}
	if in.MinScore != nil {
		sb.WriteString("  AND m.score >= " + arg(*in.MinScore) + "\n")
	}
	sb.WriteString("ORDER BY m.cur_time DESC, m.score DESC\nLIMIT " + arg(hardLimit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0, hardLimit)
	for rows.Next() {
		var r domain.Record
		if err := scanRecord(rows, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary implements Storage, one latest row per series
func (s *pg) Summary(ctx context.Context, channel, query string) ([]domain.Record, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT DISTINCT ON (m.channel, m.query, m.category)` + recordCols + `
		FROM metrics m
		WHERE 1=1
	`)
	if channel != "" {
		sb.WriteString("  AND m.channel = " + arg(channel) + "\n")
	}
	if query != "" {
		sb.WriteString("  AND m.query = " + arg(query) + "\n")
	}
	sb.WriteString("ORDER BY m.channel, m.query, m.category, m.cur_time DESC")

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		if err := scanRecord(rows, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
