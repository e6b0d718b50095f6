// Package repo provides the counts repository implementation
//   - Postgres holds category_counts, the table the metric engine re-reads as history
//   - ClickHouse holds keyword_counts, the high-cardinality drill-down table
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/platform/store"
	"buzzwatch/internal/services/counts/domain"
)

// NewHybrid returns a binder that pairs the bound Postgres Queryer with the
// shared ClickHouse seam
func NewHybrid(ch store.Clickhouse) repokit.Binder[Storage] {
	return &hybridBinder{ch: ch}
}

type hybridBinder struct{ ch store.Clickhouse }

// Bind implements repokit.Binder
func (b *hybridBinder) Bind(q repokit.Queryer) Storage {
	return &hybridStore{pg: q, ch: b.ch}
}

// Storage defines the counts repository
type Storage interface {
	AppendCategoryCounts(ctx context.Context, rows []domain.CategoryRow) error
	AppendKeywordCounts(ctx context.Context, rows []domain.KeywordRow) error
	History(ctx context.Context, key domain.SeriesKey, before time.Time, limit int) ([]domain.HistoryPoint, error)
	TopKeywords(ctx context.Context, q domain.KeywordQuery, hardLimit int) ([]domain.KeywordAgg, error)
}

type hybridStore struct {
	pg repokit.Queryer
	ch store.Clickhouse
}

// AppendCategoryCounts implements Storage
func (s *hybridStore) AppendCategoryCounts(ctx context.Context, rows []domain.CategoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO category_counts
		(window_time, channel, query, category, n) VALUES `)

	args := make([]any, 0, len(rows)*5)
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*5 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4)
		args = append(args, r.Window, r.Channel, r.Query, r.Category, r.N)
	}
	// Re-running a window must not double counts
	sb.WriteString(` ON CONFLICT (window_time, channel, query, category) DO NOTHING`)
	_, err := s.pg.Exec(ctx, sb.String(), args...)
	return err
}

// AppendKeywordCounts implements Storage
// ReplacingMergeTree collapses re-inserted rows on the ordering key
func (s *hybridStore) AppendKeywordCounts(ctx context.Context, rows []domain.KeywordRow) error {
	if len(rows) == 0 {
		return nil
	}
	cols := []string{"window_time", "channel", "query", "category", "keyword", "n"}
	batch := make([][]any, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, []any{r.Window, r.Channel, r.Query, r.Category, r.Keyword, uint64(r.N)})
	}
	return s.ch.Insert(ctx, "buzzwatch.keyword_counts", cols, batch)
}

// History implements Storage
// Returns the most recent points strictly before the given window, oldest first
func (s *hybridStore) History(
	ctx context.Context,
	key domain.SeriesKey,
	before time.Time,
	limit int,
) ([]domain.HistoryPoint, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT c.window_time, c.n
		FROM category_counts c
		WHERE c.channel = $1 AND c.query = $2 AND c.category = $3
			AND c.window_time < $4
		ORDER BY c.window_time DESC
		LIMIT $5`,
		key.Channel, key.Query, key.Category, before.UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.HistoryPoint, 0, limit)
	for rows.Next() {
		var p domain.HistoryPoint
		if err := rows.Scan(&p.Window, &p.N); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Flip DESC fetch order into chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// TopKeywords implements Storage
// The inner max() guards against pre-merge duplicates in the replacing engine
func (s *hybridStore) TopKeywords(
	ctx context.Context,
	q domain.KeywordQuery,
	hardLimit int,
) ([]domain.KeywordAgg, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return "?" }

	sb.WriteString(`
		SELECT keyword, toInt64(sum(n)) AS total
		FROM (
			SELECT window_time, keyword, max(n) AS n
			FROM buzzwatch.keyword_counts
			WHERE window_time >= ` + arg(q.Since.UTC()) + ` AND window_time < ` + arg(q.Until.UTC()) + `
	`)
	if q.Channel != "" {
		sb.WriteString("    AND channel = " + arg(q.Channel) + "\n")
	}
	if q.Query != "" {
		sb.WriteString("    AND query = " + arg(q.Query) + "\n")
	}
	if q.Category != "" {
		sb.WriteString("    AND category = " + arg(q.Category) + "\n")
	}
	sb.WriteString(`
			GROUP BY window_time, keyword
		)
		GROUP BY keyword
		ORDER BY total DESC, keyword
		` + fmt.Sprintf("LIMIT %d", hardLimit))

	rows, err := s.ch.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.KeywordAgg, 0, hardLimit)
	for rows.Next() {
		var a domain.KeywordAgg
		if err := rows.Scan(&a.Keyword, &a.N); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
