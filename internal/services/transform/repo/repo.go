// Package repo provides run bookkeeping storage for the window pass engine
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/transform/domain"
)

// Storage defines what the transform service needs from persistence
type Storage interface {
	// ClaimWindow takes the window lease. claimed reports success; when it
	// is false, prior carries the blocking run's status
	ClaimWindow(ctx context.Context, id string, window time.Time, staleAfter time.Duration) (claimed bool, prior domain.RunStatus, err error)
	// FinishRun records the terminal counters for a claimed run
	FinishRun(ctx context.Context, id string, fin domain.RunFinish) error
	// PendingWindows returns windows that have posts but no ok or running
	// pass, oldest first
	PendingWindows(ctx context.Context, limit int) ([]time.Time, error)
	// ListRuns returns runs newest window first
	ListRuns(ctx context.Context, in domain.ListInput) ([]domain.Run, error)
}

type binder struct{}

// NewPG returns a Postgres binder for the transform storage
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return pg{q} }

type pg struct{ q repokit.Queryer }

// ClaimWindow implements Storage.
// A window is claimable when unseen, when its last pass ended failed or
// partial, or when a running row looks abandoned (older than staleAfter).
// Running and ok rows otherwise block the claim
func (p pg) ClaimWindow(ctx context.Context, id string, window time.Time, staleAfter time.Duration) (bool, domain.RunStatus, error) {
	if staleAfter <= 0 {
		staleAfter = 2 * time.Hour
	}
	rows, err := p.q.Query(ctx, `
		INSERT INTO runs (id, window_time, status, started_at)
		VALUES ($1, $2, 'running', now())
		ON CONFLICT (window_time) DO UPDATE
		   SET id = EXCLUDED.id, status = 'running', started_at = now(),
		       finished_at = NULL, error = NULL
		 WHERE runs.status IN ('failed', 'partial')
		    OR (runs.status = 'running' AND runs.started_at < now() - ($3)::interval)
		RETURNING id
	`, id, window.UTC(), toInterval(staleAfter))
	if err != nil {
		return false, "", err
	}
	claimed := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, "", err
	}
	if claimed {
		return true, "", nil
	}

	var prior string
	if err := p.q.QueryRow(ctx,
		`SELECT status FROM runs WHERE window_time = $1`, window.UTC(),
	).Scan(&prior); err != nil {
		return false, "", err
	}
	return false, domain.RunStatus(prior), nil
}

// FinishRun implements Storage
func (p pg) FinishRun(ctx context.Context, id string, fin domain.RunFinish) error {
	tag, err := p.q.Exec(ctx, `
		UPDATE runs
		   SET status = $2, finished_at = now(),
		       posts_read = $3, posts_skipped = $4, categories = $5,
		       alerts = $6, elapsed_ms = $7, error = NULLIF($8, '')
		 WHERE id = $1
	`, id, string(fin.Status), fin.PostsRead, fin.PostsSkipped,
		fin.Categories, fin.Alerts, fin.ElapsedMS, fin.ErrText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transform: finish run %s: no such run", id)
	}
	return nil
}

// PendingWindows implements Storage
func (p pg) PendingWindows(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := p.q.Query(ctx, `
		SELECT DISTINCT p.window_time
		  FROM posts p
		  LEFT JOIN runs r ON r.window_time = p.window_time
		 WHERE r.id IS NULL OR r.status IN ('failed', 'partial')
		 ORDER BY p.window_time
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var w time.Time
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w.UTC())
	}
	return out, rows.Err()
}

// ListRuns implements Storage
func (p pg) ListRuns(ctx context.Context, in domain.ListInput) ([]domain.Run, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`
		SELECT id, window_time, status, started_at, finished_at,
		       posts_read, posts_skipped, categories, alerts, elapsed_ms,
		       COALESCE(error, '')
		  FROM runs
		 WHERE 1=1`)
	if in.Status != "" {
		sb.WriteString(" AND status = " + arg(string(in.Status)))
	}
	if !in.Since.IsZero() {
		sb.WriteString(" AND window_time >= " + arg(in.Since.UTC()))
	}
	if !in.Until.IsZero() {
		sb.WriteString(" AND window_time < " + arg(in.Until.UTC()))
	}
	sb.WriteString(" ORDER BY window_time DESC")
	sb.WriteString(" LIMIT " + arg(in.Limit))

	rows, err := p.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var r domain.Run
		var status string
		if err := rows.Scan(
			&r.ID, &r.Window, &status, &r.StartedAt, &r.FinishedAt,
			&r.PostsRead, &r.PostsSkipped, &r.Categories, &r.Alerts,
			&r.ElapsedMS, &r.Error,
		); err != nil {
			return nil, err
		}
		r.Status = domain.RunStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func toInterval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d/time.Second))
}
