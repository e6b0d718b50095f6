// Package migrations holds the storage DDL. Every statement is idempotent,
// so Apply is safe to run on each start
package migrations

import (
	"context"

	"buzzwatch/internal/platform/store"
)

// PG is the PostgreSQL schema: posts, the category history store, the
// metrics warehouse, alerts and run bookkeeping
const PG = `
CREATE TABLE IF NOT EXISTS posts (
    id             UUID PRIMARY KEY,
    channel        TEXT NOT NULL,
    query          TEXT NOT NULL,
    username       TEXT NOT NULL DEFAULT '',
    uploaded_time  TIMESTAMPTZ,
    collected_time TIMESTAMPTZ NOT NULL,
    window_time    TIMESTAMPTZ NOT NULL,
    text_body      TEXT NOT NULL,
    text_hash      BYTEA NOT NULL,
    UNIQUE (channel, query, window_time, text_hash)
);
CREATE INDEX IF NOT EXISTS idx_posts_window_keyset
    ON posts (window_time, collected_time, id);

CREATE TABLE IF NOT EXISTS category_counts (
    window_time TIMESTAMPTZ NOT NULL,
    channel     TEXT NOT NULL,
    query       TEXT NOT NULL,
    category    TEXT NOT NULL,
    n           BIGINT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (window_time, channel, query, category)
);
CREATE INDEX IF NOT EXISTS idx_category_counts_series
    ON category_counts (channel, query, category, window_time);

CREATE TABLE IF NOT EXISTS metrics (
    channel           TEXT NOT NULL,
    query             TEXT NOT NULL,
    category          TEXT NOT NULL,
    cur_time          TIMESTAMPTZ NOT NULL,
    prev_time         TIMESTAMPTZ,
    cur_count         BIGINT NOT NULL,
    prev_count        BIGINT,
    short_term_growth DOUBLE PRECISION NOT NULL,
    long_term_ratio   DOUBLE PRECISION NOT NULL,
    volatility        DOUBLE PRECISION NOT NULL,
    streak_growth     SMALLINT NOT NULL,
    streak_duration   SMALLINT NOT NULL,
    ratio_to_total    DOUBLE PRECISION NOT NULL,
    acceleration      DOUBLE PRECISION NOT NULL,
    score             DOUBLE PRECISION NOT NULL,
    degraded          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (channel, query, category, cur_time)
);
CREATE INDEX IF NOT EXISTS idx_metrics_time_score
    ON metrics (cur_time DESC, score DESC);

CREATE TABLE IF NOT EXISTS alerts (
    id                UUID PRIMARY KEY,
    channel           TEXT NOT NULL,
    query             TEXT NOT NULL,
    category          TEXT NOT NULL,
    cur_time          TIMESTAMPTZ NOT NULL,
    prev_time         TIMESTAMPTZ,
    cur_count         BIGINT NOT NULL,
    prev_count        BIGINT,
    keyword           TEXT NOT NULL,
    keyword_count     BIGINT NOT NULL,
    short_term_growth DOUBLE PRECISION NOT NULL,
    long_term_ratio   DOUBLE PRECISION NOT NULL,
    ratio_to_total    DOUBLE PRECISION NOT NULL,
    score             DOUBLE PRECISION NOT NULL,
    dispatched_at     TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (channel, query, category, cur_time, keyword)
);
CREATE INDEX IF NOT EXISTS idx_alerts_pending
    ON alerts (created_at, id) WHERE dispatched_at IS NULL;

CREATE TABLE IF NOT EXISTS runs (
    id            UUID PRIMARY KEY,
    window_time   TIMESTAMPTZ NOT NULL UNIQUE,
    status        TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ,
    posts_read    BIGINT NOT NULL DEFAULT 0,
    posts_skipped BIGINT NOT NULL DEFAULT 0,
    categories    BIGINT NOT NULL DEFAULT 0,
    alerts        BIGINT NOT NULL DEFAULT 0,
    elapsed_ms    BIGINT NOT NULL DEFAULT 0,
    error         TEXT
);
`

// ClickHouse wants one statement per call, so the DDL ships split
const (
	CHDatabase = `CREATE DATABASE IF NOT EXISTS buzzwatch`

	CHKeywordCounts = `
CREATE TABLE IF NOT EXISTS buzzwatch.keyword_counts (
    window_time DateTime,
    channel     LowCardinality(String),
    query       String,
    category    LowCardinality(String),
    keyword     String,
    n           UInt64
) ENGINE = ReplacingMergeTree
ORDER BY (channel, query, category, window_time, keyword)
`
)

// ApplyPG creates the PostgreSQL tables
func ApplyPG(ctx context.Context, q store.RowQuerier) error {
	_, err := q.Exec(ctx, PG)
	return err
}

// ApplyCH creates the ClickHouse database and the keyword table
func ApplyCH(ctx context.Context, ch store.Clickhouse) error {
	for _, stmt := range []string{CHDatabase, CHKeywordCounts} {
		if err := ch.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Apply covers both backends, skipping any that are nil
func Apply(ctx context.Context, q store.RowQuerier, ch store.Clickhouse) error {
	if q != nil {
		if err := ApplyPG(ctx, q); err != nil {
			return err
		}
	}
	if ch != nil {
		return ApplyCH(ctx, ch)
	}
	return nil
}
