// Package service adapts the worker read ports to the trends API surface
package service

import (
	"context"
	"time"

	perr "buzzwatch/internal/platform/errors"
	"buzzwatch/internal/services/api/trends/domain"
	countdom "buzzwatch/internal/services/counts/domain"
	metricdom "buzzwatch/internal/services/metrics/domain"
)

// Service defines the trends service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the trends service over the worker read ports
type Svc struct {
	recs metricdom.ReaderPort
	kws  countdom.KeywordReaderPort
}

// New constructs a trends service
func New(recs metricdom.ReaderPort, kws countdom.KeywordReaderPort) *Svc {
	if recs == nil {
		panic("trends.Service requires a metrics reader port")
	}
	if kws == nil {
		panic("trends.Service requires a keyword reader port")
	}
	return &Svc{recs: recs, kws: kws}
}

// Metrics lists scored records matching the filters, newest first
func (s *Svc) Metrics(ctx context.Context, in domain.MetricsInput) ([]domain.MetricRow, error) {
	since, until, err := parseRange(in.Range)
	if err != nil {
		return nil, err
	}
	rows, err := s.recs.List(ctx, metricdom.ListInput{
		Channel:  in.Channel,
		Query:    in.Query,
		Category: in.Category,
		Since:    since,
		Until:    until,
		MinScore: in.MinScore,
		Limit:    in.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.MetricRow, 0, len(rows))
	for i := range rows {
		out = append(out, toRow(rows[i]))
	}
	return out, nil
}

// Summary returns the latest record per (channel, query, category) series
func (s *Svc) Summary(ctx context.Context, in domain.SummaryInput) ([]domain.MetricRow, error) {
	rows, err := s.recs.Summary(ctx, in.Channel, in.Query)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MetricRow, 0, len(rows))
	for i := range rows {
		out = append(out, toRow(rows[i]))
	}
	return out, nil
}

// Keywords returns keyword totals for one category over the range
func (s *Svc) Keywords(ctx context.Context, in domain.KeywordsInput) ([]domain.KeywordRow, error) {
	since, until, err := parseRange(in.Range)
	if err != nil {
		return nil, err
	}
	aggs, err := s.kws.TopKeywords(ctx, countdom.KeywordQuery{
		Channel:  in.Channel,
		Query:    in.Query,
		Category: in.Category,
		Since:    since,
		Until:    until,
		Limit:    in.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeywordRow, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, domain.KeywordRow{Keyword: a.Keyword, Count: a.N})
	}
	return out, nil
}

func parseRange(r domain.RangeOpts) (since, until time.Time, err error) {
	if r.Since != "" {
		if since, err = time.Parse(time.RFC3339, r.Since); err != nil {
			return time.Time{}, time.Time{}, perr.InvalidArgf("bad since: %v", err)
		}
	}
	if r.Until != "" {
		if until, err = time.Parse(time.RFC3339, r.Until); err != nil {
			return time.Time{}, time.Time{}, perr.InvalidArgf("bad until: %v", err)
		}
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return time.Time{}, time.Time{}, perr.InvalidArgf("until before since")
	}
	return since, until, nil
}

func toRow(r metricdom.Record) domain.MetricRow {
	row := domain.MetricRow{
		Channel:         r.Channel,
		Query:           r.Query,
		Category:        r.Category,
		Window:          r.CurTime.UTC().Format(time.RFC3339),
		Count:           r.CurCount,
		PrevCount:       r.PrevCount,
		ShortTermGrowth: r.ShortTermGrowth,
		LongTermRatio:   r.LongTermRatio,
		Volatility:      r.Volatility,
		StreakGrowth:    r.StreakGrowth,
		StreakDuration:  r.StreakDuration,
		RatioToTotal:    r.RatioToTotal,
		Acceleration:    r.Acceleration,
		Score:           r.Score,
		Degraded:        r.Degraded,
	}
	if r.PrevTime != nil {
		row.PrevWindow = r.PrevTime.UTC().Format(time.RFC3339)
	}
	return row
}
