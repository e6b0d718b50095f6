// Package service adapts the alerts reader port to the API surface
package service

import (
	"context"
	"time"

	perr "buzzwatch/internal/platform/errors"
	apidom "buzzwatch/internal/services/api/alerts/domain"
	alertdom "buzzwatch/internal/services/alerts/domain"
)

// Service defines the alerts API service contract
type Service interface {
	apidom.ServicePort
}

// Svc implements the alerts API service over the worker reader port
type Svc struct {
	reader alertdom.ReaderPort
}

// New constructs an alerts API service
func New(reader alertdom.ReaderPort) *Svc {
	if reader == nil {
		panic("alerts API service requires a reader port")
	}
	return &Svc{reader: reader}
}

// List returns alerts matching the filters, newest first
func (s *Svc) List(ctx context.Context, in apidom.ListInput) ([]apidom.AlertRow, error) {
	var since, until time.Time
	var err error
	if in.Since != "" {
		if since, err = time.Parse(time.RFC3339, in.Since); err != nil {
			return nil, perr.InvalidArgf("bad since: %v", err)
		}
	}
	if in.Until != "" {
		if until, err = time.Parse(time.RFC3339, in.Until); err != nil {
			return nil, perr.InvalidArgf("bad until: %v", err)
		}
	}

	xs, err := s.reader.List(ctx, alertdom.ListInput{
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

	out := make([]apidom.AlertRow, 0, len(xs))
	for _, a := range xs {
		row := apidom.AlertRow{
			ID:              a.ID,
			Channel:         a.Channel,
			Query:           a.Query,
			Category:        a.Category,
			Window:          a.CurTime.UTC().Format(time.RFC3339),
			Count:           a.CurCount,
			PrevCount:       a.PrevCount,
			Keyword:         a.Keyword,
			KeywordCount:    a.KeywordCount,
			ShortTermGrowth: a.ShortTermGrowth,
			LongTermRatio:   a.LongTermRatio,
			RatioToTotal:    a.RatioToTotal,
			Score:           a.Score,
			CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.PrevTime != nil {
			row.PrevWindow = a.PrevTime.UTC().Format(time.RFC3339)
		}
		if a.DispatchedAt != nil {
			row.DispatchedAt = a.DispatchedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, row)
	}
	return out, nil
}
