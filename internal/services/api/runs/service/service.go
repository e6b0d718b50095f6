// Package service adapts the transform run reader to the API surface
package service

import (
	"context"
	"time"

	perr "buzzwatch/internal/platform/errors"
	apidom "buzzwatch/internal/services/api/runs/domain"
	tdom "buzzwatch/internal/services/transform/domain"
)

// Service defines the runs API service contract
type Service interface {
	apidom.ServicePort
}

// Svc implements the runs API service over the transform reader port
type Svc struct {
	runs tdom.ReaderPort
}

// New constructs a runs API service
func New(runs tdom.ReaderPort) *Svc {
	if runs == nil {
		panic("runs API service requires the transform reader port")
	}
	return &Svc{runs: runs}
}

// List returns run records matching the filters, newest window first
func (s *Svc) List(ctx context.Context, in apidom.ListInput) ([]apidom.RunRow, error) {
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

	runs, err := s.runs.ListRuns(ctx, tdom.ListInput{
		Status: tdom.RunStatus(in.Status),
		Since:  since,
		Until:  until,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]apidom.RunRow, 0, len(runs))
	for _, r := range runs {
		row := apidom.RunRow{
			ID:           r.ID,
			Window:       r.Window.UTC().Format(time.RFC3339),
			Status:       string(r.Status),
			StartedAt:    r.StartedAt.UTC().Format(time.RFC3339),
			PostsRead:    r.PostsRead,
			PostsSkipped: r.PostsSkipped,
			Categories:   r.Categories,
			Alerts:       r.Alerts,
			ElapsedMS:    r.ElapsedMS,
			Error:        r.Error,
		}
		if r.FinishedAt != nil {
			row.FinishedAt = r.FinishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, row)
	}
	return out, nil
}
