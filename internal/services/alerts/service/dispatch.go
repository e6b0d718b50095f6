package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"buzzwatch/internal/modkit/repokit"
	perr "buzzwatch/internal/platform/errors"
	"buzzwatch/internal/services/alerts/domain"
)

type payloadKeyword struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

type payload struct {
	Channel       string           `json:"channel"`
	Query         string           `json:"query"`
	Category      string           `json:"category"`
	WindowTime    time.Time        `json:"window_time"`
	Count         int64            `json:"count"`
	PrevCount     *int64           `json:"prev_count,omitempty"`
	Growth        float64          `json:"short_term_growth"`
	LongTermRatio float64          `json:"long_term_ratio"`
	RatioToTotal  float64          `json:"ratio_to_total"`
	Score         float64          `json:"score"`
	Keywords      []payloadKeyword `json:"keywords"`
}

// DispatchOnce implements domain.DispatchPort
// Publishing happens inside the claiming tx so a failed handoff leaves the
// batch pending; groups already published before the failure go out again
// on the next pass (the handoff is at-least-once)
func (s *Service) DispatchOnce(ctx context.Context) (int, error) {
	pub, err := s.publisher()
	if err != nil {
		return 0, err
	}

	var n int
	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		pending, err := st.ListPending(ctx, s.Cfg.Batch)
		if err != nil {
			return err
		}
		for _, g := range groupAlerts(pending) {
			body, err := json.Marshal(renderPayload(g))
			if err != nil {
				return err
			}
			if err := pub.Publish(ctx, body); err != nil {
				return perr.Wrap(err, perr.ErrorCodeUnavailable, "alert publish")
			}
			ids := make([]string, 0, len(g.Alerts))
			for _, a := range g.Alerts {
				ids = append(ids, a.ID)
			}
			if err := st.MarkDispatched(ctx, ids); err != nil {
				return err
			}
			n += len(ids)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// groupAlerts buckets rows per (channel, query, category, window) in a
// deterministic order
func groupAlerts(xs []domain.Alert) []domain.Group {
	type key struct {
		channel, query, category string
		cur                      int64
	}
	idx := make(map[key]int)
	var out []domain.Group
	for _, a := range xs {
		k := key{a.Channel, a.Query, a.Category, a.CurTime.UnixNano()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.Group{
				Channel:  a.Channel,
				Query:    a.Query,
				Category: a.Category,
				CurTime:  a.CurTime,
			})
		}
		out[i].Alerts = append(out[i].Alerts, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CurTime.Equal(out[j].CurTime) {
			return out[i].CurTime.Before(out[j].CurTime)
		}
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		if out[i].Query != out[j].Query {
			return out[i].Query < out[j].Query
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func renderPayload(g domain.Group) payload {
	p := payload{
		Channel:    g.Channel,
		Query:      g.Query,
		Category:   g.Category,
		WindowTime: g.CurTime.UTC(),
	}
	if len(g.Alerts) > 0 {
		a := g.Alerts[0]
		p.Count = a.CurCount
		p.PrevCount = a.PrevCount
		p.Growth = a.ShortTermGrowth
		p.LongTermRatio = a.LongTermRatio
		p.RatioToTotal = a.RatioToTotal
		p.Score = a.Score
	}
	kws := make([]payloadKeyword, 0, len(g.Alerts))
	for _, a := range g.Alerts {
		kws = append(kws, payloadKeyword{Keyword: a.Keyword, Count: a.KeywordCount})
	}
	sort.Slice(kws, func(i, j int) bool {
		if kws[i].Count != kws[j].Count {
			return kws[i].Count > kws[j].Count
		}
		return kws[i].Keyword < kws[j].Keyword
	})
	p.Keywords = kws
	return p
}
