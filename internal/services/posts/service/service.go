// Package service provides the posts service implementation
package service

import (
	"context"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/google/uuid"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/posts/domain"
	"buzzwatch/internal/services/posts/repo"
)

// Config for the posts service
type Config struct {
	// Window is the bucket width posts aggregate into; defaults to 30m if <=0
	Window time.Duration
	// HardLimit is the maximum allowed limit per ListWindow call; defaults to 5000 if <=0
	HardLimit int
}

// Service implements domain.ReaderPort and domain.WriterPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// New constructs a new posts service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 5000
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// InsertBatch implements domain.WriterPort
// Assigns ids, window buckets and content hashes before writing; rows missing a
// username, text or collected time are skipped and counted, never failed
func (s *Service) InsertBatch(ctx context.Context, posts []domain.Post) (domain.InsertStats, error) {
	var stats domain.InsertStats
	rows := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		p.Text = strings.TrimSpace(p.Text)
		if p.Username == "" || p.Text == "" || p.CollectedTime.IsZero() {
			stats.Skipped++
			continue
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CollectedTime = p.CollectedTime.UTC()
		p.Window = p.CollectedTime.Truncate(s.Cfg.Window)
		sum := sha256.Sum256([]byte(p.Text))
		p.TextHash = sum[:]
		rows = append(rows, p)
	}
	if len(rows) == 0 {
		return stats, nil
	}

	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		n, err := s.Binder.Bind(q).InsertBatch(ctx, rows)
		if err != nil {
			return err
		}
		stats.Inserted = n
		stats.Deduped = len(rows) - n
		return nil
	})
	if err != nil {
		return domain.InsertStats{}, err
	}
	return stats, nil
}

// ListWindow implements domain.ReaderPort
func (s *Service) ListWindow(ctx context.Context, in domain.ListInput) ([]domain.Post, domain.AfterKey, error) {
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	in.Window = in.Window.UTC().Truncate(s.Cfg.Window)

	var rows []domain.Post
	var next domain.AfterKey
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, next, err = s.Binder.Bind(q).ListWindow(ctx, in, limit)
		return err
	})
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	return rows, next, nil
}
