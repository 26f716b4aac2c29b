package session

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

type expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper периодически удаляет истекшие сессии.
type Sweeper struct {
	repo     expirer
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(repo expirer, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		interval: interval,
		log:      log.With("component", "session_sweeper"),
	}
}

// Run блокируется до отмены ctx.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("delete expired sessions", "error", err)
		}
		return
	}
	if n > 0 {
		s.log.Debug("expired sessions removed", "count", n)
	}
}
