package content

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// Refresher periodically reloads the scraper's output file and swaps the
// provider's block when the content changed. A failed read keeps the
// previous block.
type Refresher struct {
	provider *Provider
	path     string
	interval time.Duration
	log      *zap.Logger
}

func NewRefresher(p *Provider, path string, interval time.Duration, log *zap.Logger) *Refresher {
	return &Refresher{provider: p, path: path, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

func (r *Refresher) refresh() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.log.Warn("content refresh failed, keeping previous block",
			zap.String("path", r.path), zap.Error(err))
		return
	}
	if r.provider.Replace(string(data)) {
		r.log.Info("content block replaced",
			zap.String("path", r.path), zap.Int("size", len(data)))
		return
	}
	r.log.Debug("content unchanged", zap.String("path", r.path))
}
