package news

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradelog/tradelog/internal/models"
	"github.com/tradelog/tradelog/internal/snapshot"
)

// Worker runs one ingestion cycle: fetch from every provider, dedupe, sort,
// and atomically replace the snapshot file.
type Worker struct {
	providers []Provider
	path      string
	log       *zerolog.Logger
}

func NewWorker(path string, log *zerolog.Logger, providers ...Provider) *Worker {
	return &Worker{
		providers: providers,
		path:      path,
		log:       log,
	}
}

// Run executes one cycle. A failing provider contributes nothing but does
// not abort the cycle; only a snapshot write failure is an error.
func (w *Worker) Run(ctx context.Context) error {
	var all []models.NewsItem

	for _, p := range w.providers {
		items, err := p.Fetch(ctx)
		if errors.Is(err, ErrDisabled) {
			w.log.Warn().Str("provider", p.Name()).Msg("credentials not set, skipping provider")
			continue
		}
		if err != nil {
			w.log.Warn().Err(err).Str("provider", p.Name()).Msg("provider fetch failed")
			continue
		}
		w.log.Info().Str("provider", p.Name()).Int("items", len(items)).Msg("fetched articles")
		all = append(all, items...)
	}

	all = Dedupe(all)
	SortByPublished(all)

	snap := models.NewSnapshot(all)
	if err := snapshot.WriteJSON(w.path, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	w.log.Info().Int("count", snap.Count).Str("path", w.path).Msg("wrote news snapshot")
	return nil
}
