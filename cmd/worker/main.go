package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tradelog/tradelog/internal/config"
	"github.com/tradelog/tradelog/internal/logger"
	"github.com/tradelog/tradelog/internal/news"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	})
	log := logger.Get()

	tagger, err := news.NewTagger(cfg.CoinHints)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid coin hint table")
	}

	provider := news.NewNewsAPIProvider(cfg, tagger)
	worker := news.NewWorker(cfg.NewsPath(), log, provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if cfg.Watch {
		sched := news.NewScheduler(worker, cfg.WorkerInterval, log)
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("scheduler error")
		}
		return
	}

	runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer runCancel()

	if err := worker.Run(runCtx); err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
}
