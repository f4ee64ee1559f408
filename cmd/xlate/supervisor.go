package main

import (
	"context"
	"time"

	"xlate/internal/config"
	"xlate/internal/logging"

	"github.com/google/uuid"
)

// runSupervised restarts fn until it succeeds, the attempt budget runs out or
// the context is cancelled. Long oracle-driven runs fault on transient errors;
// every stage checkpoints through the cache, so a restart resumes from where
// the previous attempt stopped. MaxAttempts of 0 retries forever.
func runSupervised(ctx context.Context, cfg *config.Config, log *logging.Logger, name string, fn func(context.Context) error) error {
	cooldown := time.Duration(cfg.Supervisor.CooldownSeconds) * time.Second

	var err error
	for attempt := 1; cfg.Supervisor.MaxAttempts == 0 || attempt <= cfg.Supervisor.MaxAttempts; attempt++ {
		runID := uuid.NewString()
		log.Info("starting supervised run", map[string]interface{}{
			"task": name, "run": runID, "attempt": attempt,
		})

		if err = fn(ctx); err == nil {
			log.Info("supervised run finished", map[string]interface{}{
				"task": name, "run": runID, "attempt": attempt,
			})
			return nil
		}
		log.Error("supervised run faulted", map[string]interface{}{
			"task": name, "run": runID, "attempt": attempt, "error": err.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cooldown):
		}
	}
	return err
}
