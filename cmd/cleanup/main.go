// Command cleanup reclaims storage out of band: it purges sent and
// aged-out reminders across all guilds and sweeps expired pending approval
// requests. It is intended to be invoked by an external cron job; the
// scheduler's own per-guild purge makes this a safety net, not a
// requirement.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mheller/gamekeeper/internal/adapter/postgres"
	approvalrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/approval"
	reminderrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/reminder"
	"github.com/mheller/gamekeeper/internal/app"
	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/service/access"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	reminders := reminderrepo.New(pool)

	before := time.Now().Add(-cfg.Scheduler.PurgeGrace)
	purged, err := reminders.PurgeExpiredAll(ctx, before)
	if err != nil {
		logger.Error("purge reminders failed",
			slog.String("error", err.Error()),
			slog.Time("before", before),
		)
		os.Exit(1)
	}

	accessSvc := access.NewService(logger, approvalrepo.New(pool), postgres.NewTxManager(pool), cfg.Bot)
	swept, err := accessSvc.ExpirePending(ctx)
	if err != nil {
		logger.Error("sweep pending approvals failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("cleanup completed",
		slog.Int64("reminders_purged", purged),
		slog.Int("approvals_swept", swept),
		slog.Time("before", before),
	)
}
