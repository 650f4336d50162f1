package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mheller/gamekeeper/internal/adapter/postgres"
	approvalrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/approval"
	reminderrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/reminder"
	settingsrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/settings"
	wishlistrepo "github.com/mheller/gamekeeper/internal/adapter/postgres/wishlist"
	"github.com/mheller/gamekeeper/internal/adapter/provider/plex"
	"github.com/mheller/gamekeeper/internal/adapter/provider/radarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/sonarr"
	"github.com/mheller/gamekeeper/internal/adapter/provider/steam"
	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/scheduler"
	"github.com/mheller/gamekeeper/internal/service/access"
	"github.com/mheller/gamekeeper/internal/service/guildcfg"
	"github.com/mheller/gamekeeper/internal/service/media"
	"github.com/mheller/gamekeeper/internal/service/reminder"
	"github.com/mheller/gamekeeper/internal/service/wishlist"
	"github.com/mheller/gamekeeper/internal/transport/command"
)

// Notifier delivers bot output to a chat channel. The default is a
// logging sink; the chat-platform client replaces it with a real sender.
type Notifier interface {
	Send(ctx context.Context, channelID int64, content string) error
}

// logNotifier logs notifications instead of delivering them.
type logNotifier struct {
	log *slog.Logger
}

func (n *logNotifier) Send(ctx context.Context, channelID int64, content string) error {
	n.log.InfoContext(ctx, "notification",
		slog.Int64("channel_id", channelID),
		slog.String("content", content),
	)
	return nil
}

// App is the wired application. The chat-platform client feeds inbound
// messages to Dispatcher and runs Run alongside its event loop.
type App struct {
	Log        *slog.Logger
	Dispatcher *command.Dispatcher
	Scheduler  *scheduler.Scheduler

	pool *pgxpool.Pool
}

// New loads configuration, runs migrations, and wires the repositories,
// providers, and services. notifier may be nil; the logging sink is used.
func New(ctx context.Context, notifier Notifier) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	txManager := postgres.NewTxManager(pool)

	approvals := approvalrepo.New(pool)
	reminders := reminderrepo.New(pool)
	wishlists := wishlistrepo.New(pool)
	settings := settingsrepo.New(pool)

	catalog := steam.NewProvider(cfg.Steam, logger)

	accessSvc := access.NewService(logger, approvals, txManager, cfg.Bot)
	reminderSvc := reminder.NewService(logger, reminders, catalog)
	wishlistSvc := wishlist.NewService(logger, wishlists, catalog)
	guildSvc := guildcfg.NewService(logger, settings)
	mediaSvc := newMediaService(cfg, logger)

	if notifier == nil {
		notifier = &logNotifier{log: logger.With("component", "notifier")}
	}

	return &App{
		Log: logger,
		Dispatcher: command.NewDispatcher(logger, cfg.Bot,
			accessSvc, catalog, reminderSvc, wishlistSvc, mediaSvc, guildSvc, notifier),
		Scheduler: scheduler.New(logger, cfg.Scheduler,
			guildSvc, reminderSvc, wishlistSvc, accessSvc, notifier),
		pool: pool,
	}, nil
}

// Run drives the daily scheduler until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}

// Run is the standalone entry point used by cmd/bot.
func Run(ctx context.Context) error {
	a, err := New(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

// newMediaService builds the media service with only the configured
// backends; unconfigured ones stay nil interfaces.
func newMediaService(cfg *config.Config, logger *slog.Logger) *media.Service {
	var (
		movies  media.MovieManager
		shows   media.ShowManager
		library media.Library
	)
	if cfg.Radarr.Configured() {
		movies = radarr.NewProvider(cfg.Radarr, logger)
	}
	if cfg.Sonarr.Configured() {
		shows = sonarr.NewProvider(cfg.Sonarr, logger)
	}
	if cfg.Plex.Configured() {
		library = plex.NewProvider(cfg.Plex, logger)
	}
	return media.NewService(logger, movies, shows, library)
}
