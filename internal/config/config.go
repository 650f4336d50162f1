package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Bot       BotConfig       `yaml:"bot"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Steam     SteamConfig     `yaml:"steam"`
	Radarr    ArrConfig       `yaml:"radarr" env-prefix:"RADARR_"`
	Sonarr    ArrConfig       `yaml:"sonarr" env-prefix:"SONARR_"`
	Plex      PlexConfig      `yaml:"plex"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// BotConfig holds command-surface and approval-gate settings.
type BotConfig struct {
	// OwnerIDsRaw is a comma-separated list of owner actor ids. Owners
	// bypass the approval gate and are never auto-revoked.
	OwnerIDsRaw string `yaml:"owner_ids" env:"BOT_OWNER_IDS" env-required:"true"`

	// ApprovalToken is the exact message an admin sends in the originating
	// channel to confirm a pending access request.
	ApprovalToken   string        `yaml:"approval_token"   env:"BOT_APPROVAL_TOKEN"   env-default:"Approved"`
	ApprovalTimeout time.Duration `yaml:"approval_timeout" env:"BOT_APPROVAL_TIMEOUT" env-default:"20m"`

	// InactivityDays is the protected-action idle span after which an
	// approval is lazily auto-revoked at the next gate evaluation.
	InactivityDays int `yaml:"inactivity_days" env:"BOT_INACTIVITY_DAYS" env-default:"14"`

	// RequestCooldown throttles repeat admin notifications for the same
	// (guild, actor) while a denial is fresh.
	RequestCooldown time.Duration `yaml:"request_cooldown" env:"BOT_REQUEST_COOLDOWN" env-default:"5m"`

	// OwnerIDs is parsed from OwnerIDsRaw during validation.
	OwnerIDs []string `yaml:"-" env:"-"`
}

// SchedulerConfig holds the daily-job trigger settings. The three trigger
// times are local to each guild's configured timezone and must be ordered
// refresh < remind < digest so the remind job sees freshly-refreshed data.
type SchedulerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" env:"SCHED_TICK_INTERVAL" env-default:"30s"`
	Window       time.Duration `yaml:"window"        env:"SCHED_WINDOW"        env-default:"120s"`
	RefreshAtRaw string        `yaml:"refresh_at"    env:"SCHED_REFRESH_AT"    env-default:"17:55"`
	RemindAtRaw  string        `yaml:"remind_at"     env:"SCHED_REMIND_AT"     env-default:"18:00"`
	DigestAtRaw  string        `yaml:"digest_at"     env:"SCHED_DIGEST_AT"     env-default:"18:03"`

	// PurgeGrace is how long past a day-precision anchor a pending
	// reminder survives before purge reclaims it.
	PurgeGrace time.Duration `yaml:"purge_grace" env:"SCHED_PURGE_GRACE" env-default:"36h"`

	// GuildConcurrency bounds the per-tick guild fan-out.
	GuildConcurrency int `yaml:"guild_concurrency" env:"SCHED_GUILD_CONCURRENCY" env-default:"4"`

	// Parsed from the *Raw fields during validation.
	RefreshAt ClockTime `yaml:"-" env:"-"`
	RemindAt  ClockTime `yaml:"-" env:"-"`
	DigestAt  ClockTime `yaml:"-" env:"-"`
}

// SteamConfig holds storefront API settings.
type SteamConfig struct {
	StoreBaseURL string        `yaml:"store_base_url" env:"STEAM_STORE_BASE_URL" env-default:"https://store.steampowered.com"`
	Country      string        `yaml:"country"        env:"STEAM_COUNTRY"        env-default:"US"`
	Language     string        `yaml:"language"       env:"STEAM_LANGUAGE"       env-default:"english"`
	Timeout      time.Duration `yaml:"timeout"        env:"STEAM_TIMEOUT"        env-default:"15s"`
}

// ArrConfig holds one media-manager (Radarr/Sonarr style) backend.
// An empty URL means the backend is not configured; its commands say so.
type ArrConfig struct {
	URL              string        `yaml:"url"                env:"URL"`
	APIKey           string        `yaml:"api_key"            env:"API_KEY"`
	RootFolder       string        `yaml:"root_folder"        env:"ROOT_FOLDER"`
	QualityProfileID int           `yaml:"quality_profile_id" env:"QUALITY_PROFILE_ID" env-default:"1"`
	Timeout          time.Duration `yaml:"timeout"            env:"TIMEOUT"            env-default:"30s"`
}

// PlexConfig holds the library-server presence-check settings.
type PlexConfig struct {
	URL     string        `yaml:"url"     env:"PLEX_URL"     env-default:""`
	Token   string        `yaml:"token"   env:"PLEX_TOKEN"   env-default:""`
	Timeout time.Duration `yaml:"timeout" env:"PLEX_TIMEOUT" env-default:"15s"`
}

// Configured reports whether the backend has enough settings to be called.
func (a ArrConfig) Configured() bool { return a.URL != "" && a.APIKey != "" }

// Configured reports whether the library server can be queried.
func (p PlexConfig) Configured() bool { return p.URL != "" && p.Token != "" }

// IsOwner reports whether the actor id is in the configured owner list.
func (b BotConfig) IsOwner(actorID string) bool {
	for _, id := range b.OwnerIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// ClockTime is a wall-clock trigger time within a local day.
type ClockTime struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the trigger as minutes past local midnight.
func (c ClockTime) MinuteOfDay() int { return c.Hour*60 + c.Minute }

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
