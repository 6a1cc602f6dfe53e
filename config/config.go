// Package config reads the bot's settings from the environment. A .env file
// in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCronExpr = "0 16 * * 1"
	DefaultCronTZ   = "Europe/Lisbon"
)

type Config struct {
	DiscordToken string
	DatabaseURL  string
	StatsURL     string

	JobsEnabled bool
	CronExpr    string
	CronTZ      string

	LogLevel string

	OwnerIDs          []string
	AuthorizedRoleIDs []string
	StatsFetchTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg := &Config{
		DiscordToken:      os.Getenv("DISCORD_BOT_TOKEN"),
		DatabaseURL:       envOr("DATABASE_URL", os.Getenv("MYSQL_URL")),
		StatsURL:          os.Getenv("STATS_URL"),
		JobsEnabled:       os.Getenv("JOBS_ENABLED") == "1",
		CronExpr:          envOr("CRON_EXPR", DefaultCronExpr),
		CronTZ:            envOr("CRON_TZ", DefaultCronTZ),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		OwnerIDs:          splitList(os.Getenv("OWNER_IDS")),
		AuthorizedRoleIDs: splitList(os.Getenv("AUTHORIZATION_ROLE_IDS")),
		StatsFetchTimeout: 30 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment variables")
	}
	if _, err := time.LoadLocation(cfg.CronTZ); err != nil {
		return nil, fmt.Errorf("invalid CRON_TZ %q: %w", cfg.CronTZ, err)
	}

	return cfg, nil
}

// ConfigureLogging applies LOG_LEVEL to the shared logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
