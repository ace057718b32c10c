package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"iap-backoffice/database"
	"iap-backoffice/services/notify"
	"iap-backoffice/utils"
)

type Config struct {
	Stage    string
	Debug    bool
	Database database.DatabaseConfig
	Server   ServerConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Headless HeadlessConfig
	SMTP     notify.SMTPConfig
	Worker   WorkerConfig
	Env      *Env
}

type ServerConfig struct {
	Port        string
	MetricsPath string
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret         string
	Issuer            string
	AdminUsername     string
	AdminEmail        string
	AdminPasswordHash string
	SessionKey        string
}

type HeadlessConfig struct {
	JWTSecret string
	// GQLURLs maps a planet id to the headless GraphQL endpoint of that planet.
	GQLURLs map[string]string
}

type WorkerConfig struct {
	QueueName   string
	Concurrency int
	TrackLimit  int
	TrackSpec   string
	MonitorSpec string
}

const (
	defaultPort        = "8080"
	defaultRedisURL    = "redis://localhost:6379/0"
	defaultQueueName   = "iap_jobs"
	defaultConcurrency = 2
	maxConcurrency     = 8
	defaultTrackLimit  = 5
)

var requiredKeys = []string{"STAGE", "DB_HOST", "DB_USER", "DB_NAME", "JWT_SECRET"}

// Load reads .env (if present) and the process environment into a validated Config.
func Load(logger *zap.SugaredLogger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	env := NewEnv(os.Environ(), os.Getenv("ENV_PUBLIC_PREFIX"))
	cfg, err := FromEnv(env)
	if err != nil {
		return nil, err
	}

	logger.Infof("Config loaded for stage %s (public prefix %s, %d planets)",
		cfg.Stage, env.PublicPrefix(), len(cfg.Headless.GQLURLs))
	return cfg, nil
}

// FromEnv builds a Config from an environment snapshot and validates it.
func FromEnv(env *Env) (*Config, error) {
	cfg := &Config{
		Stage: env.Get("STAGE"),
		Debug: parseBool(env.Get("DEBUG")),
		Database: database.DatabaseConfig{
			Host:     env.Get("DB_HOST"),
			User:     env.Get("DB_USER"),
			Password: env.Get("DB_PASSWORD"),
			DBName:   env.Get("DB_NAME"),
		},
		Server: ServerConfig{
			Port:        withDefault(env.Get("SERVER_PORT"), defaultPort),
			MetricsPath: withDefault(env.Get("METRICS_PATH"), "/metrics"),
		},
		Redis: RedisConfig{
			URL: withDefault(env.Get("REDIS_URL"), defaultRedisURL),
		},
		Auth: AuthConfig{
			JWTSecret:         env.Get("JWT_SECRET"),
			Issuer:            withDefault(env.Get("JWT_ISSUER"), "iap-backoffice"),
			AdminUsername:     env.Get("ADMIN_USERNAME"),
			AdminEmail:        env.Get("ADMIN_EMAIL"),
			AdminPasswordHash: strings.ToLower(env.Get("ADMIN_PASSWORD_SHA256")),
			SessionKey:        env.Get("SESSION_KEY"),
		},
		Headless: HeadlessConfig{
			JWTSecret: env.Get("HEADLESS_JWT_SECRET"),
		},
		SMTP: notify.SMTPConfig{
			Host:     env.Get("SMTP_HOST"),
			Port:     env.Get("SMTP_PORT"),
			Username: env.Get("SMTP_USER"),
			Password: env.Get("SMTP_PASSWORD"),
			From:     withDefault(env.Get("SMTP_FROM"), "no-reply@iap-backoffice.local"),
			To:       splitList(env.Get("REPORT_RECIPIENTS")),
		},
		Worker: WorkerConfig{
			QueueName:   withDefault(env.Get("QUEUE_NAME"), defaultQueueName),
			TrackSpec:   withDefault(env.Get("TRACK_SPEC"), "@every 1m"),
			MonitorSpec: withDefault(env.Get("MONITOR_SPEC"), "@every 10m"),
		},
		Env: env,
	}

	var errs []error

	urls, err := parsePlanetURLs(env.Get("HEADLESS_GQL_URLS"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Headless.GQLURLs = urls

	concurrency, err := parseIntDefault(env.Get("WORKER_CONCURRENCY"), defaultConcurrency)
	if err != nil {
		errs = append(errs, fmt.Errorf("WORKER_CONCURRENCY: %w", err))
	}
	cfg.Worker.Concurrency = clamp(concurrency, 1, maxConcurrency)

	trackLimit, err := parseIntDefault(env.Get("TRACK_LIMIT"), defaultTrackLimit)
	if err != nil {
		errs = append(errs, fmt.Errorf("TRACK_LIMIT: %w", err))
	}
	cfg.Worker.TrackLimit = trackLimit

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every required key that is missing.
func (c *Config) Validate() error {
	values := map[string]string{
		"STAGE":      c.Stage,
		"DB_HOST":    c.Database.Host,
		"DB_USER":    c.Database.User,
		"DB_NAME":    c.Database.DBName,
		"JWT_SECRET": c.Auth.JWTSecret,
	}
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.Worker.TrackLimit < 1 {
		return fmt.Errorf("TRACK_LIMIT must be positive, got %d", c.Worker.TrackLimit)
	}
	return nil
}

// StageURL prefixes url with the configured stage.
func (c *Config) StageURL(url string) string {
	return utils.StageURL(c.Stage, url)
}

func (c *Config) IsLocal() bool {
	return c.Stage == utils.LocalStage
}

// parsePlanetURLs reads "planet=url,planet=url".
func parsePlanetURLs(raw string) (map[string]string, error) {
	urls := make(map[string]string)
	for _, pair := range splitList(raw) {
		planet, url, ok := strings.Cut(pair, "=")
		planet, url = strings.TrimSpace(planet), strings.TrimSpace(url)
		if !ok || planet == "" || url == "" {
			return nil, fmt.Errorf("HEADLESS_GQL_URLS: malformed entry %q", pair)
		}
		urls[planet] = url
	}
	return urls, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseIntDefault(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, err
	}
	return n, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
