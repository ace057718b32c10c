package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnviron() []string {
	return []string{
		"STAGE=prod",
		"DB_HOST=db:3306",
		"DB_USER=iap",
		"DB_NAME=iap",
		"JWT_SECRET=secret",
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(NewEnv(baseEnviron(), ""))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Stage)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "iap_jobs", cfg.Worker.QueueName)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 5, cfg.Worker.TrackLimit)
	assert.Equal(t, "@every 1m", cfg.Worker.TrackSpec)
	assert.Empty(t, cfg.Headless.GQLURLs)
	assert.False(t, cfg.IsLocal())
}

func TestFromEnvMissingRequiredKeys(t *testing.T) {
	_, err := FromEnv(NewEnv([]string{"STAGE=local", "DB_HOST=db"}, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "STAGE")
}

func TestFromEnvParsesWorkerAndPlanets(t *testing.T) {
	environ := append(baseEnviron(),
		"WORKER_CONCURRENCY=32",
		"TRACK_LIMIT=10",
		"HEADLESS_GQL_URLS=0x000000000000=https://odin.example/graphql, 0x000000000001=https://heimdall.example/graphql",
		"REPORT_RECIPIENTS=ops@example.com, dev@example.com",
		"ADMIN_PASSWORD_SHA256=ABCDEF",
	)
	cfg, err := FromEnv(NewEnv(environ, ""))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 10, cfg.Worker.TrackLimit)
	assert.Equal(t, "https://heimdall.example/graphql", cfg.Headless.GQLURLs["0x000000000001"])
	assert.Len(t, cfg.Headless.GQLURLs, 2)
	assert.Equal(t, []string{"ops@example.com", "dev@example.com"}, cfg.SMTP.To)
	assert.Equal(t, "abcdef", cfg.Auth.AdminPasswordHash)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	environ := append(baseEnviron(), "WORKER_CONCURRENCY=many", "HEADLESS_GQL_URLS=odin")
	_, err := FromEnv(NewEnv(environ, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_CONCURRENCY")
	assert.Contains(t, err.Error(), "HEADLESS_GQL_URLS")

	_, err = FromEnv(NewEnv(append(baseEnviron(), "TRACK_LIMIT=0"), ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACK_LIMIT")
}

func TestConfigStageURL(t *testing.T) {
	cfg := &Config{Stage: "local"}
	assert.Equal(t, "/api", cfg.StageURL("/api"))
	assert.True(t, cfg.IsLocal())

	cfg.Stage = "prod"
	assert.Equal(t, "/prod/api", cfg.StageURL("/api"))
}

func TestEnvPartitionsByPublicPrefix(t *testing.T) {
	env := NewEnv([]string{
		"PUBLIC_API_BASE=/api",
		"DB_PASSWORD=hunter2",
		"EMPTY=",
		"malformed",
		"=nokey",
	}, "")

	assert.Equal(t, map[string]string{"PUBLIC_API_BASE": "/api"}, env.StaticPublic())
	assert.Equal(t, map[string]string{"DB_PASSWORD": "hunter2", "EMPTY": ""}, env.StaticPrivate())
	assert.Equal(t, "hunter2", env.Get("DB_PASSWORD"))
	assert.Equal(t, "/api", env.Get("PUBLIC_API_BASE"))
}

func TestEnvCustomPrefix(t *testing.T) {
	env := NewEnv([]string{"VITE_STAGE=prod", "PUBLIC_X=1"}, "VITE_")

	assert.Equal(t, "VITE_", env.PublicPrefix())
	assert.Contains(t, env.StaticPublic(), "VITE_STAGE")
	assert.Contains(t, env.StaticPrivate(), "PUBLIC_X")
}

func TestEnvDynamicReadsLiveValues(t *testing.T) {
	env := NewEnv(nil, "")
	live := map[string]string{"PUBLIC_FLAG": "on", "SECRET": "s3"}
	env.lookup = func(key string) (string, bool) {
		v, ok := live[key]
		return v, ok
	}

	v, ok := env.DynamicPublic("PUBLIC_FLAG")
	assert.True(t, ok)
	assert.Equal(t, "on", v)

	_, ok = env.DynamicPublic("SECRET")
	assert.False(t, ok, "private key must not leak through the public accessor")

	_, ok = env.DynamicPrivate("PUBLIC_FLAG")
	assert.False(t, ok, "public key must not be read through the private accessor")

	live["SECRET"] = "rotated"
	v, ok = env.DynamicPrivate("SECRET")
	assert.True(t, ok)
	assert.Equal(t, "rotated", v)
	assert.Empty(t, env.StaticPrivate())
}

func TestEnvStaticSnapshotIsCopied(t *testing.T) {
	env := NewEnv([]string{"A=1"}, "")
	snapshot := env.StaticPrivate()
	snapshot["A"] = "2"

	assert.Equal(t, "1", env.Get("A"))
}
