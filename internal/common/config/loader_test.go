// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: match-engine
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: matching
    user: ${MATCH_TEST_DB_USER}
  redis:
    address: localhost:6379
quota:
  tiers:
    pro: 150
workers:
  submit-swipe:
    enabled: true
    timeout: 10000
  get-feed:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("MATCH_TEST_DB_USER", "matcher")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "matcher", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)

	assert.Equal(t, 15, cfg.Matching.FallbackTopN)
	assert.Equal(t, 60000, cfg.Matching.FeedTTL)
	assert.Equal(t, 4000, cfg.Matching.MaxMessageLength)

	assert.Equal(t, map[string]int{"free": 50, "premium": 50, "pro": 150}, cfg.Quota.Tiers)

	assert.Equal(t, "match-events", cfg.Notifications.Redis.Channel)
	assert.Equal(t, "match-engine", cfg.Observability.ServiceName)

	swipe := GetWorkerConfig(cfg, "submit-swipe")
	assert.Equal(t, 10*time.Second, swipe.TimeoutDuration())
	assert.Equal(t, 3, swipe.MaxRetries)
	assert.False(t, IsWorkerEnabled(cfg, "get-feed"))
	assert.True(t, IsWorkerEnabled(cfg, "send-message"))
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Camunda.BrokerAddress = "localhost:26500"
		cfg.Database.Postgres.Host = "localhost"
		cfg.Database.Postgres.Database = "matching"
		cfg.Database.Postgres.User = "matcher"
		cfg.Database.Redis.Address = "localhost:6379"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "missing broker",
			mutate:  func(c *Config) { c.Camunda.BrokerAddress = "" },
			wantErr: "camunda.broker_address",
		},
		{
			name:    "missing postgres host",
			mutate:  func(c *Config) { c.Database.Postgres.Host = "" },
			wantErr: "database.postgres.host",
		},
		{
			name:    "missing redis",
			mutate:  func(c *Config) { c.Database.Redis.Address = "" },
			wantErr: "database.redis.address",
		},
		{
			name:    "negative fallback",
			mutate:  func(c *Config) { c.Matching.FallbackTopN = -1 },
			wantErr: "fallback_top_n",
		},
		{
			name:    "pro below premium",
			mutate:  func(c *Config) { c.Quota.Tiers["pro"] = 10 },
			wantErr: "quota.tiers.pro",
		},
		{
			name:    "negative free",
			mutate:  func(c *Config) { c.Quota.Tiers["free"] = -5 },
			wantErr: "quota.tiers.free",
		},
		{
			name:    "sns without topic",
			mutate:  func(c *Config) { c.Notifications.SNS.Enabled = true },
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "m", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=m sslmode=require", p.GetDSN())
}
