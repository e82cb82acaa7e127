package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  user: munlink
  database: munlink
smtp:
  host: smtp.example.com
  port: 587
jwt:
  secret: "0123456789abcdef0123456789abcdef"
storage:
  upload_dir: ./uploads
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "Asia/Manila", cfg.Server.Timezone)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "mock", cfg.Storage.Type)
	assert.Equal(t, int64(10)<<20, cfg.MaxUploadBytes())
	assert.Equal(t, 15*time.Minute, cfg.PresignedExpiry())
	assert.Equal(t, 5*time.Minute, cfg.Cache.ProgramsStaleTime())
	assert.Equal(t, 10*time.Minute, cfg.Cache.DocumentTypesStaleTime())
	assert.Equal(t, "0 0 1 * * *", cfg.Scheduler.ExpireSpecialStatuses)
	assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.RemindPendingUploads)
	assert.Equal(t, 24, cfg.Scheduler.PendingUploadHours)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Asia/Manila", cfg.Location().String())
	assert.Equal(t, "postgres://munlink:@localhost:5432/munlink?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"Bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"Short secret", func(c *Config) { c.JWT.Secret = "short" }, "at least 32"},
		{"Missing db host", func(c *Config) { c.Database.Host = "" }, "database host"},
		{"Unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "unsupported storage"},
		{"S3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "s3 bucket"},
		{"Sendgrid without key", func(c *Config) { c.Email.Provider = "sendgrid" }, "sendgrid api key"},
		{"Push without credentials", func(c *Config) { c.Push.Enabled = true }, "firebase credentials"},
		{"Bad timezone", func(c *Config) { c.Server.Timezone = "Mars/Olympus" }, "invalid server timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(minimalYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("ListPrograms"))
	assert.Equal(t, SecurityResident, GetSecurityLevel("SubmitDocumentRequest"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("ApproveApplication"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("SomethingNew"))
}
