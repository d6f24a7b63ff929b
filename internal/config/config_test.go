package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.HTTP.MetricsAddress)
	assert.Equal(t, "marketplace.db", cfg.Database.Path)
	assert.Equal(t, 0.08, cfg.Orders.TaxRate)
	assert.Equal(t, 7, cfg.Orders.DailyStatsDays)
	assert.Equal(t, "orders_topic", cfg.Events.Exchange)
	assert.Empty(t, cfg.Events.AMQPURL)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9999"
database:
  path: /tmp/test.db
orders:
  tax_rate: 0.1
  daily_stats_days: 30
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Address)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 0.1, cfg.Orders.TaxRate)
	assert.Equal(t, 30, cfg.Orders.DailyStatsDays)
	// untouched keys keep their defaults
	assert.Equal(t, ":9090", cfg.HTTP.MetricsAddress)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("TAX_RATE", "0.05")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/file.db
orders:
  tax_rate: 0.2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 0.05, cfg.Orders.TaxRate)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	t.Run("tax rate out of range", func(t *testing.T) {
		t.Setenv("TAX_RATE", "1.5")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("tax rate not a number", func(t *testing.T) {
		t.Setenv("TAX_RATE", "ten percent")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("daily window must be positive", func(t *testing.T) {
		t.Setenv("DAILY_STATS_DAYS", "0")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("missing file is not an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.NoError(t, err)
	})
}

func TestStringMasksSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret-value")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotContains(t, cfg.String(), "super-secret-value")
}
