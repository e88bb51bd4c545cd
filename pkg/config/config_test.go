package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "0.16", cfg.Workshop.TaxRate.String())
	assert.Equal(t, "SR", cfg.Workshop.FolioPrefix)
	assert.Equal(t, 3, cfg.Workshop.FolioAttempts)
	assert.Equal(t, "0 8 * * *", cfg.Workshop.LowStockCron)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "MEMORY")
	v.Set("DB_PORT", "6543")
	v.Set("WORKSHOP_TAX_RATE", "0.08")
	v.Set("WORKSHOP_FOLIO_ATTEMPTS", "5")
	v.Set("REDIS_ADDR", "localhost:6379")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "0.08", cfg.Workshop.TaxRate.String())
	assert.Equal(t, 5, cfg.Workshop.FolioAttempts)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestFromViper_TasaInvalida(t *testing.T) {
	v := viper.New()
	v.Set("WORKSHOP_TAX_RATE", "dieciseis")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	v.Set("WORKSHOP_TAX_RATE", "-0.1")
	v.Set("DB_DRIVER", "sqlite")
	cfg, err := FromViper(v)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "WORKSHOP_TAX_RATE")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "taller", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/taller?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
