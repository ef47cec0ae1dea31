package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "log", cfg.Notifier.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Notifier.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 60*time.Second, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("NOTIFIER_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("JWT_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "kafka", cfg.Notifier.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifier.KafkaBrokers)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
}

func TestFromViper_RejectsUnknownDrivers(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DATABASE_DRIVER", "mysql")
	_, err := fromViper(v)
	assert.ErrorContains(t, err, "DATABASE_DRIVER")

	v = viper.New()
	setDefaults(v)
	v.Set("NOTIFIER_DRIVER", "smtp")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "NOTIFIER_DRIVER")

	v = viper.New()
	setDefaults(v)
	v.Set("APP_TIMEZONE", "Mars/Olympus")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}
