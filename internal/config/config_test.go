package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "4020", cfg.GrpcPort)
	assert.Equal(t, "4021", cfg.HttpPort)
	assert.Equal(t, "", cfg.HttpPrefix)
	assert.Equal(t, "sqlite", cfg.DbDriver)
	assert.Equal(t, "none", cfg.QueueDriver)
	assert.Equal(t, "headline.changes", cfg.QueueTopic)
	assert.Equal(t, "@every 10m", cfg.RefSweeperSchedule)
	assert.True(t, cfg.IsDev())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("HTTP_PREFIX", "/api")
	t.Setenv("QUEUE_DRIVER", "redis")
	t.Setenv("REF_SWEEPER_SCHEDULE", "")
	t.Setenv("ENV", "production")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HttpPort)
	assert.Equal(t, "/api", cfg.HttpPrefix)
	assert.Equal(t, "redis", cfg.QueueDriver)
	assert.Equal(t, "", cfg.RefSweeperSchedule)
	assert.False(t, cfg.IsDev())
}

func TestGetDb(t *testing.T) {
	db, err := GetDb(&Config{DbDriver: "sqlite", DbDsn: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)

	_, err = GetDb(&Config{DbDriver: "mysql"})
	assert.Error(t, err)
}
