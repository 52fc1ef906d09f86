package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "shipments.extracted", cfg.KafkaTopic)
	assert.True(t, cfg.OCREnabled)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("LABELX_SERVER_PORT", "9090")
	t.Setenv("LABELX_KAFKA_BROKER", "localhost:9092")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--store-driver=sqlite", "--sqlite-path=/tmp/x.db"}))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
}

func TestValidate(t *testing.T) {
	base := Config{ServerPort: "8080", MaxFileSize: 1, StoreDriver: StoreMemory, LogLevel: "info"}
	assert.NoError(t, base.Validate())

	bad := base
	bad.StoreDriver = "postgres"
	assert.Error(t, bad.Validate())

	bad = base
	bad.MaxFileSize = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "trace"
	assert.Error(t, bad.Validate())

	bad = base
	bad.StoreDriver = StoreSQLite
	assert.Error(t, bad.Validate())
}
