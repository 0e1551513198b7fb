package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()

	assert.Equal(t, "8080", cfg.Api.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "http", cfg.Generator.ImageBackend)
	assert.Equal(t, "grpc", cfg.Generator.VideoBackend)
	assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 5, cfg.Batch.MaxPrompts)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfig_DefaultsKeepExplicitValues(t *testing.T) {
	cfg := Config{
		Api:       ApiConfig{Port: "9000"},
		Store:     StoreConfig{Driver: "postgres", Dsn: "postgres://localhost/studio"},
		Generator: GeneratorConfig{ImageBackend: "grpc", Timeout: time.Minute},
		Batch:     BatchConfig{MaxPrompts: 3},
	}
	cfg.Defaults()

	assert.Equal(t, "9000", cfg.Api.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "grpc", cfg.Generator.ImageBackend)
	assert.Equal(t, time.Minute, cfg.Generator.Timeout)
	assert.Equal(t, 3, cfg.Batch.MaxPrompts)
}
