package config

import "time"

type Config struct {
	Api       ApiConfig       `yaml:"api"`
	Store     StoreConfig     `yaml:"store"`
	Generator GeneratorConfig `yaml:"generator"`
	Rpc       RpcConfig       `yaml:"rpc"`
	Batch     BatchConfig     `yaml:"batch"`
	Log       LogConfig       `yaml:"log"`
}

type ApiConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowedOrigins"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	Dsn    string `yaml:"dsn"`
}

type GeneratorConfig struct {
	// ImageBackend is "http" or "grpc".
	ImageBackend string `yaml:"imageBackend"`
	ImageApiUrl  string `yaml:"imageApiUrl"`
	// VideoBackend is "grpc" or "simulated".
	VideoBackend     string        `yaml:"videoBackend"`
	SimulatedBaseUrl string        `yaml:"simulatedBaseUrl"`
	Timeout          time.Duration `yaml:"timeout"`
}

type RpcConfig struct {
	// Peer is left empty when no media worker is deployed.
	Peer    string `yaml:"peer"`
	Port    string `yaml:"port"`
	Service string `yaml:"service"`
}

type BatchConfig struct {
	QueueSize     int `yaml:"queueSize"`
	MaxConcurrent int `yaml:"maxConcurrent"`
	MaxPrompts    int `yaml:"maxPrompts"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults fills zero values with the settings the API ships with.
func (c *Config) Defaults() {
	if c.Api.Port == "" {
		c.Api.Port = "8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Dsn == "" {
		c.Store.Dsn = "genstudio.db"
	}
	if c.Generator.ImageBackend == "" {
		c.Generator.ImageBackend = "http"
	}
	if c.Generator.VideoBackend == "" {
		c.Generator.VideoBackend = "grpc"
	}
	if c.Generator.SimulatedBaseUrl == "" {
		c.Generator.SimulatedBaseUrl = "https://example.com"
	}
	if c.Generator.Timeout <= 0 {
		c.Generator.Timeout = 30 * time.Second
	}
	if c.Rpc.Service == "" {
		c.Rpc.Service = "genstudio.worker.v1.MediaWorker"
	}
	if c.Batch.QueueSize <= 0 {
		c.Batch.QueueSize = 64
	}
	if c.Batch.MaxConcurrent <= 0 {
		c.Batch.MaxConcurrent = 2
	}
	if c.Batch.MaxPrompts <= 0 {
		c.Batch.MaxPrompts = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
