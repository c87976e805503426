// Package config provides the configuration structure for the voice-service.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the project TOML leaves a field unset.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8000
	DefaultOutputDir      = "data/output"
	DefaultSpeakersDir    = "data/speakers"
	DefaultTempDir        = "data/temp"
	DefaultBaseLogsDir    = "data/logs"
	DefaultRenderCommand  = "xtts-cli"
	DefaultTimeoutSeconds = 300
	DefaultMaxAgeSeconds  = 7200
)

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PathsConfig holds the configuration for file paths. The first three are the
// service data directories, created at startup if absent.
type PathsConfig struct {
	OutputDir   string `toml:"output_dir"`
	SpeakersDir string `toml:"speakers_dir"`
	TempDir     string `toml:"temp_dir"`
	BaseLogsDir string `toml:"base_logs_dir"`
}

// TTSConfig holds the configuration for the renderer process.
type TTSConfig struct {
	Command        string `toml:"command"`
	ModelPath      string `toml:"model_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Preload        bool   `toml:"preload"`
}

// RetentionConfig controls the artifact retention sweep.
type RetentionConfig struct {
	MaxAgeSeconds int `toml:"max_age_seconds"`
}

// NATSConfig holds the optional pipeline integration settings. An empty URL
// disables NATS entirely.
type NATSConfig struct {
	URL                      string `toml:"url"`
	AudioChunkCreatedSubject string `toml:"audio_chunk_created_subject"`
	AudioObjectStoreBucket   string `toml:"audio_object_store_bucket"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Paths     PathsConfig     `toml:"paths"`
	TTS       TTSConfig       `toml:"tts"`
	Retention RetentionConfig `toml:"retention"`
	NATS      NATSConfig      `toml:"nats"`
}

// Load loads the configuration for the voice-service and applies defaults.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = DefaultOutputDir
	}

	if c.Paths.SpeakersDir == "" {
		c.Paths.SpeakersDir = DefaultSpeakersDir
	}

	if c.Paths.TempDir == "" {
		c.Paths.TempDir = DefaultTempDir
	}

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = DefaultBaseLogsDir
	}

	if c.TTS.Command == "" {
		c.TTS.Command = DefaultRenderCommand
	}

	if c.TTS.TimeoutSeconds == 0 {
		c.TTS.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Retention.MaxAgeSeconds == 0 {
		c.Retention.MaxAgeSeconds = DefaultMaxAgeSeconds
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
