// Package config_test tests the configuration loading for the voice-service.
package config_test

import (
	"testing"

	"github.com/book-expert/voice-service/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[server]
host = "127.0.0.1"
port = 9000

[paths]
output_dir = "/srv/voice/output"
speakers_dir = "/srv/voice/speakers"
temp_dir = "/srv/voice/temp"
base_logs_dir = "/var/log/voice-service"

[tts]
command = "xtts-cli"
model_path = "models/xtts-v2"
timeout_seconds = 120
preload = true

[retention]
max_age_seconds = 3600

[nats]
url = "nats://127.0.0.1:4222"
audio_chunk_created_subject = "audio.chunk.created"
audio_object_store_bucket = "AUDIO_FILES"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/voice/output", cfg.Paths.OutputDir)
	assert.Equal(t, "/srv/voice/speakers", cfg.Paths.SpeakersDir)
	assert.Equal(t, "/srv/voice/temp", cfg.Paths.TempDir)
	assert.Equal(t, "/var/log/voice-service", cfg.Paths.BaseLogsDir)
	assert.Equal(t, "xtts-cli", cfg.TTS.Command)
	assert.Equal(t, "models/xtts-v2", cfg.TTS.ModelPath)
	assert.Equal(t, 120, cfg.TTS.TimeoutSeconds)
	assert.True(t, cfg.TTS.Preload)
	assert.Equal(t, 3600, cfg.Retention.MaxAgeSeconds)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "audio.chunk.created", cfg.NATS.AudioChunkCreatedSubject)
	assert.Equal(t, "AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	cfg.ApplyDefaults()

	assert.Equal(t, config.DefaultHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultOutputDir, cfg.Paths.OutputDir)
	assert.Equal(t, config.DefaultSpeakersDir, cfg.Paths.SpeakersDir)
	assert.Equal(t, config.DefaultTempDir, cfg.Paths.TempDir)
	assert.Equal(t, config.DefaultBaseLogsDir, cfg.Paths.BaseLogsDir)
	assert.Equal(t, config.DefaultRenderCommand, cfg.TTS.Command)
	assert.Equal(t, config.DefaultTimeoutSeconds, cfg.TTS.TimeoutSeconds)
	assert.Equal(t, config.DefaultMaxAgeSeconds, cfg.Retention.MaxAgeSeconds)
	assert.Empty(t, cfg.NATS.URL, "NATS stays disabled unless configured")
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080},
		Retention: config.RetentionConfig{
			MaxAgeSeconds: 60,
		},
	}

	cfg.ApplyDefaults()

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, 60, cfg.Retention.MaxAgeSeconds)
}
