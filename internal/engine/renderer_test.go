package engine_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/engine"
	"github.com/stretchr/testify/require"
)

func newRendererLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "renderer-test.log")
	require.NoError(t, err)

	return log
}

func TestCommandSynthesizerLoadMissingBinary(t *testing.T) {
	t.Parallel()

	synth := engine.NewCommandSynthesizer(
		"definitely-not-a-real-renderer", "models/xtts", time.Minute, newRendererLogger(t))

	err := synth.Load(context.Background())
	require.Error(t, err)
}

func TestCommandSynthesizerRenderFailurePropagates(t *testing.T) {
	t.Parallel()

	synth := engine.NewCommandSynthesizer(
		"false", "models/xtts", time.Minute, newRendererLogger(t))
	require.NoError(t, synth.Load(context.Background()))

	err := synth.Render(
		context.Background(),
		"Hello world",
		filepath.Join(t.TempDir(), "ref.wav"),
		core.LanguageEN,
		filepath.Join(t.TempDir(), "out.wav"),
	)
	require.Error(t, err, "a non-zero renderer exit must propagate")
}

func TestCommandSynthesizerRenderSuccess(t *testing.T) {
	t.Parallel()

	synth := engine.NewCommandSynthesizer(
		"true", "models/xtts", time.Minute, newRendererLogger(t))
	require.NoError(t, synth.Load(context.Background()))

	err := synth.Render(
		context.Background(),
		"Hello world",
		filepath.Join(t.TempDir(), "ref.wav"),
		core.LanguageEN,
		filepath.Join(t.TempDir(), "out.wav"),
	)
	require.NoError(t, err)
}
