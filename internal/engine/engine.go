// Package engine owns the single renderer instance and the exclusivity lock
// around it. All synthesis in the process funnels through one Engine value,
// constructed at the composition root and passed to the request handlers.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/audio"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/speakers"
	"github.com/google/uuid"
)

const artifactExt = ".wav"

// ReferencePreparer converts a raw speaker reference into the canonical
// layout the renderer requires and disposes of the result afterwards.
// Implemented by audio.Normalizer.
type ReferencePreparer interface {
	Normalize(ctx context.Context, srcPath string) (string, error)
	Cleanup(path string)
}

// Engine orchestrates synthesis: speaker resolution, reference preparation,
// the serialized renderer call, and artifact validation.
//
// The render mutex is the one correctness-critical invariant in the service:
// the renderer's accelerator context is not safe for concurrent invocation,
// so at most one render executes at any instant, process-wide. The lock is
// held only around the render itself, never around normalization.
type Engine struct {
	synth     core.Synthesizer
	store     *speakers.Store
	preparer  ReferencePreparer
	outputDir string
	log       *logger.Logger

	loadMu sync.Mutex
	loaded bool

	renderMu sync.Mutex
}

// New creates an Engine. The renderer is not loaded until EnsureLoaded or
// the first Synthesize call.
func New(
	synth core.Synthesizer,
	store *speakers.Store,
	preparer ReferencePreparer,
	outputDir string,
	log *logger.Logger,
) *Engine {
	return &Engine{
		synth:     synth,
		store:     store,
		preparer:  preparer,
		outputDir: outputDir,
		log:       log,
	}
}

// EnsureLoaded loads the renderer if it is not loaded yet. Idempotent: the
// first caller pays the cost, subsequent callers observe the loaded state
// and return immediately.
func (e *Engine) EnsureLoaded(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if e.loaded {
		return nil
	}

	loadErr := e.synth.Load(ctx)
	if loadErr != nil {
		return fmt.Errorf("failed to load renderer: %w", loadErr)
	}

	e.loaded = true
	e.log.Info("Renderer loaded on device: %s", e.synth.Device())

	return nil
}

// Device reports the compute device of the loaded renderer, or "cpu" before
// loading.
func (e *Engine) Device() string {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if !e.loaded {
		return "cpu"
	}

	return e.synth.Device()
}

// ListSpeakers returns the available speaker ids.
func (e *Engine) ListSpeakers() ([]string, error) {
	ids, listErr := e.store.List()
	if listErr != nil {
		return nil, fmt.Errorf("failed to list speakers: %w", listErr)
	}

	return ids, nil
}

// Synthesize renders text conditioned on the named speaker and returns the
// path of the generated WAV artifact. The artifact is fully written and
// validated before the path is returned. The temp reference is removed on
// every path, success or failure.
func (e *Engine) Synthesize(
	ctx context.Context,
	text, speaker string,
	language core.Language,
) (string, error) {
	ensureErr := e.EnsureLoaded(ctx)
	if ensureErr != nil {
		return "", ensureErr
	}

	referencePath, resolveErr := e.store.Resolve(speaker)
	if resolveErr != nil {
		return "", resolveErr
	}

	normalizedRef, normalizeErr := e.preparer.Normalize(ctx, referencePath)
	if normalizeErr != nil {
		return "", fmt.Errorf("failed to prepare reference for %q: %w", speaker, normalizeErr)
	}

	defer e.preparer.Cleanup(normalizedRef)

	artifactPath := filepath.Join(e.outputDir, uuid.NewString()+artifactExt)

	renderErr := e.render(ctx, text, normalizedRef, language, artifactPath)
	if renderErr != nil {
		return "", fmt.Errorf("generation failed for speaker %q: %w", speaker, renderErr)
	}

	info, probeErr := audio.Probe(artifactPath)
	if probeErr != nil {
		return "", fmt.Errorf("rendered artifact is unusable: %w", probeErr)
	}

	e.log.Info(
		"Generated %s (%s, %d Hz) for speaker %q",
		filepath.Base(artifactPath), info.Duration, info.SampleRate, speaker,
	)

	return artifactPath, nil
}

// render performs the serialized renderer invocation. Only this call holds
// the lock, keeping hold time to the inference itself.
func (e *Engine) render(
	ctx context.Context,
	text, referenceWAV string,
	language core.Language,
	outPath string,
) error {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	return e.synth.Render(ctx, text, referenceWAV, language, outPath)
}
