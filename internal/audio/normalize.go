// Package audio wraps the external transcoding process and provides WAV
// inspection. Normalization converts an arbitrary reference file to the
// mono, fixed-rate PCM layout the renderer requires; conversion re-encodes
// finished artifacts to compressed formats.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// Canonical reference layout expected by the renderer.
const (
	ReferenceSampleRate = 22050
	referenceChannels   = "1"
	referenceSampleFmt  = "s16"
)

// DefaultFFmpeg is the transcoder binary resolved on PATH.
const DefaultFFmpeg = "ffmpeg"

const tempSuffixLength = 8

// Normalizer produces canonical reference files in a scratch directory.
type Normalizer struct {
	tempDir string
	ffmpeg  string
	log     *logger.Logger
}

// NewNormalizer creates a Normalizer writing into tempDir.
func NewNormalizer(tempDir string, log *logger.Logger) *Normalizer {
	return &Normalizer{
		tempDir: tempDir,
		ffmpeg:  DefaultFFmpeg,
		log:     log,
	}
}

// SetCommand overrides the transcoder binary. Used by tests.
func (n *Normalizer) SetCommand(command string) {
	n.ffmpeg = command
}

// Normalize transcodes srcPath to mono 22050 Hz 16-bit PCM at a uniquely
// suffixed path under the temp directory. The unique suffix keeps concurrent
// requests for the same speaker from colliding, including on filesystems
// with exclusive-open semantics. A transcoder failure is surfaced with its
// captured output.
func (n *Normalizer) Normalize(ctx context.Context, srcPath string) (string, error) {
	_, statErr := os.Stat(srcPath)
	if statErr != nil {
		return "", fmt.Errorf("reference file %s is not readable: %w", srcPath, statErr)
	}

	outPath := n.tempPath(srcPath)

	// #nosec G204 -- the argument vector is fully constructed here
	cmd := exec.CommandContext(ctx, n.ffmpeg, NormalizeArgs(srcPath, outPath)...)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return "", fmt.Errorf(
			"normalization of %s failed: %w - output: %s",
			srcPath, runErr, strings.TrimSpace(string(output)),
		)
	}

	n.log.Info("Normalized reference %s -> %s", filepath.Base(srcPath), filepath.Base(outPath))

	return outPath, nil
}

// Cleanup removes a normalized reference. Removal failure is logged and
// swallowed; a stale temp file must never fail a request.
func (n *Normalizer) Cleanup(path string) {
	removeErr := os.Remove(path)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		n.log.Warn("Failed to remove temp reference %s: %v", path, removeErr)
	}
}

// tempPath derives a collision-resistant output path for a source reference.
func (n *Normalizer) tempPath(srcPath string) string {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	suffix := uuid.NewString()[:tempSuffixLength]

	return filepath.Join(n.tempDir, fmt.Sprintf("%s_%s.wav", stem, suffix))
}

// NormalizeArgs builds the transcoder argument vector for a normalization
// run. Exposed for direct testing without a transcoder on PATH.
func NormalizeArgs(srcPath, outPath string) []string {
	return []string{
		"-y", "-v", "error",
		"-i", srcPath,
		"-ac", referenceChannels,
		"-ar", fmt.Sprintf("%d", ReferenceSampleRate),
		"-sample_fmt", referenceSampleFmt,
		outPath,
	}
}

// CheckTranscoder reports whether the transcoder binary is discoverable on
// PATH. Absence is a startup warning, not a failure: only conversion and
// normalization attempts depend on it.
func CheckTranscoder() error {
	_, lookErr := exec.LookPath(DefaultFFmpeg)
	if lookErr != nil {
		return fmt.Errorf("transcoder binary %q not found on PATH: %w", DefaultFFmpeg, lookErr)
	}

	return nil
}
