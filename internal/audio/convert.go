package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
)

// Converter re-encodes finished WAV artifacts to compressed formats via the
// external transcoder.
type Converter struct {
	ffmpeg string
	log    *logger.Logger
}

// NewConverter creates a Converter using the default transcoder binary.
func NewConverter(log *logger.Logger) *Converter {
	return &Converter{
		ffmpeg: DefaultFFmpeg,
		log:    log,
	}
}

// SetCommand overrides the transcoder binary. Used by tests.
func (c *Converter) SetCommand(command string) {
	c.ffmpeg = command
}

// ToMP3 re-encodes wavPath to MP3 at the sibling path with the extension
// swapped. The source WAV is removed only after a successful conversion; on
// failure it is left intact as the fallback artifact and the error
// propagates with the transcoder's output.
func (c *Converter) ToMP3(ctx context.Context, wavPath string) (string, error) {
	mp3Path := MP3Path(wavPath)

	// #nosec G204 -- the argument vector is fully constructed here
	cmd := exec.CommandContext(ctx, c.ffmpeg,
		"-y", "-v", "error",
		"-i", wavPath,
		mp3Path,
	)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return "", fmt.Errorf(
			"mp3 conversion of %s failed: %w - output: %s",
			wavPath, runErr, strings.TrimSpace(string(output)),
		)
	}

	removeErr := os.Remove(wavPath)
	if removeErr != nil {
		// The MP3 exists and is served; the leftover WAV is picked up
		// by the retention sweep.
		c.log.Warn("Failed to remove source wav %s after conversion: %v", wavPath, removeErr)
	}

	c.log.Info("Converted %s -> %s", filepath.Base(wavPath), filepath.Base(mp3Path))

	return mp3Path, nil
}

// MP3Path derives the MP3 output path for a WAV artifact by swapping the
// extension.
func MP3Path(wavPath string) string {
	return strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".mp3"
}
