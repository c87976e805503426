package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Static errors.
var (
	// ErrEmptyArtifact indicates a rendered file with no content.
	ErrEmptyArtifact = errors.New("artifact is empty")
	// ErrInvalidWAV indicates a file that does not decode as a WAV stream.
	ErrInvalidWAV = errors.New("not a valid wav file")
)

// Info describes a decoded WAV artifact.
type Info struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
	Size       int64
}

// Probe decodes the WAV header at path and reports its layout and duration.
// It is used to verify that a rendered artifact is a real, non-empty
// waveform before a response references it.
func Probe(path string) (Info, error) {
	stat, statErr := os.Stat(path)
	if statErr != nil {
		return Info{}, fmt.Errorf("failed to stat artifact %s: %w", path, statErr)
	}

	if stat.Size() == 0 {
		return Info{}, fmt.Errorf("%w: %s", ErrEmptyArtifact, path)
	}

	file, openErr := os.Open(path)
	if openErr != nil {
		return Info{}, fmt.Errorf("failed to open artifact %s: %w", path, openErr)
	}

	defer func() {
		// Read-only handle; nothing actionable on close failure.
		_ = file.Close()
	}()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	duration, durationErr := decoder.Duration()
	if durationErr != nil {
		return Info{}, fmt.Errorf("failed to read duration of %s: %w", path, durationErr)
	}

	return Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		Duration:   duration,
		Size:       stat.Size(),
	}, nil
}
