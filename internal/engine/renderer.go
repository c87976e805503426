package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
)

// Compute device names reported by the renderer.
const (
	deviceCUDA = "cuda"
	deviceCPU  = "cpu"
)

const acceleratorProbe = "nvidia-smi"

// CommandSynthesizer implements core.Synthesizer by invoking the renderer
// binary. A single loaded model lives inside the renderer process tree; this
// type only shells out to it, so the engine's lock is what keeps invocations
// from overlapping.
type CommandSynthesizer struct {
	command   string
	modelPath string
	timeout   time.Duration
	device    string
	log       *logger.Logger
}

// NewCommandSynthesizer creates a renderer invoking the given binary with
// the given model checkpoint.
func NewCommandSynthesizer(
	command, modelPath string,
	timeout time.Duration,
	log *logger.Logger,
) *CommandSynthesizer {
	return &CommandSynthesizer{
		command:   command,
		modelPath: modelPath,
		timeout:   timeout,
		device:    deviceCPU,
		log:       log,
	}
}

// Load verifies the renderer binary resolves and binds it to an accelerator
// device when one is present, else the CPU fallback. A missing binary is
// fatal for the serving capability and propagates to the caller.
func (s *CommandSynthesizer) Load(_ context.Context) error {
	_, lookErr := exec.LookPath(s.command)
	if lookErr != nil {
		return fmt.Errorf("renderer binary %q not found on PATH: %w", s.command, lookErr)
	}

	_, probeErr := exec.LookPath(acceleratorProbe)
	if probeErr == nil {
		s.device = deviceCUDA
	} else {
		s.device = deviceCPU
	}

	return nil
}

// Device reports the compute device selected by Load.
func (s *CommandSynthesizer) Device() string {
	return s.device
}

// Render invokes the renderer binary to synthesize text into outPath. A
// non-zero exit propagates with the captured process output.
func (s *CommandSynthesizer) Render(
	ctx context.Context,
	text, referenceWAV string,
	language core.Language,
	outPath string,
) error {
	renderCtx := ctx

	if s.timeout > 0 {
		var cancel context.CancelFunc

		renderCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		"--model", s.modelPath,
		"--device", s.device,
		"--text", text,
		"--speaker-wav", referenceWAV,
		"--language", string(language),
		"--out", outPath,
	}

	// #nosec G204 -- command comes from configuration, arguments are built here
	cmd := exec.CommandContext(renderCtx, s.command, args...)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return fmt.Errorf(
			"renderer execution failed: %w - output: %s",
			runErr, strings.TrimSpace(string(output)),
		)
	}

	return nil
}
