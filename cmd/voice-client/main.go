// Command voice-client is a command-line client for the voice-service API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/book-expert/voice-service/internal/client"
)

// Flag descriptions.
const (
	flagURLDesc      = "Base URL of the voice service"
	flagTextDesc     = "Text to synthesize"
	flagSpeakerDesc  = "Reference speaker name"
	flagLanguageDesc = "Language code (en, es, fr, ...)"
	flagFormatDesc   = "Output format: wav or mp3"
	flagOutputDesc   = "Output file path (defaults to output.<format>)"
	flagTimeoutDesc  = "Request timeout"
	flagHealthDesc   = "Check service health and exit"
	flagSpeakersDesc = "List available speakers and exit"
)

const (
	defaultURL     = "http://localhost:8000"
	defaultTimeout = 10 * time.Minute
	outputFileMode = 0o600
)

var errTextAndSpeakerRequired = errors.New("both -text and -speaker are required")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	url      string
	text     string
	speaker  string
	language string
	format   string
	output   string
	timeout  time.Duration
	health   bool
	speakers bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	voiceClient := client.New(flags.url, flags.timeout)

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	if flags.health {
		return handleHealthCheck(ctx, voiceClient)
	}

	if flags.speakers {
		return handleListSpeakers(ctx, voiceClient)
	}

	return handleSynthesis(ctx, voiceClient, flags)
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.url, "url", defaultURL, flagURLDesc)
	flag.StringVar(&flags.text, "text", "", flagTextDesc)
	flag.StringVar(&flags.speaker, "speaker", "", flagSpeakerDesc)
	flag.StringVar(&flags.language, "language", "", flagLanguageDesc)
	flag.StringVar(&flags.format, "format", "wav", flagFormatDesc)
	flag.StringVar(&flags.output, "output", "", flagOutputDesc)
	flag.DurationVar(&flags.timeout, "timeout", defaultTimeout, flagTimeoutDesc)
	flag.BoolVar(&flags.health, "health", false, flagHealthDesc)
	flag.BoolVar(&flags.speakers, "speakers", false, flagSpeakersDesc)
	flag.Parse()

	return flags
}

func handleHealthCheck(ctx context.Context, voiceClient *client.Client) error {
	health, err := voiceClient.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("service is not healthy: %w", err)
	}

	fmt.Printf("Service is %s (device: %s)\n", health.Status, health.Device)

	return nil
}

func handleListSpeakers(ctx context.Context, voiceClient *client.Client) error {
	ids, err := voiceClient.Speakers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list speakers: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("No speakers registered.")

		return nil
	}

	for _, id := range ids {
		fmt.Println(id)
	}

	return nil
}

func handleSynthesis(ctx context.Context, voiceClient *client.Client, flags appFlags) error {
	if flags.text == "" || flags.speaker == "" {
		flag.Usage()

		return errTextAndSpeakerRequired
	}

	audio, mediaType, err := voiceClient.Synthesize(ctx, client.SynthesisRequest{
		Text:     flags.text,
		Speaker:  flags.speaker,
		Language: flags.language,
		Format:   flags.format,
	})
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = "output." + strings.ToLower(flags.format)
	}

	writeErr := os.WriteFile(outputPath, audio, outputFileMode)
	if writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, writeErr)
	}

	fmt.Printf("Generated: %s (%s, %d bytes)\n", outputPath, mediaType, len(audio))

	return nil
}
