// main package for the voice-service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/announce"
	"github.com/book-expert/voice-service/internal/audio"
	"github.com/book-expert/voice-service/internal/config"
	"github.com/book-expert/voice-service/internal/engine"
	"github.com/book-expert/voice-service/internal/objectstore"
	"github.com/book-expert/voice-service/internal/retention"
	"github.com/book-expert/voice-service/internal/server"
	"github.com/book-expert/voice-service/internal/speakers"
)

const shutdownTimeout = 10 * time.Second

const dirPermissions = 0o750

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "voice-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	dirsErr := ensureDataDirs(cfg)
	if dirsErr != nil {
		return dirsErr
	}

	transcoderErr := audio.CheckTranscoder()
	if transcoderErr != nil {
		// Startup proceeds; only normalization and mp3 conversion will
		// fail later if the binary stays absent.
		log.Warn("Transcoder check: %v", transcoderErr)
	}

	store, storeErr := speakers.New(cfg.Paths.SpeakersDir)
	if storeErr != nil {
		return fmt.Errorf("failed to open speaker store: %w", storeErr)
	}

	eng, engineErr := buildEngine(cfg, store, log)
	if engineErr != nil {
		return engineErr
	}

	announcer, announcerErr := buildAnnouncer(cfg, log)
	if announcerErr != nil {
		return announcerErr
	}

	gateway := server.New(
		eng,
		audio.NewConverter(log),
		retention.New(cfg.Paths.OutputDir, log),
		announcer,
		store,
		time.Duration(cfg.Retention.MaxAgeSeconds)*time.Second,
		cfg.Paths.OutputDir,
		log,
	)

	httpServer := gateway.HTTPServer(cfg.Addr())

	return runServer(httpServer, cfg.Addr(), log)
}

func ensureDataDirs(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.SpeakersDir, cfg.Paths.TempDir} {
		mkdirErr := os.MkdirAll(dir, dirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, mkdirErr)
		}
	}

	return nil
}

func buildEngine(cfg *config.Config, store *speakers.Store, log *logger.Logger) (*engine.Engine, error) {
	synth := engine.NewCommandSynthesizer(
		cfg.TTS.Command,
		cfg.TTS.ModelPath,
		time.Duration(cfg.TTS.TimeoutSeconds)*time.Second,
		log,
	)

	normalizer := audio.NewNormalizer(cfg.Paths.TempDir, log)

	eng := engine.New(synth, store, normalizer, cfg.Paths.OutputDir, log)

	// Deferred loading keeps startup cheap; preload makes a broken
	// renderer a startup-fatal condition instead of a first-request 500.
	if cfg.TTS.Preload {
		loadErr := eng.EnsureLoaded(context.Background())
		if loadErr != nil {
			return nil, fmt.Errorf("renderer preload failed: %w", loadErr)
		}
	}

	return eng, nil
}

// buildAnnouncer wires the optional NATS pipeline integration. It returns a
// nil announcer when no NATS URL is configured.
func buildAnnouncer(cfg *config.Config, log *logger.Logger) (server.ArtifactAnnouncer, error) {
	if cfg.NATS.URL == "" {
		log.Info("NATS integration disabled: no URL configured")

		return nil, nil
	}

	natsConnection, jetstreamContext, connectErr := announce.Connect(cfg.NATS.URL)
	if connectErr != nil {
		return nil, connectErr
	}

	store, storeErr := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if storeErr != nil {
		return nil, storeErr
	}

	log.System("Mirroring artifacts to bucket %s, announcing on %s",
		cfg.NATS.AudioObjectStoreBucket, cfg.NATS.AudioChunkCreatedSubject)

	return announce.New(store, natsConnection, cfg.NATS.AudioChunkCreatedSubject, log), nil
}

func runServer(httpServer *http.Server, addr string, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErrs := make(chan error, 1)

	go func() {
		serveErr := httpServer.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrs <- serveErr
		}
	}()

	log.System("voice-service listening on %s", addr)

	select {
	case serveErr := <-serveErrs:
		return fmt.Errorf("server failed: %w", serveErr)
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining connections.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown failed: %w", shutdownErr)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
