// Package server exposes the synthesis engine over HTTP: request
// validation, orchestration of the synthesis pipeline, and the mapping of
// internal failures to client-facing error codes.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
)

// HTTP server timeouts.
const (
	readTimeout  = 15 * time.Second
	writeTimeout = 10 * time.Minute // a render can legitimately run for minutes
	idleTimeout  = 60 * time.Second
)

const staticPrefix = "/static/"

// SynthesisEngine is the gateway's view of the engine.
// Implemented by *engine.Engine.
type SynthesisEngine interface {
	Device() string
	ListSpeakers() ([]string, error)
	Synthesize(ctx context.Context, text, speaker string, language core.Language) (string, error)
}

// ArtifactConverter re-encodes WAV artifacts to compressed formats.
// Implemented by *audio.Converter.
type ArtifactConverter interface {
	ToMP3(ctx context.Context, wavPath string) (string, error)
}

// RetentionSweeper removes artifacts past the retention threshold.
// Implemented by *retention.Sweeper.
type RetentionSweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// ArtifactAnnouncer mirrors artifacts into the pipeline. Implemented by
// *announce.Announcer; nil when NATS integration is disabled.
type ArtifactAnnouncer interface {
	ArtifactCreatedAsync(path string)
}

// SpeakerSaver persists uploaded reference files. Implemented by
// *speakers.Store.
type SpeakerSaver interface {
	Save(filename string, src io.Reader) (string, string, error)
}

// Server wires the gateway handlers to the engine and its collaborators.
type Server struct {
	engine    SynthesisEngine
	converter ArtifactConverter
	sweeper   RetentionSweeper
	announcer ArtifactAnnouncer
	saver     SpeakerSaver
	maxAge    time.Duration
	outputDir string
	log       *logger.Logger
}

// New creates a Server. announcer may be nil.
func New(
	eng SynthesisEngine,
	converter ArtifactConverter,
	sweeper RetentionSweeper,
	announcer ArtifactAnnouncer,
	saver SpeakerSaver,
	maxAge time.Duration,
	outputDir string,
	log *logger.Logger,
) *Server {
	return &Server{
		engine:    eng,
		converter: converter,
		sweeper:   sweeper,
		announcer: announcer,
		saver:     saver,
		maxAge:    maxAge,
		outputDir: outputDir,
		log:       log,
	}
}

// Handler builds the route table. Generated artifacts are also reachable
// directly under /static/ for in-browser playback without the download
// endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /speakers", s.handleSpeakers)
	mux.HandleFunc("POST /tts", s.handleTTS)
	mux.HandleFunc("POST /upload-speaker", s.handleUploadSpeaker)
	mux.Handle("GET "+staticPrefix,
		http.StripPrefix(staticPrefix, http.FileServer(http.Dir(s.outputDir))))

	return corsMiddleware(mux)
}

// HTTPServer wraps the handler in an http.Server with sane timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// corsMiddleware applies a permissive policy: the frontend is served from
// another origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
