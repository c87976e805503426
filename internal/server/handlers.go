package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/book-expert/voice-service/internal/core"
)

// Content types.
const (
	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"
	contentTypeMP3  = "audio/mpeg"
)

const headerContentType = "Content-Type"

// Client-facing messages. Internal failure detail stays in the server logs.
const (
	msgInternalError      = "internal generation error"
	msgSpeakerListFailure = "failed to list speakers"
	msgUploadFailure      = "failed to store speaker file"
)

const maxUploadMemory = 32 << 20 // 32 MiB before multipart spills to disk

// ttsRequest is the POST /tts payload.
type ttsRequest struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker"`
	Language string `json:"language"`
	Format   string `json:"format"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse is the GET /health payload.
type healthResponse struct {
	Status string `json:"status"`
	Device string `json:"device"`
}

// speakersResponse is the GET /speakers payload.
type speakersResponse struct {
	Speakers []string `json:"speakers"`
	Count    int      `json:"count"`
}

// uploadResponse is the POST /upload-speaker payload.
type uploadResponse struct {
	Status   string `json:"status"`
	Speaker  string `json:"speaker"`
	Filename string `json:"filename"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "online",
		Device: s.engine.Device(),
	})
}

func (s *Server) handleSpeakers(w http.ResponseWriter, _ *http.Request) {
	ids, listErr := s.engine.ListSpeakers()
	if listErr != nil {
		s.log.Error("Speaker listing failed: %v", listErr)
		s.writeError(w, http.StatusInternalServerError, msgSpeakerListFailure)

		return
	}

	s.writeJSON(w, http.StatusOK, speakersResponse{
		Speakers: ids,
		Count:    len(ids),
	})
}

// handleTTS drives a request through the full lifecycle: validate, check the
// speaker, synthesize, optionally convert, respond, then schedule exactly
// one retention sweep.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest

	decodeErr := json.NewDecoder(r.Body).Decode(&req)
	if decodeErr != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+decodeErr.Error())

		return
	}

	job, buildErr := s.buildJob(req)
	if buildErr != nil {
		s.writeError(w, http.StatusBadRequest, buildErr.Error())

		return
	}

	artifactPath, synthErr := s.engine.Synthesize(r.Context(), job.Text, job.Speaker, job.Language)
	if synthErr != nil {
		s.respondSynthesisError(w, job.Speaker, synthErr)

		return
	}

	mediaType := contentTypeWAV

	if job.Format == core.FormatMP3 {
		mp3Path, convertErr := s.converter.ToMP3(r.Context(), artifactPath)
		if convertErr != nil {
			s.log.Error("Conversion failed for %s: %v", artifactPath, convertErr)
			s.writeError(w, http.StatusInternalServerError, msgInternalError)

			return
		}

		artifactPath = mp3Path
		mediaType = contentTypeMP3
	}

	if s.announcer != nil {
		s.announcer.ArtifactCreatedAsync(artifactPath)
	}

	defer s.scheduleSweep()

	filename := filepath.Base(artifactPath)
	w.Header().Set(headerContentType, mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, artifactPath)
}

func (s *Server) handleUploadSpeaker(w http.ResponseWriter, r *http.Request) {
	parseErr := r.ParseMultipartForm(maxUploadMemory)
	if parseErr != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+parseErr.Error())

		return
	}

	file, header, formErr := r.FormFile("file")
	if formErr != nil {
		s.writeError(w, http.StatusBadRequest, "missing form file 'file'")

		return
	}

	defer func() {
		// Read-only temp handle; nothing actionable on close failure.
		_ = file.Close()
	}()

	speakerID, storedName, saveErr := s.saver.Save(header.Filename, file)
	if saveErr != nil {
		if errors.Is(saveErr, core.ErrInvalidInput) {
			s.writeError(w, http.StatusBadRequest, saveErr.Error())

			return
		}

		s.log.Error("Speaker upload failed for %q: %v", header.Filename, saveErr)
		s.writeError(w, http.StatusInternalServerError, msgUploadFailure)

		return
	}

	s.log.Info("Stored speaker %q as %s", speakerID, storedName)

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Status:   "success",
		Speaker:  speakerID,
		Filename: storedName,
	})
}

// buildJob parses and validates the raw request into a Job.
func (s *Server) buildJob(req ttsRequest) (core.Job, error) {
	language, langErr := core.ParseLanguage(req.Language)
	if langErr != nil {
		return core.Job{}, langErr
	}

	format, formatErr := core.ParseFormat(req.Format)
	if formatErr != nil {
		return core.Job{}, formatErr
	}

	job := core.Job{
		Text:     req.Text,
		Speaker:  req.Speaker,
		Language: language,
		Format:   format,
	}

	validateErr := job.Validate()
	if validateErr != nil {
		return core.Job{}, validateErr
	}

	return job, nil
}

// respondSynthesisError maps engine failures onto the error taxonomy:
// invalid input 400, unknown speaker 404, everything else a generic 500
// whose detail is only logged.
func (s *Server) respondSynthesisError(w http.ResponseWriter, speaker string, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.writeError(w, http.StatusNotFound,
			fmt.Sprintf("speaker %q not found", speaker))
	case errors.Is(err, core.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("Synthesis failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// scheduleSweep fires one best-effort retention sweep in the background.
func (s *Server) scheduleSweep() {
	go func() {
		_, sweepErr := s.sweeper.Sweep(s.maxAge)
		if sweepErr != nil {
			s.log.Warn("Retention sweep failed: %v", sweepErr)
		}
	}()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)

	encodeErr := json.NewEncoder(w).Encode(payload)
	if encodeErr != nil {
		s.log.Error("Failed to encode response: %v", encodeErr)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}
