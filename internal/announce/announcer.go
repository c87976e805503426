// Package announce mirrors generated artifacts into the pipeline's object
// store and publishes audio-created events over NATS. The announcer is
// strictly best-effort: a failed announcement is logged and never surfaces
// to the HTTP client that triggered the synthesis.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher is the subset of a NATS connection the announcer needs.
// Satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Announcer uploads finished artifacts and announces them on a subject.
type Announcer struct {
	store     core.ObjectStore
	publisher Publisher
	subject   string
	log       *logger.Logger
}

// New creates an Announcer publishing on the given subject.
func New(store core.ObjectStore, publisher Publisher, subject string, log *logger.Logger) *Announcer {
	return &Announcer{
		store:     store,
		publisher: publisher,
		subject:   subject,
		log:       log,
	}
}

// ArtifactCreated mirrors the artifact at path into the object store under
// its base name and publishes an AudioChunkCreatedEvent referencing the key.
func (a *Announcer) ArtifactCreated(ctx context.Context, path string) error {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, readErr)
	}

	key := filepath.Base(path)

	uploadErr := a.store.Upload(ctx, key, data)
	if uploadErr != nil {
		return fmt.Errorf("failed to mirror artifact '%s': %w", key, uploadErr)
	}

	event := &events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
		},
		AudioKey: key,
	}

	eventData, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal audio created event: %w", marshalErr)
	}

	publishErr := a.publisher.Publish(a.subject, eventData)
	if publishErr != nil {
		return fmt.Errorf("failed to publish audio created event: %w", publishErr)
	}

	a.log.Info("Announced artifact %s on subject %s", key, a.subject)

	return nil
}

// ArtifactCreatedAsync runs ArtifactCreated on its own goroutine, logging
// any failure. Used on the request path where announcement must not delay
// or fail the response.
func (a *Announcer) ArtifactCreatedAsync(path string) {
	go func() {
		announceErr := a.ArtifactCreated(context.Background(), path)
		if announceErr != nil {
			a.log.Error("Artifact announcement failed: %v", announceErr)
		}
	}()
}

// Connect dials NATS and prepares a JetStream context for the announcer's
// object store. Kept here so the composition root stays small.
func Connect(url string) (*nats.Conn, nats.JetStreamContext, error) {
	natsConnection, connectErr := nats.Connect(url)
	if connectErr != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, connectErr)
	}

	jetstreamContext, jetstreamErr := natsConnection.JetStream()
	if jetstreamErr != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", jetstreamErr)
	}

	return natsConnection, jetstreamContext, nil
}
