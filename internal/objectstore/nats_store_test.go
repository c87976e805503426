// Package objectstore_test tests the NATS artifact store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/book-expert/voice-service/internal/objectstore"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// startTestServer starts an in-memory NATS server for testing purposes.
func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func newTestStore(t *testing.T) *objectstore.NatsObjectStore {
	t.Helper()

	natsServer, natsConnection := startTestServer(t)
	t.Cleanup(func() {
		natsConnection.Close()
		natsServer.Shutdown()
	})

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "test-artifacts")
	require.NoError(t, err)

	return store
}

func TestUploadDownload(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	uploadData := []byte("generated audio bytes")

	err := store.Upload(ctx, "artifact.wav", uploadData)
	require.NoError(t, err)

	downloadData, err := store.Download(ctx, "artifact.wav")
	require.NoError(t, err)
	require.Equal(t, uploadData, downloadData)
}

func TestDownloadMissingKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Download(context.Background(), "missing-key")
	require.Error(t, err)
}
