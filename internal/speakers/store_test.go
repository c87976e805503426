// Package speakers_test tests the speaker reference store.
package speakers_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/speakers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*speakers.Store, string) {
	t.Helper()

	dir := t.TempDir()

	store, err := speakers.New(dir)
	require.NoError(t, err)

	return store, dir
}

func writeReference(t *testing.T, dir, name string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF fake audio"), 0o600)
	require.NoError(t, err)
}

func TestListReturnsWavStems(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	writeReference(t, dir, "alice.wav")
	writeReference(t, dir, "bob.wav")
	writeReference(t, dir, "notes.txt")

	ids, err := store.List()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)
}

func TestListEmptyStore(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)
	writeReference(t, dir, "alice.wav")

	path, err := store.Resolve("alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "alice.wav"), path)

	_, err = store.Resolve("ghost")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolveDoesNotEscapeStore(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Resolve("../../etc/passwd")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSave(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	id, stored, err := store.Save("carol.wav", strings.NewReader("reference audio"))
	require.NoError(t, err)
	assert.Equal(t, "carol", id)
	assert.Equal(t, "carol.wav", stored)

	data, err := os.ReadFile(filepath.Join(dir, stored))
	require.NoError(t, err)
	assert.Equal(t, "reference audio", string(data))
}

func TestSaveRejectsInvalidExtension(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, _, err := store.Save("malware.exe", strings.NewReader("x"))
	require.ErrorIs(t, err, speakers.ErrInvalidExtension)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSaveSanitizesTraversal(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	_, stored, err := store.Save("../../etc/passwd.wav", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NotContains(t, stored, "/")
	assert.NotContains(t, stored, "\\")

	// The file must land inside the store directory, nowhere else.
	_, statErr := os.Stat(filepath.Join(dir, stored))
	require.NoError(t, statErr)
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean name", in: "alice.wav", want: "alice.wav"},
		{name: "spaces and unicode", in: "my voice ♫.wav", want: "myvoice.wav"},
		{name: "traversal", in: "../../etc/passwd.wav", want: "....etcpasswd.wav"},
		{name: "windows separators", in: "..\\..\\voice.wav", want: "....voice.wav"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, speakers.SanitizeFilename(testCase.in))
		})
	}
}
