// Package speakers manages the directory of reference voice samples. A
// speaker is identified by the stem of its reference file; there is no
// metadata beyond presence in the directory.
package speakers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/voice-service/internal/core"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

const referenceExt = ".wav"

// Static errors.
var (
	// ErrInvalidExtension indicates an upload with a file type outside the
	// accepted set.
	ErrInvalidExtension = fmt.Errorf(
		"%w: only .wav, .mp3, .m4a and .flac files are accepted", core.ErrInvalidInput)
	// ErrEmptyFilename indicates an upload whose name sanitizes to nothing.
	ErrEmptyFilename = fmt.Errorf("%w: filename cannot be empty", core.ErrInvalidInput)
)

// allowedUploadExts is the extension whitelist for uploaded references.
var allowedUploadExts = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".flac": {},
}

// Store enumerates and persists speaker reference files under a single
// directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	mkdirErr := os.MkdirAll(dir, dirPermissions)
	if mkdirErr != nil {
		return nil, fmt.Errorf("failed to create speakers directory %s: %w", dir, mkdirErr)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the ids of all usable speakers, derived from the stems of the
// .wav files in the store. The order carries no meaning.
func (s *Store) List() ([]string, error) {
	entries, readErr := os.ReadDir(s.dir)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read speakers directory %s: %w", s.dir, readErr)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), referenceExt) {
			ids = append(ids, strings.TrimSuffix(name, filepath.Ext(name)))
		}
	}

	return ids, nil
}

// Resolve returns the path of the reference file for the given speaker id.
// Unknown speakers yield core.ErrNotFound.
func (s *Store) Resolve(id string) (string, error) {
	// The id is client input; collapse it to a bare name so it cannot
	// address files outside the store.
	path := filepath.Join(s.dir, filepath.Base(id)+referenceExt)

	_, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return "", fmt.Errorf("speaker %q %w", id, core.ErrNotFound)
		}

		return "", fmt.Errorf("failed to stat speaker reference %s: %w", path, statErr)
	}

	return path, nil
}

// Save stores an uploaded reference file after validating its extension and
// sanitizing its name. It returns the derived speaker id and the stored
// filename.
func (s *Store) Save(filename string, src io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	_, extOK := allowedUploadExts[ext]
	if !extOK {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}

	safeName := SanitizeFilename(filename)
	if safeName == "" || strings.Trim(safeName, "._-") == "" {
		return "", "", ErrEmptyFilename
	}

	destPath := filepath.Join(s.dir, safeName)

	dest, createErr := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if createErr != nil {
		return "", "", fmt.Errorf("failed to create speaker file %s: %w", destPath, createErr)
	}

	_, copyErr := io.Copy(dest, src)
	closeErr := dest.Close()

	if copyErr != nil {
		return "", "", fmt.Errorf("failed to write speaker file %s: %w", destPath, copyErr)
	}

	if closeErr != nil {
		return "", "", fmt.Errorf("failed to close speaker file %s: %w", destPath, closeErr)
	}

	speakerID := strings.TrimSuffix(safeName, filepath.Ext(safeName))

	return speakerID, safeName, nil
}

// SanitizeFilename reduces a client-supplied filename to the characters safe
// for storage: letters, digits, dot, underscore and hyphen. Path separators
// are dropped entirely, which defeats directory traversal.
func SanitizeFilename(filename string) string {
	var builder strings.Builder

	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
