// Package core defines the shared types and contracts for the voice service:
// the closed language and format sets, synthesis job validation, and the
// interfaces implemented by the renderer and the artifact object store.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text length bounds for a synthesis job, in characters.
const (
	MinTextLength = 2
	MaxTextLength = 2000
)

// Static errors.
var (
	// ErrInvalidInput classifies client-side validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound classifies lookups of speakers or files that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrTextLength indicates the text is outside the allowed length bounds.
	ErrTextLength = fmt.Errorf("%w: text must be between 2 and 2000 characters", ErrInvalidInput)
	// ErrTextBlank indicates the text contains only whitespace.
	ErrTextBlank = fmt.Errorf("%w: text cannot be blank", ErrInvalidInput)
	// ErrSpeakerEmpty indicates no speaker id was provided.
	ErrSpeakerEmpty = fmt.Errorf("%w: speaker cannot be empty", ErrInvalidInput)
	// ErrUnsupportedLanguage indicates a language code outside the supported set.
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrInvalidInput)
	// ErrUnsupportedFormat indicates an output format outside the supported set.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrInvalidInput)
)

// Language is a supported synthesis language code.
type Language string

// Supported language codes. The set mirrors what the underlying multilingual
// model accepts.
const (
	LanguageEN Language = "en"
	LanguageES Language = "es"
	LanguageFR Language = "fr"
	LanguageDE Language = "de"
	LanguageIT Language = "it"
	LanguagePT Language = "pt"
	LanguagePL Language = "pl"
	LanguageTR Language = "tr"
	LanguageRU Language = "ru"
	LanguageNL Language = "nl"
	LanguageCS Language = "cs"
	LanguageAR Language = "ar"
	LanguageZH Language = "zh-cn"
	LanguageJA Language = "ja"
	LanguageHU Language = "hu"
	LanguageKO Language = "ko"
	LanguageHI Language = "hi"
	LanguageUR Language = "ur"
)

// supportedLanguages is the closed membership set for ParseLanguage.
var supportedLanguages = map[Language]struct{}{
	LanguageEN: {}, LanguageES: {}, LanguageFR: {}, LanguageDE: {},
	LanguageIT: {}, LanguagePT: {}, LanguagePL: {}, LanguageTR: {},
	LanguageRU: {}, LanguageNL: {}, LanguageCS: {}, LanguageAR: {},
	LanguageZH: {}, LanguageJA: {}, LanguageHU: {}, LanguageKO: {},
	LanguageHI: {}, LanguageUR: {},
}

// ParseLanguage validates a raw language code against the supported set.
// An empty code defaults to English.
func ParseLanguage(raw string) (Language, error) {
	if raw == "" {
		return LanguageEN, nil
	}

	lang := Language(strings.ToLower(raw))

	_, ok := supportedLanguages[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
	}

	return lang, nil
}

// Format is a supported output audio format.
type Format string

// Supported output formats.
const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// ParseFormat validates a raw format name. An empty name defaults to WAV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(raw)) {
	case FormatWAV, "":
		return FormatWAV, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Job describes a single synthesis request. Jobs are ephemeral: nothing about
// them persists beyond the call that carries them.
type Job struct {
	Text     string
	Speaker  string
	Language Language
	Format   Format
}

// Validate checks the job fields against the boundary rules. Speaker
// existence is checked later by the engine against the speaker store.
func (j Job) Validate() error {
	length := utf8.RuneCountInString(j.Text)
	if length < MinTextLength || length > MaxTextLength {
		return ErrTextLength
	}

	if strings.TrimSpace(j.Text) == "" {
		return ErrTextBlank
	}

	if j.Speaker == "" {
		return ErrSpeakerEmpty
	}

	_, langOK := supportedLanguages[j.Language]
	if !langOK {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, j.Language)
	}

	if j.Format != FormatWAV && j.Format != FormatMP3 {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, j.Format)
	}

	return nil
}

// Synthesizer is the contract for the model renderer. Implementations are not
// required to be safe for concurrent Render calls; the engine serializes
// access.
type Synthesizer interface {
	// Load prepares the renderer for use. It is called once by the engine
	// before the first render and must be cheap when already loaded.
	Load(ctx context.Context) error

	// Device reports the compute device the renderer is bound to, for
	// example "cuda" or "cpu". Valid only after a successful Load.
	Device() string

	// Render synthesizes text conditioned on the reference WAV and writes
	// the result to outPath.
	Render(ctx context.Context, text, referenceWAV string, language Language, outPath string) error
}

// ObjectStore defines the interface for interacting with a key-value blob
// store used to mirror generated artifacts to the processing pipeline.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
