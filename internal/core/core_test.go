// Package core_test tests the shared types of the voice service.
package core_test

import (
	"strings"
	"testing"

	"github.com/book-expert/voice-service/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	supported := []string{
		"en", "es", "fr", "de", "it", "pt", "pl", "tr", "ru",
		"nl", "cs", "ar", "zh-cn", "ja", "hu", "ko", "hi", "ur",
	}

	for _, code := range supported {
		lang, err := core.ParseLanguage(code)
		require.NoError(t, err, "language %q should parse", code)
		assert.Equal(t, core.Language(code), lang)
	}

	lang, err := core.ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, core.LanguageEN, lang, "empty code should default to English")

	lang, err = core.ParseLanguage("ZH-CN")
	require.NoError(t, err)
	assert.Equal(t, core.LanguageZH, lang, "codes should be case-insensitive")

	_, err = core.ParseLanguage("klingon")
	require.ErrorIs(t, err, core.ErrUnsupportedLanguage)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	format, err := core.ParseFormat("wav")
	require.NoError(t, err)
	assert.Equal(t, core.FormatWAV, format)

	format, err = core.ParseFormat("MP3")
	require.NoError(t, err)
	assert.Equal(t, core.FormatMP3, format)

	format, err = core.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, core.FormatWAV, format, "empty format should default to wav")

	_, err = core.ParseFormat("ogg")
	require.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestJobValidate(t *testing.T) {
	t.Parallel()

	validJob := core.Job{
		Text:     "Hello world",
		Speaker:  "alice",
		Language: core.LanguageEN,
		Format:   core.FormatWAV,
	}

	testCases := []struct {
		name    string
		mutate  func(j core.Job) core.Job
		wantErr error
	}{
		{
			name:    "valid job",
			mutate:  func(j core.Job) core.Job { return j },
			wantErr: nil,
		},
		{
			name:    "text too short",
			mutate:  func(j core.Job) core.Job { j.Text = "a"; return j },
			wantErr: core.ErrTextLength,
		},
		{
			name: "text too long",
			mutate: func(j core.Job) core.Job {
				j.Text = strings.Repeat("a", core.MaxTextLength+1)

				return j
			},
			wantErr: core.ErrTextLength,
		},
		{
			name:    "text at upper bound",
			mutate:  func(j core.Job) core.Job { j.Text = strings.Repeat("a", core.MaxTextLength); return j },
			wantErr: nil,
		},
		{
			name:    "whitespace only text",
			mutate:  func(j core.Job) core.Job { j.Text = "   "; return j },
			wantErr: core.ErrTextBlank,
		},
		{
			name:    "empty speaker",
			mutate:  func(j core.Job) core.Job { j.Speaker = ""; return j },
			wantErr: core.ErrSpeakerEmpty,
		},
		{
			name:    "unknown language",
			mutate:  func(j core.Job) core.Job { j.Language = "xx"; return j },
			wantErr: core.ErrUnsupportedLanguage,
		},
		{
			name:    "unknown format",
			mutate:  func(j core.Job) core.Job { j.Format = "ogg"; return j },
			wantErr: core.ErrUnsupportedFormat,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.mutate(validJob).Validate()
			if testCase.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, testCase.wantErr)
			require.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestJobValidateCountsRunes(t *testing.T) {
	t.Parallel()

	// Two multi-byte characters are two characters, not six bytes.
	job := core.Job{
		Text:     "你好",
		Speaker:  "alice",
		Language: core.LanguageZH,
		Format:   core.FormatWAV,
	}

	require.NoError(t, job.Validate())
}
