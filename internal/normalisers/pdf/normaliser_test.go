package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	require.Len(t, mimeTypes, 1)
	assert.Contains(t, mimeTypes, "application/pdf")
}

func TestNormalise(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts text via pdftotext", func(t *testing.T) {
		runner := &mockRunner{output: []byte("Extracted paragraph text.\n")}
		normaliser := NewWithRunner(runner)

		text, err := normaliser.Normalise(ctx, &domain.RawDocument{
			URI:      "/docs/manual.pdf",
			MIMEType: "application/pdf",
			Content:  []byte("%PDF-1.4 fake"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Extracted paragraph text.", text)
	})

	t.Run("page breaks become blank lines", func(t *testing.T) {
		runner := &mockRunner{output: []byte("Page one text.\n\fPage two text.\n\f")}
		normaliser := NewWithRunner(runner)

		text, err := normaliser.Normalise(ctx, &domain.RawDocument{
			URI:     "/docs/manual.pdf",
			Content: []byte("%PDF"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Page one text.\n\nPage two text.", text)
	})

	t.Run("empty extraction yields empty string", func(t *testing.T) {
		runner := &mockRunner{output: []byte("\f\f")}
		normaliser := NewWithRunner(runner)

		text, err := normaliser.Normalise(ctx, &domain.RawDocument{
			URI:     "/docs/scanned.pdf",
			Content: []byte("%PDF"),
		})
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("tool failure is surfaced with the filename", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("exit status 1")}
		normaliser := NewWithRunner(runner)

		_, err := normaliser.Normalise(ctx, &domain.RawDocument{
			URI:     "/docs/broken.pdf",
			Content: []byte("not a pdf"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.pdf")
	})

	t.Run("nil document is invalid input", func(t *testing.T) {
		_, err := NewWithRunner(&mockRunner{}).Normalise(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single page",
			input:    "Only page.\n",
			expected: "Only page.",
		},
		{
			name:     "multiple pages",
			input:    "First.\n\fSecond.\n\fThird.\n\f",
			expected: "First.\n\nSecond.\n\nThird.",
		},
		{
			name:     "blank pages are dropped",
			input:    "First.\n\f   \n\fThird.\n",
			expected: "First.\n\nThird.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, joinPages(tc.input))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
