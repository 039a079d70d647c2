// Package file provides a file-based ArtifactStore. The conversation
// runtime reads the artifact files directly from disk, so every write goes
// through a temp file and rename to keep readers from ever seeing a partial
// artifact.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// Artifact file names within the artifact directory.
const (
	promptFile       = "current_prompt.md"
	firstMessageFile = "first_message.txt"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Store persists the current agent configuration as files.
type Store struct {
	dir string
}

// NewStore creates an artifact store rooted at dir.
// If dir is empty, defaults to ~/.voiceforge/artifacts.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".voiceforge", "artifacts")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// CurrentPrompt returns the current agent prompt.
func (s *Store) CurrentPrompt(ctx context.Context) (string, error) {
	return s.read(ctx, promptFile)
}

// SavePrompt overwrites the current agent prompt.
func (s *Store) SavePrompt(ctx context.Context, content string) error {
	return s.write(ctx, promptFile, content)
}

// CurrentFirstMessage returns the current opening message.
func (s *Store) CurrentFirstMessage(ctx context.Context) (string, error) {
	return s.read(ctx, firstMessageFile)
}

// SaveFirstMessage overwrites the current opening message.
func (s *Store) SaveFirstMessage(ctx context.Context, content string) error {
	return s.write(ctx, firstMessageFile, content)
}

func (s *Store) read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return "", fmt.Errorf("reading artifact %s: %w", name, err)
	}
	return string(content), nil
}

// write replaces an artifact atomically. The temp file lives in the same
// directory so the rename never crosses a filesystem boundary.
func (s *Store) write(ctx context.Context, name, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp artifact: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing artifact %s: %w", name, err)
	}
	return nil
}
