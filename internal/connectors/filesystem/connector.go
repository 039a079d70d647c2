// Package filesystem provides a connector that reads documents from a local
// directory. It is the only document source in the pipeline: knowledge files
// and call transcripts both arrive as files dropped into watched folders.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// mimeByExtension maps the extensions the pipeline accepts to MIME types.
// Anything else in the directory is ignored rather than rejected, so users
// can keep notes or originals alongside the ingestible files.
var mimeByExtension = map[string]string{
	".txt": "text/plain",
	".pdf": "application/pdf",
}

// Connector reads documents from a single root directory, non-recursively.
// Flat layout keeps the watched folder predictable: a file is either in the
// folder and processed, or it is not.
type Connector struct {
	rootPath   string
	extensions map[string]string
}

// New creates a connector over rootPath accepting the default extensions.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath, extensions: mimeByExtension}
}

// NewWithExtensions creates a connector accepting only the given extensions
// (with leading dot, e.g. ".txt"). Used for transcript folders, which hold
// plain text only.
func NewWithExtensions(rootPath string, extensions ...string) *Connector {
	accepted := make(map[string]string, len(extensions))
	for _, ext := range extensions {
		if mime, ok := mimeByExtension[ext]; ok {
			accepted[ext] = mime
		}
	}
	return &Connector{rootPath: rootPath, extensions: accepted}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// RootPath returns the directory this connector reads from.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", c.rootPath)
	}
	return nil
}

// List returns every acceptable document in the root directory, sorted by
// URI. Content is not loaded; callers Read the documents they decide to
// process. Hidden files and subdirectories are skipped. A missing root
// directory is not an error: users create the folder when they first have
// content, so an absent folder simply means nothing to process yet.
func (c *Connector) List(ctx context.Context) ([]domain.RawDocument, error) {
	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", c.rootPath, err)
	}

	var docs []domain.RawDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		mime, ok := c.extensions[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(c.rootPath, entry.Name())
		docs = append(docs, domain.RawDocument{
			URI:      path,
			MIMEType: mime,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs, nil
}

// Read returns a single document by its URI.
func (c *Connector) Read(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mime, ok := c.extensions[strings.ToLower(filepath.Ext(uri))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, uri)
	}

	content, err := os.ReadFile(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}

	return &domain.RawDocument{
		URI:      uri,
		MIMEType: mime,
		Content:  content,
	}, nil
}
