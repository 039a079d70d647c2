package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/voiceforge-labs/voiceforge-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// fragment, ledger, key-value and scheduler store interfaces through
// wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.voiceforge/data/voiceforge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".voiceforge", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "voiceforge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FragmentStore returns a FragmentStore interface backed by this store.
func (s *Store) FragmentStore() driven.FragmentStore {
	return &fragmentStore{store: s}
}

// IngestLedger returns the ledger of processed knowledge files.
func (s *Store) IngestLedger() driven.ProcessedLedger {
	return &ledgerStore{store: s, table: "ingest_ledger"}
}

// TranscriptLedger returns the ledger of processed transcript files.
func (s *Store) TranscriptLedger() driven.ProcessedLedger {
	return &ledgerStore{store: s, table: "transcript_ledger"}
}

// KVStore returns a KVStore interface backed by this store.
func (s *Store) KVStore() driven.KVStore {
	return &kvStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Fragment Store ====================

// fragmentStore implements driven.FragmentStore.
type fragmentStore struct {
	store *Store
}

var _ driven.FragmentStore = (*fragmentStore)(nil)

// SaveFragments stores a batch of fragments in a single transaction, so a
// crash mid-ingestion never leaves a partially written batch behind.
func (s *fragmentStore) SaveFragments(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (id, content, source_uri, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			source_uri = excluded.source_uri
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, fragment := range fragments {
		createdAt := fragment.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, fragment.ID, fragment.Content,
			fragment.SourceURI, createdAt); err != nil {
			return fmt.Errorf("saving fragment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetFragment retrieves a fragment by ID.
func (s *fragmentStore) GetFragment(ctx context.Context, id string) (*domain.Fragment, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, content, source_uri, created_at
		FROM fragments WHERE id = ?
	`, id)

	var fragment domain.Fragment
	var createdAt sql.NullTime
	if err := row.Scan(&fragment.ID, &fragment.Content, &fragment.SourceURI, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning fragment: %w", err)
	}
	if createdAt.Valid {
		fragment.CreatedAt = createdAt.Time
	}

	return &fragment, nil
}

// CountFragments returns the number of stored fragments.
func (s *fragmentStore) CountFragments(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return count, nil
}

// ==================== Ledger Store ====================

// ledgerStore implements driven.ProcessedLedger over a named table.
// The ingest and transcript pipelines each get their own table so that
// clearing one never touches the other.
type ledgerStore struct {
	store *Store
	table string
}

var _ driven.ProcessedLedger = (*ledgerStore)(nil)

// Contains reports whether a URI has already been processed.
func (l *ledgerStore) Contains(ctx context.Context, uri string) (bool, error) {
	var count int
	err := l.store.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE uri = ?", l.table), uri).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking ledger: %w", err)
	}
	return count > 0, nil
}

// Add records URIs as processed. Recording the same URI twice is harmless.
func (l *ledgerStore) Add(ctx context.Context, uris ...string) error {
	if len(uris) == 0 {
		return nil
	}

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (uri, processed_at) VALUES (?, ?)
		ON CONFLICT(uri) DO NOTHING
	`, l.table))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, uri := range uris {
		if _, err := stmt.ExecContext(ctx, uri, now); err != nil {
			return fmt.Errorf("adding to ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all processed URIs in insertion order.
func (l *ledgerStore) List(ctx context.Context) ([]string, error) {
	rows, err := l.store.db.QueryContext(ctx,
		fmt.Sprintf("SELECT uri FROM %s ORDER BY rowid", l.table))
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var uris []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		uris = append(uris, uri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger: %w", err)
	}

	return uris, nil
}

// ==================== KV Store ====================

// kvStore implements driven.KVStore.
type kvStore struct {
	store *Store
}

var _ driven.KVStore = (*kvStore)(nil)

// Set stores or updates a key.
func (s *kvStore) Set(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting key %s: %w", key, err)
	}
	return nil
}

// Get retrieves a key's value.
func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("getting key %s: %w", key, err)
	}
	return value, nil
}
