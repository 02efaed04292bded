package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/tagvault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
	"github.com/custodia-labs/tagvault/internal/vector"
)

// DatabaseFile is the file name of the vector database inside the data directory.
const DatabaseFile = "vectors.db"

const chunkColumns = "id, content, embedding, source, tag, position, title, page"

// Store is a SQLite-based vector store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.tagvault/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tagvault", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

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

// ==================== Reads ====================

// GetAll returns every chunk ordered by ID.
func (s *Store) GetAll(ctx context.Context) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, "SELECT "+chunkColumns+" FROM chunks ORDER BY id")
}

// GetByTag returns the chunks whose tag equals tag exactly.
func (s *Store) GetByTag(ctx context.Context, tag string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE tag = ? ORDER BY id", tag)
}

// GetBySource returns the chunks of one source ordered by position.
func (s *Store) GetBySource(ctx context.Context, sourceKey string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE source = ? ORDER BY position, id", sourceKey)
}

// Get retrieves a chunk by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("scanning chunk", err)
	}
	return chunk, nil
}

// Search ranks the candidate chunks against query. The tag restriction is
// applied in SQL before any chunk is scored.
func (s *Store) Search(ctx context.Context, query []float32, k int, tag string) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	var candidates []domain.Chunk
	var err error
	if tag == "" {
		candidates, err = s.GetAll(ctx)
	} else {
		candidates, err = s.GetByTag(ctx, tag)
	}
	if err != nil {
		return nil, err
	}

	return vector.Rank(candidates, query, k), nil
}

// DistinctValues returns the sorted distinct tags or source keys.
func (s *Store) DistinctValues(ctx context.Context, field string) ([]string, error) {
	var column string
	switch field {
	case driven.FieldTag:
		column = "tag"
	case driven.FieldSource:
		column = "source"
	default:
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT "+column+" FROM chunks ORDER BY "+column)
	if err != nil {
		return nil, unavailable("querying distinct values", err)
	}
	defer rows.Close()

	var values []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, unavailable("scanning distinct value", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating distinct values", err)
	}

	return values, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, unavailable("counting chunks", err)
	}
	return n, nil
}

// Page returns up to limit chunks ordered by ID, skipping offset.
func (s *Store) Page(ctx context.Context, offset, limit int) ([]domain.Chunk, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset %d limit %d", domain.ErrInvalidInput, offset, limit)
	}
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks ORDER BY id LIMIT ? OFFSET ?", limit, offset)
}

// ==================== Writes ====================

// Upsert inserts or replaces chunks by ID.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

// ReplaceSource deletes every chunk of sourceKey and inserts chunks in one
// transaction. Every chunk must carry sourceKey.
func (s *Store) ReplaceSource(ctx context.Context, sourceKey string, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.SourceKey != sourceKey {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, c.ID, c.SourceKey, sourceKey)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", sourceKey); err != nil {
		return unavailable("deleting source chunks", err)
	}

	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

// UpdateContent replaces the text and embedding of one chunk.
func (s *Store) UpdateContent(ctx context.Context, id, content string, embedding []float32) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chunks SET content = ?, embedding = ?, updated_at = ?
		WHERE id = ?
	`, content, float32SliceToBytes(embedding), time.Now().UTC(), id)
	if err != nil {
		return unavailable("updating chunk", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("reading affected rows", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the given chunks and returns how many existed.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM chunks WHERE id = ?")
	if err != nil {
		return 0, unavailable("preparing statement", err)
	}
	defer stmt.Close()

	removed := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, unavailable("deleting chunk", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, unavailable("reading affected rows", err)
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, unavailable("committing transaction", err)
	}
	return removed, nil
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("querying chunks", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, unavailable("scanning chunk", err)
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating chunks", err)
	}

	return chunks, nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, embedding, source, tag, position, title, page, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			source = excluded.source,
			tag = excluded.tag,
			position = excluded.position,
			title = excluded.title,
			page = excluded.page,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return unavailable("preparing statement", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Content,
			float32SliceToBytes(chunk.Embedding), chunk.SourceKey, chunk.Tag,
			chunk.Position, chunk.Title, chunk.Page, now); err != nil {
			return unavailable("saving chunk", err)
		}
	}
	return nil
}

// scanChunk scans a single chunk row.
func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding []byte
	if err := row.Scan(&chunk.ID, &chunk.Content, &embedding,
		&chunk.SourceKey, &chunk.Tag, &chunk.Position, &chunk.Title, &chunk.Page); err != nil {
		return nil, err
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	return &chunk, nil
}

// unavailable marks a backend failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
