// Package sqlite provides a persistent vector index backed by SQLite.
// Vectors live in a single table as float32 BLOBs together with citation
// metadata; search runs over an in-memory mirror so queries never touch
// the database. Ingestion need not be repeated across process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Metric is the persisted distance metric identifier. Only cosine
// similarity over normalised vectors is supported.
const Metric = "cosine"

// Index is a durable vector index. All mutations write through to SQLite
// before updating the in-memory mirror, so a crash between the two leaves
// the durable state ahead of the mirror, never behind.
type Index struct {
	db   *sql.DB
	path string
	mem  *memory.Index
}

// Open opens or creates a vector index at dataDir/vectors.db with the
// given dimension. A stored dimension or metric that differs from the
// configuration fails with domain.ErrCorruptIndex: the index must be
// rebuilt from the corpus, not silently reinterpreted.
func Open(dataDir string, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: index dimensions must be positive, got %d",
			domain.ErrInvalidConfig, dimensions)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	idx := &Index{db: db, path: dbPath}

	if err := idx.init(dimensions); err != nil {
		db.Close()
		return nil, err
	}

	if err := idx.load(dimensions); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

func (idx *Index) init(dimensions int) error {
	const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vectors (
	chunk_id     TEXT PRIMARY KEY,
	vector       BLOB NOT NULL,
	document_id  TEXT NOT NULL,
	source       TEXT NOT NULL,
	page         INTEGER NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset   INTEGER NOT NULL
);`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}

	stored, err := idx.metaValue("dimension")
	if err != nil {
		return err
	}

	if stored == "" {
		// Fresh index: record dimension and metric.
		for key, value := range map[string]string{
			"dimension": strconv.Itoa(dimensions),
			"metric":    Metric,
		} {
			if _, err := idx.db.Exec(
				`INSERT OR REPLACE INTO index_meta (key, value) VALUES (?, ?)`, key, value,
			); err != nil {
				return fmt.Errorf("writing index meta: %w", err)
			}
		}
		return nil
	}

	storedDim, err := strconv.Atoi(stored)
	if err != nil || storedDim != dimensions {
		return fmt.Errorf("%w: stored dimension %q does not match configured %d",
			domain.ErrCorruptIndex, stored, dimensions)
	}

	metric, err := idx.metaValue("metric")
	if err != nil {
		return err
	}
	if metric != Metric {
		return fmt.Errorf("%w: unsupported metric %q", domain.ErrCorruptIndex, metric)
	}

	return nil
}

func (idx *Index) metaValue(key string) (string, error) {
	var value string
	err := idx.db.QueryRow(`SELECT value FROM index_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading index meta %q: %w", key, err)
	}
	return value, nil
}

// load mirrors the persisted entries into memory, in rowid order so
// tie-breaking by insertion order survives a restart.
func (idx *Index) load(dimensions int) error {
	mem, err := memory.New(dimensions)
	if err != nil {
		return err
	}

	rows, err := idx.db.Query(
		`SELECT chunk_id, vector, document_id, source, page, start_offset, end_offset
		 FROM vectors ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("loading vectors: %w", err)
	}
	defer rows.Close()

	ctx := context.Background()
	for rows.Next() {
		var (
			entry domain.IndexEntry
			blob  []byte
		)
		if err := rows.Scan(&entry.ChunkID, &blob, &entry.Meta.DocumentID, &entry.Meta.Source,
			&entry.Meta.Page, &entry.Meta.StartOffset, &entry.Meta.EndOffset); err != nil {
			return fmt.Errorf("scanning vector row: %w", err)
		}

		if len(blob) != dimensions*4 {
			return fmt.Errorf("%w: chunk %s has a %d-byte vector, want %d",
				domain.ErrCorruptIndex, entry.ChunkID, len(blob), dimensions*4)
		}
		entry.Vector = bytesToFloat32Slice(blob)

		if err := mem.Insert(ctx, []domain.IndexEntry{entry}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading vectors: %w", err)
	}

	idx.mem = mem
	return nil
}

// Insert persists entries and updates the in-memory mirror. Idempotent per
// chunk ID. The whole batch is validated and written in one transaction.
func (idx *Index) Insert(ctx context.Context, entries []domain.IndexEntry) error {
	for _, e := range entries {
		if len(e.Vector) != idx.mem.Dimensions() {
			return fmt.Errorf("%w: chunk %s has dimension %d, index has %d",
				domain.ErrDimensionMismatch, e.ChunkID, len(e.Vector), idx.mem.Dimensions())
		}
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		normalised := memory.Normalise(e.Vector)
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vectors
			 (chunk_id, vector, document_id, source, page, start_offset, end_offset)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ChunkID, float32SliceToBytes(normalised), e.Meta.DocumentID, e.Meta.Source,
			e.Meta.Page, e.Meta.StartOffset, e.Meta.EndOffset,
		); err != nil {
			return fmt.Errorf("persist vector %s: %w", e.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	return idx.mem.Insert(ctx, entries)
}

// Remove deletes entries by chunk ID. Absent IDs are ignored.
func (idx *Index) Remove(ctx context.Context, chunkIDs []string) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	for _, id := range chunkIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE chunk_id = ?`, id); err != nil {
			return fmt.Errorf("delete vector %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}

	return idx.mem.Remove(ctx, chunkIDs)
}

// Search queries the in-memory mirror.
func (idx *Index) Search(ctx context.Context, query []float32, k int, minScore float64) ([]domain.RetrievalResult, error) {
	return idx.mem.Search(ctx, query, k, minScore)
}

// Meta returns the stored metadata for a chunk ID.
func (idx *Index) Meta(chunkID string) (domain.ChunkMeta, bool) {
	return idx.mem.Meta(chunkID)
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return idx.mem.Len()
}

// Dimensions returns the fixed vector dimension.
func (idx *Index) Dimensions() int {
	return idx.mem.Dimensions()
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Close closes the database. WAL checkpointing makes the on-disk state
// durable; there is no separate flush step.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes.
func float32SliceToBytes(floats []float32) []byte {
	data := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	return data
}

// bytesToFloat32Slice decodes little-endian float32 bytes into a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
