// Package store persists documents, the term and lemma inverted indexes and
// the refinement log in SQLite.
package store

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

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/store/migrations"
)

// Store is the SQLite-backed relational store.
type Store struct {
	db   *sql.DB
	path string
}

// Stats holds row counts for every table.
type Stats struct {
	Documents     int `json:"documents"`
	Sentences     int `json:"sentences"`
	Terms         int `json:"terms"`
	Postings      int `json:"postings"`
	LemmaTerms    int `json:"lemma_terms"`
	LemmaPostings int `json:"lemma_postings"`
	Refinements   int `json:"refinements"`
}

// NewStore opens (or creates) the database at dbPath and applies pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
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
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, formatTime(time.Now())); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// InTx runs fn inside a single transaction. Any error returned by fn rolls
// back every write made through the Tx.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DocumentExists reports whether a document with this file name was uploaded.
func (s *Store) DocumentExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", name, err)
	}
	return count > 0, nil
}

// GetDocument returns a document by id.
func (s *Store) GetDocument(ctx context.Context, id int64) (model.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, path, created_at FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return model.Document{}, kmserrors.NewDocumentNotFoundError(id)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("getting document %d: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all documents in upload order.
func (s *Store) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, path, created_at FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Sentences returns a document's sentence units ordered by position.
func (s *Store) Sentences(ctx context.Context, documentID int64) ([]model.SentenceUnit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, text, position FROM sentences WHERE document_id = ? ORDER BY position", documentID)
	if err != nil {
		return nil, fmt.Errorf("listing sentences for document %d: %w", documentID, err)
	}
	defer rows.Close()

	sentences := make([]model.SentenceUnit, 0)
	for rows.Next() {
		var su model.SentenceUnit
		if err := rows.Scan(&su.ID, &su.DocumentID, &su.Text, &su.Position); err != nil {
			return nil, fmt.Errorf("scanning sentence: %w", err)
		}
		sentences = append(sentences, su)
	}
	return sentences, rows.Err()
}

// Stats returns row counts for every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"documents", &st.Documents},
		{"sentences", &st.Sentences},
		{"terms", &st.Terms},
		{"postings", &st.Postings},
		{"lemma_terms", &st.LemmaTerms},
		{"lemma_postings", &st.LemmaPostings},
		{"refinements", &st.Refinements},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var doc model.Document
	var createdAt string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Path, &createdAt); err != nil {
		return model.Document{}, err
	}
	doc.CreatedAt = parseTime(createdAt)
	return doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
