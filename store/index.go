package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devinalusiana15/KMS-OOP/model"
)

// Tx exposes the index writes that must happen inside one document transaction.
type Tx struct {
	tx *sql.Tx
}

// tables returns the term and posting tables for a term kind. The names are
// constants, never user input.
func tables(kind model.TermKind) (termTable, postingTable string) {
	if kind == model.LemmaTerm {
		return "lemma_terms", "lemma_postings"
	}
	return "terms", "postings"
}

// ErrDuplicateName is returned by CreateDocument when the name is already taken.
var ErrDuplicateName = errors.New("document name already taken")

// CreateDocument inserts a document row.
func (t *Tx) CreateDocument(ctx context.Context, name, path string) (model.Document, error) {
	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO documents (name, path, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		name, path, formatTime(now))
	if err != nil {
		return model.Document{}, fmt.Errorf("inserting document %s: %w", name, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return model.Document{}, fmt.Errorf("inserting document %s: %w", name, ErrDuplicateName)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Document{}, fmt.Errorf("reading document id: %w", err)
	}
	return model.Document{ID: id, Name: name, Path: path, CreatedAt: now}, nil
}

// CreateSentence inserts a sentence unit.
func (t *Tx) CreateSentence(ctx context.Context, documentID int64, text string, position int) (model.SentenceUnit, error) {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO sentences (document_id, text, position) VALUES (?, ?, ?)",
		documentID, text, position)
	if err != nil {
		return model.SentenceUnit{}, fmt.Errorf("inserting sentence %d of document %d: %w", position, documentID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SentenceUnit{}, fmt.Errorf("reading sentence id: %w", err)
	}
	return model.SentenceUnit{ID: id, DocumentID: documentID, Text: text, Position: position}, nil
}

// GetOrCreateTerm returns the id of term, inserting it first if needed.
func (t *Tx) GetOrCreateTerm(ctx context.Context, kind model.TermKind, term string) (int64, error) {
	termTable, _ := tables(kind)
	if _, err := t.tx.ExecContext(ctx,
		"INSERT INTO "+termTable+" (term) VALUES (?) ON CONFLICT(term) DO NOTHING", term); err != nil {
		return 0, fmt.Errorf("inserting %s %q: %w", kind, term, err)
	}

	var id int64
	if err := t.tx.QueryRowContext(ctx, "SELECT id FROM "+termTable+" WHERE term = ?", term).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading %s %q: %w", kind, term, err)
	}
	return id, nil
}

// CreatePosting links a term to a sentence for one occurrence.
func (t *Tx) CreatePosting(ctx context.Context, kind model.TermKind, termID, sentenceID int64) error {
	_, postingTable := tables(kind)
	if _, err := t.tx.ExecContext(ctx,
		"INSERT INTO "+postingTable+" (term_id, sentence_id) VALUES (?, ?)", termID, sentenceID); err != nil {
		return fmt.Errorf("inserting %s posting (%d, %d): %w", kind, termID, sentenceID, err)
	}
	return nil
}

// PostingHits returns every posting whose term exactly matches one of terms,
// resolved to its sentence and document, in posting insertion order.
func (s *Store) PostingHits(ctx context.Context, kind model.TermKind, terms []string) ([]model.PostingHit, error) {
	hits := make([]model.PostingHit, 0)
	if len(terms) == 0 {
		return hits, nil
	}

	termTable, postingTable := tables(kind)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(terms)), ",")
	query := `SELECT p.id, t.term, s.id, s.document_id, d.name, s.text
		FROM ` + postingTable + ` p
		JOIN ` + termTable + ` t ON t.id = p.term_id
		JOIN sentences s ON s.id = p.sentence_id
		JOIN documents d ON d.id = s.document_id
		WHERE t.term IN (` + placeholders + `)
		ORDER BY p.id`

	args := make([]any, len(terms))
	for i, term := range terms {
		args[i] = term
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s postings: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h model.PostingHit
		if err := rows.Scan(&h.PostingID, &h.Term, &h.SentenceID, &h.DocumentID, &h.DocumentName, &h.Text); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Terms returns every stored term string of a kind, sorted.
func (s *Store) Terms(ctx context.Context, kind model.TermKind) ([]string, error) {
	termTable, _ := tables(kind)
	rows, err := s.db.QueryContext(ctx, "SELECT term FROM "+termTable+" ORDER BY term")
	if err != nil {
		return nil, fmt.Errorf("listing %s strings: %w", kind, err)
	}
	defer rows.Close()

	terms := make([]string, 0)
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
