package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/model"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "kms.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kms.db")

	s1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()

	var version int
	require.NoError(t, s2.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	assert.Equal(t, path, s2.Path())
}

func TestInTx_CommitAndQuery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var doc model.Document
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		doc, err = tx.CreateDocument(ctx, "coffee.pdf", "uploaded_files/coffee.pdf")
		if err != nil {
			return err
		}
		su, err := tx.CreateSentence(ctx, doc.ID, "Arabica grows in Toraja", 1)
		if err != nil {
			return err
		}
		for _, token := range []string{"arabica", "grows", "toraja", "toraja"} {
			termID, err := tx.GetOrCreateTerm(ctx, model.SurfaceTerm, token)
			if err != nil {
				return err
			}
			if err := tx.CreatePosting(ctx, model.SurfaceTerm, termID, su.ID); err != nil {
				return err
			}
		}
		lemmaID, err := tx.GetOrCreateTerm(ctx, model.LemmaTerm, "grow")
		if err != nil {
			return err
		}
		return tx.CreatePosting(ctx, model.LemmaTerm, lemmaID, su.ID)
	})
	require.NoError(t, err)

	exists, err := s.DocumentExists(ctx, "coffee.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Documents: 1, Sentences: 1, Terms: 3, Postings: 4, LemmaTerms: 1, LemmaPostings: 1}, stats)

	hits, err := s.PostingHits(ctx, model.SurfaceTerm, []string{"toraja"})
	require.NoError(t, err)
	require.Len(t, hits, 2, "a repeated token keeps one posting per occurrence")
	assert.Equal(t, "Arabica grows in Toraja", hits[0].Text)
	assert.Equal(t, doc.ID, hits[0].DocumentID)
	assert.Equal(t, "coffee.pdf", hits[0].DocumentName)
	assert.Less(t, hits[0].PostingID, hits[1].PostingID)

	lemmaHits, err := s.PostingHits(ctx, model.LemmaTerm, []string{"grow"})
	require.NoError(t, err)
	assert.Len(t, lemmaHits, 1)

	terms, err := s.Terms(ctx, model.SurfaceTerm)
	require.NoError(t, err)
	assert.Equal(t, []string{"arabica", "grows", "toraja"}, terms)

	sentences, err := s.Sentences(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Equal(t, 1, sentences[0].Position)
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("lemmatizer failed")

	err := s.InTx(ctx, func(tx *Tx) error {
		doc, err := tx.CreateDocument(ctx, "coffee.pdf", "uploaded_files/coffee.pdf")
		if err != nil {
			return err
		}
		if _, err := tx.CreateSentence(ctx, doc.ID, "Arabica grows in Toraja", 1); err != nil {
			return err
		}
		if _, err := tx.GetOrCreateTerm(ctx, model.SurfaceTerm, "arabica"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestCreateDocument_DuplicateName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx *Tx) error {
		_, err := tx.CreateDocument(ctx, "coffee.pdf", "a")
		return err
	}))

	err := s.InTx(ctx, func(tx *Tx) error {
		_, err := tx.CreateDocument(ctx, "coffee.pdf", "b")
		return err
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGetOrCreateTerm_IsUniqueByString(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var first, second, lemma int64
	require.NoError(t, s.InTx(ctx, func(tx *Tx) error {
		var err error
		if first, err = tx.GetOrCreateTerm(ctx, model.SurfaceTerm, "coffee"); err != nil {
			return err
		}
		if second, err = tx.GetOrCreateTerm(ctx, model.SurfaceTerm, "coffee"); err != nil {
			return err
		}
		lemma, err = tx.GetOrCreateTerm(ctx, model.LemmaTerm, "coffee")
		return err
	}))

	assert.Equal(t, first, second)
	assert.NotZero(t, lemma)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terms)
	assert.Equal(t, 1, stats.LemmaTerms)
}

func TestGetDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.GetDocument(ctx, 99)
	assert.ErrorIs(t, err, kmserrors.ErrDocumentNotFound)

	var created model.Document
	require.NoError(t, s.InTx(ctx, func(tx *Tx) error {
		var err error
		created, err = tx.CreateDocument(ctx, "robusta.pdf", "uploaded_files/robusta.pdf")
		return err
	}))

	got, err := s.GetDocument(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "robusta.pdf", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestPostingHits_EmptyTerms(t *testing.T) {
	s := setupTestStore(t)

	hits, err := s.PostingHits(context.Background(), model.SurfaceTerm, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRefinements(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddRefinement(ctx, "Who roasts Gayo coffee", "no information found"))
	require.NoError(t, s.AddRefinement(ctx, "When was Kopi Luwak found", "no information found"))

	refinements, err := s.ListRefinements(ctx)
	require.NoError(t, err)
	require.Len(t, refinements, 2)
	assert.Equal(t, "Who roasts Gayo coffee", refinements[0].Question)
	assert.False(t, refinements[0].CreatedAt.IsZero())
}
