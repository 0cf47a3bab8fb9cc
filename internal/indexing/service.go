// Package indexing builds the term and lemma inverted indexes for a document.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
	"github.com/devinalusiana15/KMS-OOP/store"
)

// Service implements the index builder.
type Service struct {
	store      *store.Store
	lemmatizer services.Lemmatizer
	stopwords  *tokenizer.Stopwords
}

// Result summarizes what one IndexDocument call wrote.
type Result struct {
	Document      model.Document `json:"document"`
	Sentences     int            `json:"sentences"`
	Postings      int            `json:"postings"`
	LemmaPostings int            `json:"lemma_postings"`
}

// NewService creates a new indexing Service.
func NewService(st *store.Store, lemmatizer services.Lemmatizer, stopwords *tokenizer.Stopwords) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if lemmatizer == nil {
		return nil, fmt.Errorf("lemmatizer cannot be nil")
	}
	if stopwords == nil {
		return nil, fmt.Errorf("stopwords cannot be nil")
	}
	return &Service{store: st, lemmatizer: lemmatizer, stopwords: stopwords}, nil
}

// analyzedSentence holds everything needed to write one sentence unit.
type analyzedSentence struct {
	text   string
	terms  []string
	lemmas []string
}

// IndexDocument creates the document row, its sentence units and every
// term and lemma posting in a single transaction. Empty text yields a document
// with no sentences. Any failure leaves no rows behind.
func (s *Service) IndexDocument(ctx context.Context, name, path, text string) (Result, error) {
	sentences := tokenizer.SplitSentences(text)

	// Lemmatization happens before the transaction opens so no write lock is
	// held across external calls.
	analyzed := make([]analyzedSentence, 0, len(sentences))
	for _, sentence := range sentences {
		lemmas, err := s.lemmas(ctx, sentence)
		if err != nil {
			return Result{}, kmserrors.NewIngestionError(name, fmt.Errorf("lemmatizing sentence: %w", err))
		}
		analyzed = append(analyzed, analyzedSentence{
			text:   sentence,
			terms:  s.terms(sentence),
			lemmas: lemmas,
		})
	}

	var result Result
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		doc, err := tx.CreateDocument(ctx, name, path)
		if err != nil {
			return err
		}
		result = Result{Document: doc}

		termIDs := newTermCache(tx)
		for i, as := range analyzed {
			su, err := tx.CreateSentence(ctx, doc.ID, as.text, i+1)
			if err != nil {
				return err
			}
			for _, term := range as.terms {
				if err := termIDs.post(ctx, model.SurfaceTerm, term, su.ID); err != nil {
					return err
				}
			}
			for _, lemma := range as.lemmas {
				if err := termIDs.post(ctx, model.LemmaTerm, lemma, su.ID); err != nil {
					return err
				}
			}
			result.Sentences++
			result.Postings += len(as.terms)
			result.LemmaPostings += len(as.lemmas)
		}
		return nil
	})
	if errors.Is(err, store.ErrDuplicateName) {
		return Result{}, kmserrors.NewDocumentExistsError(name)
	}
	if err != nil {
		return Result{}, kmserrors.NewIngestionError(name, err)
	}

	log.Info().Str("document", name).Int64("document_id", result.Document.ID).
		Int("sentences", result.Sentences).Int("postings", result.Postings).
		Int("lemma_postings", result.LemmaPostings).Msg("indexed document")
	return result, nil
}

// terms returns the sentence's surface tokens with stopwords removed, one
// entry per occurrence.
func (s *Service) terms(sentence string) []string {
	tokens := tokenizer.WhitespaceTokens(sentence)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !s.stopwords.Contains(tok) {
			terms = append(terms, tok)
		}
	}
	return terms
}

// lemmas returns the sentence's lemmas with stopwords and punctuation removed,
// one entry per occurrence.
func (s *Service) lemmas(ctx context.Context, sentence string) ([]string, error) {
	tokens, err := s.lemmatizer.Lemmatize(ctx, sentence)
	if err != nil {
		return nil, err
	}
	lemmas := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsStop || tok.IsPunct {
			continue
		}
		lemma := strings.ToLower(strings.TrimSpace(tok.Lemma))
		if lemma == "" || s.stopwords.Contains(lemma) {
			continue
		}
		lemmas = append(lemmas, lemma)
	}
	return lemmas, nil
}

// termCache remembers term ids resolved within one transaction.
type termCache struct {
	tx  *store.Tx
	ids map[model.TermKind]map[string]int64
}

func newTermCache(tx *store.Tx) *termCache {
	return &termCache{
		tx: tx,
		ids: map[model.TermKind]map[string]int64{
			model.SurfaceTerm: {},
			model.LemmaTerm:   {},
		},
	}
}

// post gets or creates the term and writes exactly one posting for this occurrence.
func (c *termCache) post(ctx context.Context, kind model.TermKind, term string, sentenceID int64) error {
	id, ok := c.ids[kind][term]
	if !ok {
		var err error
		id, err = c.tx.GetOrCreateTerm(ctx, kind, term)
		if err != nil {
			return err
		}
		c.ids[kind][term] = id
	}
	return c.tx.CreatePosting(ctx, kind, id, sentenceID)
}
