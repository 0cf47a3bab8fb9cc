// Package search implements term-level and lemma-level sentence retrieval.
package search

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
	"github.com/devinalusiana15/KMS-OOP/store"
)

// Service implements the retrieval logic over the term and lemma indexes.
// It fulfills the services.Retriever interface.
type Service struct {
	store *store.Store
}

// NewService creates a new search Service.
func NewService(st *store.Store) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Service{store: st}, nil
}

// SearchTerms matches keywords and nouns exactly against the surface index.
func (s *Service) SearchTerms(ctx context.Context, keywords, nouns []string) ([]services.Candidate, error) {
	return s.search(ctx, model.SurfaceTerm, keywords, nouns)
}

// SearchLemmas matches keywords and nouns exactly against the lemma index.
func (s *Service) SearchLemmas(ctx context.Context, keywords, nouns []string) ([]services.Candidate, error) {
	return s.search(ctx, model.LemmaTerm, keywords, nouns)
}

// search unions both sets and resolves every posting of every matched term to
// a candidate. A nil set is absent; with both absent nothing is queried.
// Candidates keep posting insertion order and one is emitted per posting.
func (s *Service) search(ctx context.Context, kind model.TermKind, keywords, nouns []string) ([]services.Candidate, error) {
	candidates := make([]services.Candidate, 0)
	if keywords == nil && nouns == nil {
		return candidates, nil
	}

	terms := union(keywords, nouns)
	hits, err := s.store.PostingHits(ctx, kind, terms)
	if err != nil {
		return nil, fmt.Errorf("searching %s index: %w", kind, err)
	}

	for _, hit := range hits {
		candidates = append(candidates, services.Candidate{
			SentenceID:   hit.SentenceID,
			DocumentID:   hit.DocumentID,
			DocumentName: hit.DocumentName,
			Text:         hit.Text,
			URL:          DocumentURL(hit.DocumentID),
		})
	}

	log.Debug().Str("index", kind.String()).Strs("terms", terms).Int("candidates", len(candidates)).Msg("retrieval")
	return candidates, nil
}

// DocumentURL is the display URL of a document's detail view.
func DocumentURL(documentID int64) string {
	return fmt.Sprintf("/documents/%d", documentID)
}

// union returns the distinct strings of both sets, first occurrence first.
func union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, set := range sets {
		for _, s := range set {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
