package answer

import (
	"context"
	"slices"
	"strings"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/model"
)

// Keywords are the part-of-speech filtered words of a question.
type Keywords struct {
	// Verbs are VB*-tagged words that are not stopwords.
	Verbs []string
	// Nouns are NN*-tagged words other than the disallowed noun.
	Nouns []string
	// AllNouns are every NN*-tagged word, as tagged.
	AllNouns []string
}

// extractKeywords tags the question once and splits the tagged words into
// verb and noun keywords. Keywords keep their case; callers lowercase them for
// the surface index.
func (s *Service) extractKeywords(ctx context.Context, question string) (Keywords, error) {
	tagged, err := s.tagger.Tag(ctx, s.tokenizer.Tokenize(question))
	if err != nil {
		return Keywords{}, kmserrors.NewCapabilityError("tagger", err)
	}

	kw := Keywords{Verbs: make([]string, 0), Nouns: make([]string, 0), AllNouns: make([]string, 0)}
	for _, tok := range tagged {
		switch {
		case strings.HasPrefix(tok.Tag, "VB"):
			if !s.stopwords.Contains(tok.Text) {
				kw.Verbs = append(kw.Verbs, tok.Text)
			}
		case strings.HasPrefix(tok.Tag, "NN"):
			kw.AllNouns = append(kw.AllNouns, tok.Text)
			if !strings.EqualFold(tok.Text, s.opts.DisallowedNoun) {
				kw.Nouns = append(kw.Nouns, tok.Text)
			}
		}
	}
	return kw, nil
}

// annotationSubject picks the nouns that name the ontology subject. The
// anchor term survives only when it is the single noun of the question.
func (s *Service) annotationSubject(nouns []string) []string {
	if len(nouns) == 1 && strings.EqualFold(nouns[0], s.opts.AnchorTerm) {
		return []string{nouns[0]}
	}
	subject := make([]string, 0, len(nouns))
	for _, n := range nouns {
		if !slices.ContainsFunc(s.opts.AnnotationExcluded, func(ex string) bool { return strings.EqualFold(ex, n) }) {
			subject = append(subject, n)
		}
	}
	return subject
}

// lemmaKeywords lemmatizes the joined words and keeps lemmas of tokens that
// are neither stopwords nor punctuation.
func (s *Service) lemmaKeywords(ctx context.Context, words []string) ([]string, error) {
	lemmas := make([]string, 0, len(words))
	if len(words) == 0 {
		return lemmas, nil
	}
	tokens, err := s.lemmatizer.Lemmatize(ctx, strings.Join(words, " "))
	if err != nil {
		return nil, kmserrors.NewCapabilityError("lemmatizer", err)
	}
	for _, tok := range tokens {
		if tok.IsStop || tok.IsPunct {
			continue
		}
		if lemma := strings.ToLower(strings.TrimSpace(tok.Lemma)); lemma != "" {
			lemmas = append(lemmas, lemma)
		}
	}
	return lemmas, nil
}

func lowercase(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// recognize wraps entity recognition failures as capability errors.
func (s *Service) recognize(ctx context.Context, text string) ([]model.Entity, error) {
	entities, err := s.recognizer.RecognizeEntities(ctx, text)
	if err != nil {
		return nil, kmserrors.NewCapabilityError("entity recognizer", err)
	}
	return entities, nil
}
