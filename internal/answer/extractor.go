package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/services"
)

// Options holds the question word rules loaded from configuration.
type Options struct {
	DisallowedNoun     string
	AnchorTerm         string
	AnnotationExcluded []string
}

// Dependencies are the capabilities the answer Service is built from.
type Dependencies struct {
	Tokenizer   services.Tokenizer
	Tagger      services.Tagger
	Lemmatizer  services.Lemmatizer
	Recognizer  services.EntityRecognizer
	Retriever   services.Retriever
	Refinements services.RefinementLog
	Graph       services.GraphQuerier
	Stopwords   *tokenizer.Stopwords
}

// Service answers questions. It fulfills the services.Answerer interface.
type Service struct {
	tokenizer   services.Tokenizer
	tagger      services.Tagger
	lemmatizer  services.Lemmatizer
	recognizer  services.EntityRecognizer
	retriever   services.Retriever
	refinements services.RefinementLog
	graph       services.GraphQuerier
	stopwords   *tokenizer.Stopwords
	opts        Options
}

// NewService creates a new answer Service.
func NewService(deps Dependencies, opts Options) (*Service, error) {
	switch {
	case deps.Tokenizer == nil:
		return nil, fmt.Errorf("tokenizer cannot be nil")
	case deps.Tagger == nil:
		return nil, fmt.Errorf("tagger cannot be nil")
	case deps.Lemmatizer == nil:
		return nil, fmt.Errorf("lemmatizer cannot be nil")
	case deps.Recognizer == nil:
		return nil, fmt.Errorf("entity recognizer cannot be nil")
	case deps.Retriever == nil:
		return nil, fmt.Errorf("retriever cannot be nil")
	case deps.Refinements == nil:
		return nil, fmt.Errorf("refinement log cannot be nil")
	case deps.Graph == nil:
		return nil, fmt.Errorf("graph querier cannot be nil")
	case deps.Stopwords == nil:
		return nil, fmt.Errorf("stopwords cannot be nil")
	}
	return &Service{
		tokenizer:   deps.Tokenizer,
		tagger:      deps.Tagger,
		lemmatizer:  deps.Lemmatizer,
		recognizer:  deps.Recognizer,
		retriever:   deps.Retriever,
		refinements: deps.Refinements,
		graph:       deps.Graph,
		stopwords:   deps.Stopwords,
		opts:        opts,
	}, nil
}

// Ask classifies the question and answers it from the ontology (definition
// and direction questions) or from the indexed sentences. An invalid question
// returns the rejected answer together with an InvalidQuestionError.
func (s *Service) Ask(ctx context.Context, question string) (services.Answer, error) {
	start := time.Now()
	ans := services.Answer{
		QueryID:    uuid.New().String(),
		Question:   question,
		Candidates: make([]services.Candidate, 0),
	}

	labels, err := Classify(question)
	if err != nil {
		ans.Route = services.RouteRejected
		ans.Labels = make([]string, 0)
		ans.Answer = services.InvalidQuestionAnswer
		ans.Took = time.Since(start).Milliseconds()
		return ans, err
	}
	ans.Labels = labels

	kw, err := s.extractKeywords(ctx, question)
	if err != nil {
		return services.Answer{}, err
	}
	ans.VerbKeywords = kw.Verbs
	ans.NounKeywords = kw.Nouns

	if label, ok := AnnotationLabel(labels); ok {
		ans.Route = services.RouteAnnotation
		ans.Answer = s.graph.Annotation(ctx, s.annotationSubject(kw.AllNouns), label)
		ans.Found = ans.Answer != services.NoAnnotationAnswer && ans.Answer != services.QueryFailedAnswer
	} else {
		ans.Route = services.RouteExtraction
		if err := s.extract(ctx, &ans, kw); err != nil {
			return services.Answer{}, err
		}
	}

	ans.Took = time.Since(start).Milliseconds()
	log.Info().Str("query_id", ans.QueryID).Str("route", string(ans.Route)).
		Bool("found", ans.Found).Int("candidates", len(ans.Candidates)).
		Int64("took_ms", ans.Took).Msg("answered question")
	return ans, nil
}

// extract runs the retrieval tiers, matches entities in the candidates and
// logs a refinement for every exhausted search.
func (s *Service) extract(ctx context.Context, ans *services.Answer, kw Keywords) error {
	candidates, err := s.retrieve(ctx, kw)
	if err != nil {
		return err
	}
	ans.Candidates = candidates
	ans.Answer = services.NoInformationAnswer

	if len(candidates) == 0 {
		s.refine(ctx, ans.Question)
		return nil
	}

	for _, c := range candidates {
		entities, err := s.recognize(ctx, c.Text)
		if err != nil {
			return err
		}
		if text, ok := MatchAnswer(ans.Labels, entities); ok {
			ans.Answer = text
			ans.Found = true
			break
		}
		log.Debug().Str("question", ans.Question).Str("document", c.DocumentName).
			Int64("sentence_id", c.SentenceID).Msg("no answer entity in candidate")
		s.refine(ctx, ans.Question)
	}

	if ans.Found {
		ans.ExtraInfo = s.graph.Enrichment(ctx, ans.Answer)
	}
	return nil
}

// retrieve runs the four retrieval tiers and stops at the first non-empty
// one: surface verbs, surface nouns, lemma verbs, lemma nouns.
func (s *Service) retrieve(ctx context.Context, kw Keywords) ([]services.Candidate, error) {
	candidates, err := s.retriever.SearchTerms(ctx, lowercase(kw.Verbs), nil)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		nounHits, err := s.retriever.SearchTerms(ctx, nil, lowercase(kw.Nouns))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, nounHits...)
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	lemmaVerbs, err := s.lemmaKeywords(ctx, kw.Verbs)
	if err != nil {
		return nil, err
	}
	lemmaNouns, err := s.lemmaKeywords(ctx, kw.Nouns)
	if err != nil {
		return nil, err
	}

	lemmaHits, err := s.retriever.SearchLemmas(ctx, lemmaVerbs, nil)
	if err != nil {
		return nil, err
	}
	if len(lemmaHits) == 0 {
		nounHits, err := s.retriever.SearchLemmas(ctx, nil, lemmaNouns)
		if err != nil {
			return nil, err
		}
		lemmaHits = append(lemmaHits, nounHits...)
	}
	return append(candidates, lemmaHits...), nil
}

// refine records an unanswered question. A failed write is logged and does
// not fail the request.
func (s *Service) refine(ctx context.Context, question string) {
	if err := s.refinements.AddRefinement(ctx, question, services.NoInformationAnswer); err != nil {
		log.Error().Err(err).Str("question", question).Msg("failed to record refinement")
	}
}
