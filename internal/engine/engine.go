// Package engine wires the store, the index builder, the answer service and
// the ontology generator into the operations exposed by the API and the CLI.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/phuslu/log"

	"github.com/devinalusiana15/KMS-OOP/config"
	"github.com/devinalusiana15/KMS-OOP/internal/answer"
	"github.com/devinalusiana15/KMS-OOP/internal/extract"
	"github.com/devinalusiana15/KMS-OOP/internal/indexing"
	"github.com/devinalusiana15/KMS-OOP/internal/nlp"
	"github.com/devinalusiana15/KMS-OOP/internal/ontology"
	"github.com/devinalusiana15/KMS-OOP/internal/search"
	"github.com/devinalusiana15/KMS-OOP/internal/sparql"
	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
	"github.com/devinalusiana15/KMS-OOP/store"
)

// Components are the external capabilities the Engine runs on. NewFromConfig
// builds them from HTTP clients; tests pass fakes to New.
type Components struct {
	Tagger     services.Tagger
	Lemmatizer services.Lemmatizer
	// Recognizer finds answer entities in candidate sentences.
	Recognizer services.EntityRecognizer
	// OntologyRecognizer labels relation spans with model.VerbLabel.
	OntologyRecognizer services.EntityRecognizer
	TripleStore        services.TripleStore
	Extractor          services.TextExtractor
}

// Engine is the question answering service. It holds no mutable state of its
// own; every request goes through the store.
type Engine struct {
	cfg       *config.Config
	store     *store.Store
	extractor services.TextExtractor
	indexer   *indexing.Service
	answerer  services.Answerer
	ontology  *ontology.Service
	uploadDir string
}

// NewFromConfig opens the store and connects to the NLP sidecar and the
// triple store named in cfg.
func NewFromConfig(cfg *config.Config) (*Engine, error) {
	client, err := nlp.NewClient(cfg.NLP.BaseURL, cfg.NLP.DefaultModel, cfg.NLP.Timeout.Duration)
	if err != nil {
		return nil, err
	}
	triples, err := sparql.NewClient(cfg.SPARQL.Endpoint, cfg.SPARQL.Timeout.Duration)
	if err != nil {
		return nil, err
	}

	return New(cfg, Components{
		Tagger:             client,
		Lemmatizer:         client,
		Recognizer:         client,
		OntologyRecognizer: client.WithModel(cfg.NLP.CustomModel),
		TripleStore:        triples,
		Extractor:          extract.NewExtractor(),
	})
}

// New creates an Engine from cfg and the given capabilities. The store is
// opened (and migrated) at cfg.Storage.DatabasePath.
func New(cfg *config.Config, c Components) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if c.Extractor == nil {
		return nil, fmt.Errorf("text extractor cannot be nil")
	}
	if c.TripleStore == nil {
		return nil, fmt.Errorf("triple store cannot be nil")
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Storage.UploadDir, err)
	}

	st, err := store.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	e, err := build(cfg, c, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	stats, err := st.Stats(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("could not read store statistics")
	} else {
		log.Info().Str("database", st.Path()).Int("documents", stats.Documents).
			Int("sentences", stats.Sentences).Msg("engine ready")
	}
	return e, nil
}

func build(cfg *config.Config, c Components, st *store.Store) (*Engine, error) {
	stopwords := tokenizer.NewStopwords(cfg.Stopwords)

	indexer, err := indexing.NewService(st, c.Lemmatizer, stopwords)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexing service: %w", err)
	}
	searcher, err := search.NewService(st)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	graph, err := sparql.NewAdapter(c.TripleStore, cfg.Ontology.PrefixName, cfg.Ontology.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph adapter: %w", err)
	}
	answerer, err := answer.NewService(answer.Dependencies{
		Tokenizer:   tokenizer.WordTokenizer{},
		Tagger:      c.Tagger,
		Lemmatizer:  c.Lemmatizer,
		Recognizer:  c.Recognizer,
		Retriever:   searcher,
		Refinements: st,
		Graph:       graph,
		Stopwords:   stopwords,
	}, answer.Options{
		DisallowedNoun:     cfg.Question.DisallowedNoun,
		AnchorTerm:         cfg.Question.AnchorTerm,
		AnnotationExcluded: cfg.Question.AnnotationExcluded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create answer service: %w", err)
	}
	generator := ontology.NewGenerator(cfg.Ontology.PrefixName, cfg.Ontology.Namespace, cfg.Ontology.Version)
	ontologies, err := ontology.NewService(c.OntologyRecognizer, generator, cfg.Storage.OntologyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create ontology service: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		store:     st,
		extractor: c.Extractor,
		indexer:   indexer,
		answerer:  answerer,
		ontology:  ontologies,
		uploadDir: cfg.Storage.UploadDir,
	}, nil
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Ask answers a question. See answer.Service.Ask.
func (e *Engine) Ask(ctx context.Context, question string) (services.Answer, error) {
	return e.answerer.Ask(ctx, question)
}

// Stats returns the row counts of the store.
func (e *Engine) Stats(ctx context.Context) (store.Stats, error) {
	return e.store.Stats(ctx)
}

// Refinements returns the logged unanswered questions, oldest first.
func (e *Engine) Refinements(ctx context.Context) ([]model.Refinement, error) {
	return e.store.ListRefinements(ctx)
}

// Config returns the configuration the Engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}
