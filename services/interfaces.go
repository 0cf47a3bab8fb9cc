package services

import (
	"context"

	"github.com/devinalusiana15/KMS-OOP/model"
)

// Candidate is a sentence returned by retrieval, in posting order.
type Candidate struct {
	SentenceID   int64  `json:"sentence_id"`
	DocumentID   int64  `json:"document_id"`
	DocumentName string `json:"document_name"`
	Text         string `json:"text"`
	URL          string `json:"url"`
}

// Route tells which path produced an answer.
type Route string

const (
	RouteRejected   Route = "rejected"
	RouteExtraction Route = "extraction"
	RouteAnnotation Route = "annotation"
)

// Fixed answer texts shown to the user.
const (
	InvalidQuestionAnswer = "invalid question"
	NoInformationAnswer   = "no information found"
	NoAnnotationAnswer    = "no answer"
	QueryFailedAnswer     = "error executing query"
)

// Answer is the response payload for a question.
type Answer struct {
	QueryID      string      `json:"query_id"` // unique UUID for this question
	Question     string      `json:"question"`
	Route        Route       `json:"route"`
	Labels       []string    `json:"labels"`
	VerbKeywords []string    `json:"verb_keywords,omitempty"`
	NounKeywords []string    `json:"noun_keywords,omitempty"`
	Answer       string      `json:"answer"`
	Found        bool        `json:"found"`
	Candidates   []Candidate `json:"related_articles"`
	ExtraInfo    string      `json:"extra_info,omitempty"`
	Took         int64       `json:"took"` // milliseconds
}

// Tokenizer splits text into word and punctuation tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Tagger assigns part-of-speech tags to tokens.
type Tagger interface {
	Tag(ctx context.Context, tokens []string) ([]model.TaggedToken, error)
}

// Lemmatizer analyzes text into tokens carrying lemmas and stop/punct flags.
type Lemmatizer interface {
	Lemmatize(ctx context.Context, text string) ([]model.AnalyzedToken, error)
}

// EntityRecognizer finds entity spans in text, with adjacent same-label
// entities already merged.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]model.Entity, error)
}

// TextExtractor turns an uploaded file into plain text. Failures yield empty text.
type TextExtractor interface {
	Extract(path string) string
}

// TripleStore executes SPARQL SELECT queries and returns variable bindings.
type TripleStore interface {
	Query(ctx context.Context, query string) ([]map[string]string, error)
}

// Retriever reads the term and lemma indexes. A nil slice means the set is absent.
type Retriever interface {
	SearchTerms(ctx context.Context, keywords, nouns []string) ([]Candidate, error)
	SearchLemmas(ctx context.Context, keywords, nouns []string) ([]Candidate, error)
}

// RefinementLog records unanswered questions.
type RefinementLog interface {
	AddRefinement(ctx context.Context, question, answer string) error
}

// GraphQuerier answers from the ontology. Both methods degrade to sentinel
// strings instead of returning errors.
type GraphQuerier interface {
	Annotation(ctx context.Context, nouns []string, label string) string
	Enrichment(ctx context.Context, answer string) string
}

// Answerer answers free-text questions.
type Answerer interface {
	Ask(ctx context.Context, question string) (Answer, error)
}
