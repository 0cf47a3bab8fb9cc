// Package testing provides fakes of the NLP and triple-store capabilities and
// helpers for building temporary stores in tests.
package testing

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/store"
)

// NewTestStore creates a SQLite store in a temporary directory that is closed
// when the test ends.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.NewStore(filepath.Join(t.TempDir(), "kms.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// FakeTagger tags tokens from a lookup table keyed by lowercased token.
// Punctuation is tagged "." and unknown words get Default ("NN" when empty).
type FakeTagger struct {
	Tags    map[string]string
	Default string
	Err     error
}

// Tag implements services.Tagger.
func (f *FakeTagger) Tag(_ context.Context, tokens []string) ([]model.TaggedToken, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	tagged := make([]model.TaggedToken, 0, len(tokens))
	for _, tok := range tokens {
		tag, ok := f.Tags[strings.ToLower(tok)]
		switch {
		case ok:
		case isPunct(tok):
			tag = "."
		case f.Default != "":
			tag = f.Default
		default:
			tag = "NN"
		}
		tagged = append(tagged, model.TaggedToken{Text: tok, Tag: tag})
	}
	return tagged, nil
}

// FakeLemmatizer analyzes text with the word tokenizer and maps lowercased
// words through Lemmas. Words missing from the table are their own lemma.
type FakeLemmatizer struct {
	Lemmas    map[string]string
	Stopwords *tokenizer.Stopwords
	Err       error

	mu    sync.Mutex
	calls []string
}

// Lemmatize implements services.Lemmatizer.
func (f *FakeLemmatizer) Lemmatize(_ context.Context, text string) ([]model.AnalyzedToken, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	words := tokenizer.WordTokenizer{}.Tokenize(text)
	tokens := make([]model.AnalyzedToken, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		lemma, ok := f.Lemmas[lower]
		if !ok {
			lemma = lower
		}
		tokens = append(tokens, model.AnalyzedToken{
			Text:    w,
			Lemma:   lemma,
			IsStop:  f.Stopwords != nil && f.Stopwords.Contains(lower),
			IsPunct: isPunct(w),
		})
	}
	return tokens, nil
}

// Calls returns the texts passed to Lemmatize so far.
func (f *FakeLemmatizer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeRecognizer returns canned entities per exact input text.
type FakeRecognizer struct {
	Entities map[string][]model.Entity
	Err      error

	mu    sync.Mutex
	calls []string
}

// RecognizeEntities implements services.EntityRecognizer.
func (f *FakeRecognizer) RecognizeEntities(_ context.Context, text string) ([]model.Entity, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Entities[text], nil
}

// Calls returns the texts passed to RecognizeEntities so far.
func (f *FakeRecognizer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeTripleStore answers every query with Rows and records the query text.
// Respond, when set, takes precedence over Rows.
type FakeTripleStore struct {
	Rows    []map[string]string
	Respond func(query string) ([]map[string]string, error)
	Err     error

	mu      sync.Mutex
	queries []string
}

// Query implements services.TripleStore.
func (f *FakeTripleStore) Query(_ context.Context, query string) ([]map[string]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.Respond != nil {
		return f.Respond(query)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Rows, nil
}

// Queries returns every query received so far.
func (f *FakeTripleStore) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func isPunct(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
