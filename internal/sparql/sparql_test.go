package sparql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	kmstesting "github.com/devinalusiana15/KMS-OOP/internal/testing"
	"github.com/devinalusiana15/KMS-OOP/services"
)

const testNamespace = "http://www.semanticweb.org/ariana/coffee#"

func newTestAdapter(t *testing.T, store *kmstesting.FakeTripleStore) *Adapter {
	t.Helper()
	a, err := NewAdapter(store, "coffee", testNamespace)
	require.NoError(t, err)
	return a
}

func TestClient_Query(t *testing.T) {
	var gotQuery, gotAccept, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotQuery = r.PostForm.Get("query")
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", resultsContentType)
		_, _ = w.Write([]byte(`{
			"head": {"vars": ["p", "o", "s"]},
			"results": {"bindings": [
				{"p": {"type": "uri", "value": "http://www.semanticweb.org/ariana/coffee#grows_in"},
				 "o": {"type": "uri", "value": "http://www.semanticweb.org/ariana/coffee#Toraja"}},
				{"s": {"type": "literal", "value": "Arabica"}},
				{"s": {"type": "literal", "value": "Kopi", "xml:lang": "id"}}
			]}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	require.NoError(t, err)

	rows, err := client.Query(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
	require.NoError(t, err)

	assert.Equal(t, "SELECT ?s WHERE { ?s ?p ?o }", gotQuery)
	assert.Equal(t, resultsContentType, gotAccept)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, []map[string]string{
		{"p": testNamespace + "grows_in", "o": testNamespace + "Toraja"},
		{"s": "Arabica"},
		{"s": "Kopi"},
	}, rows)
}

func TestClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Parse error: Lexical error", http.StatusBadRequest)
			},
		},
		{
			name: "invalid iri in results",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": {"bindings": [{"s": {"type": "uri", "value": "http://x.org/a b"}}]}}`))
			},
		},
		{
			name: "unknown term type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": {"bindings": [{"s": {"type": "triple", "value": "x"}}]}}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(server.URL, 5*time.Second)
			require.NoError(t, err)
			_, err = client.Query(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
			assert.Error(t, err)
		})
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient("not a url", time.Second)
	assert.Error(t, err)
}

func TestNewAdapter_Validation(t *testing.T) {
	store := &kmstesting.FakeTripleStore{}
	_, err := NewAdapter(nil, "coffee", testNamespace)
	assert.Error(t, err)
	_, err = NewAdapter(store, "cof fee", testNamespace)
	assert.Error(t, err)
	_, err = NewAdapter(store, "coffee", "http://www.semanticweb.org/ariana/coffee")
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{id: "arabica"},
		{id: "Kopi_Luwak"},
		{id: "Café-Toraja"},
		{id: "1998"},
		{id: "", wantErr: true},
		{id: "arabica> ?p ?o } #", wantErr: true},
		{id: "a b", wantErr: true},
		{id: `x"`, wantErr: true},
		{id: "coffee:arabica", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := Sanitize(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, kmserrors.ErrInvalidIdentifier)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAnnotation(t *testing.T) {
	tests := []struct {
		name      string
		nouns     []string
		store     *kmstesting.FakeTripleStore
		want      string
		wantQuery string
	}{
		{
			name:      "first binding wins and newlines become breaks",
			nouns:     []string{"arabica"},
			store:     &kmstesting.FakeTripleStore{Rows: []map[string]string{{"s": "Arabica is a species.\nIt grows high."}, {"s": "second"}}},
			want:      "Arabica is a species.<br>It grows high.",
			wantQuery: "coffee:arabica rdfs:definition ?s",
		},
		{
			name:      "nouns joined with underscores",
			nouns:     []string{"kopi", "luwak"},
			store:     &kmstesting.FakeTripleStore{Rows: []map[string]string{{"s": "Civet coffee"}}},
			want:      "Civet coffee",
			wantQuery: "coffee:kopi_luwak rdfs:definition ?s",
		},
		{
			name:  "no bindings",
			nouns: []string{"arabica"},
			store: &kmstesting.FakeTripleStore{},
			want:  services.NoAnnotationAnswer,
		},
		{
			name:  "query failure",
			nouns: []string{"arabica"},
			store: &kmstesting.FakeTripleStore{Err: errors.New("connection refused")},
			want:  services.QueryFailedAnswer,
		},
		{
			name:  "injection-shaped subject is rejected before querying",
			nouns: []string{"arabica>", "?p"},
			store: &kmstesting.FakeTripleStore{Rows: []map[string]string{{"s": "leak"}}},
			want:  services.NoAnnotationAnswer,
		},
		{
			name:  "no nouns",
			nouns: []string{},
			store: &kmstesting.FakeTripleStore{Rows: []map[string]string{{"s": "leak"}}},
			want:  services.NoAnnotationAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, tt.store)
			got := a.Annotation(context.Background(), tt.nouns, "definition")
			assert.Equal(t, tt.want, got)
			if tt.wantQuery != "" {
				queries := tt.store.Queries()
				require.Len(t, queries, 1)
				assert.Contains(t, queries[0], tt.wantQuery)
				assert.Contains(t, queries[0], "PREFIX coffee: <"+testNamespace+">")
			}
		})
	}

	t.Run("rejected subjects never reach the store", func(t *testing.T) {
		store := &kmstesting.FakeTripleStore{}
		a := newTestAdapter(t, store)
		_ = a.Annotation(context.Background(), []string{"x} ; DROP"}, "direction")
		assert.Empty(t, store.Queries())
	})
}

func TestEnrichment(t *testing.T) {
	t.Run("subject and object statements", func(t *testing.T) {
		store := &kmstesting.FakeTripleStore{Rows: []map[string]string{
			{"p": testNamespace + "grows_in", "o": testNamespace + "North_Sulawesi"},
			{"p": testNamespace + "exported_to", "s": testNamespace + "Toraja_Arabica"},
		}}
		a := newTestAdapter(t, store)

		got := a.Enrichment(context.Background(), "Kalosi Toraja")

		assert.Equal(t, "Kalosi Toraja grows in North Sulawesi. Toraja Arabica exported to Kalosi Toraja. ", got)
		queries := store.Queries()
		require.Len(t, queries, 1)
		assert.Contains(t, queries[0], "coffee:Kalosi_Toraja ?p ?o")
		assert.Contains(t, queries[0], "?s ?p coffee:Kalosi_Toraja")
		assert.Equal(t, 2, strings.Count(queries[0], `FILTER (!CONTAINS(LCASE(STR(?p)), "type"))`))
	})

	t.Run("no bindings", func(t *testing.T) {
		a := newTestAdapter(t, &kmstesting.FakeTripleStore{})
		assert.Equal(t, "", a.Enrichment(context.Background(), "Toraja"))
	})

	t.Run("query failure", func(t *testing.T) {
		a := newTestAdapter(t, &kmstesting.FakeTripleStore{Err: errors.New("timeout")})
		assert.Equal(t, services.QueryFailedAnswer, a.Enrichment(context.Background(), "Toraja"))
	})

	t.Run("answer that is not an identifier", func(t *testing.T) {
		store := &kmstesting.FakeTripleStore{}
		a := newTestAdapter(t, store)
		assert.Equal(t, "", a.Enrichment(context.Background(), "20%"))
		assert.Empty(t, store.Queries())
	})
}

func TestFragment(t *testing.T) {
	assert.Equal(t, "grows in", fragment(testNamespace+"grows_in"))
	assert.Equal(t, "a b", fragment("http://x#y#a_b"))
	assert.Equal(t, "plain literal", fragment("plain_literal"))
	assert.Equal(t, "", fragment(""))
}
