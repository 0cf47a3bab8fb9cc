// Package sparql queries the ontology held in a SPARQL 1.1 endpoint.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/knakk/rdf"
)

const resultsContentType = "application/sparql-results+json"

// Client executes SELECT queries against a SPARQL endpoint such as Fuseki.
// It fulfills the services.TripleStore interface.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for endpoint with a request timeout.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid sparql endpoint %q: %w", endpoint, err)
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// resultsDocument is the SPARQL 1.1 Query Results JSON format.
type resultsDocument struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

// binding is one bound RDF term of a solution.
type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Lang  string `json:"xml:lang,omitempty"`
}

// term converts the binding into an RDF term, validating IRIs and language tags.
func (b binding) term() (rdf.Term, error) {
	switch b.Type {
	case "uri":
		return rdf.NewIRI(b.Value)
	case "literal", "typed-literal":
		if b.Lang != "" {
			return rdf.NewLangLiteral(b.Value, b.Lang)
		}
		return rdf.NewLiteral(b.Value)
	case "bnode":
		return rdf.NewBlank(b.Value)
	default:
		return nil, fmt.Errorf("unknown term type %q", b.Type)
	}
}

// Query posts the query as a form and returns one map per solution, from
// variable name to bound value. Unbound variables are absent from the map.
func (c *Client) Query(ctx context.Context, query string) ([]map[string]string, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sparql endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc resultsDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding sparql results: %w", err)
	}

	rows := make([]map[string]string, 0, len(doc.Results.Bindings))
	for _, solution := range doc.Results.Bindings {
		row := make(map[string]string, len(solution))
		for name, b := range solution {
			term, err := b.term()
			if err != nil {
				return nil, fmt.Errorf("decoding binding %q: %w", name, err)
			}
			row[name] = term.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
