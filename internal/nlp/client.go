// Package nlp talks to the NLP sidecar that runs part-of-speech tagging,
// lemmatization and entity recognition.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devinalusiana15/KMS-OOP/model"
)

// Client is the HTTP client of the sidecar. A Client is bound to one
// analysis model; Tag does not depend on it.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a Client for the sidecar at baseURL analyzing with model.
func NewClient(baseURL, model string, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid nlp base url %q: %w", baseURL, err)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("nlp model cannot be empty")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// WithModel returns a Client sharing the connection pool but analyzing with
// another model.
func (c *Client) WithModel(model string) *Client {
	clone := *c
	clone.model = model
	return &clone
}

// Model returns the analysis model name.
func (c *Client) Model() string {
	return c.model
}

type tagRequest struct {
	Tokens []string `json:"tokens"`
}

type tagResponse struct {
	Tags [][2]string `json:"tags"`
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type analyzeResponse struct {
	Tokens []struct {
		Text    string `json:"text"`
		Lemma   string `json:"lemma"`
		IsStop  bool   `json:"is_stop"`
		IsPunct bool   `json:"is_punct"`
	} `json:"tokens"`
	Ents []struct {
		Text      string `json:"text"`
		Label     string `json:"label"`
		StartChar int    `json:"start_char"`
		EndChar   int    `json:"end_char"`
	} `json:"ents"`
}

// Tag assigns Penn Treebank tags to tokens. It fulfills services.Tagger.
func (c *Client) Tag(ctx context.Context, tokens []string) ([]model.TaggedToken, error) {
	tagged := make([]model.TaggedToken, 0, len(tokens))
	if len(tokens) == 0 {
		return tagged, nil
	}

	var resp tagResponse
	if err := c.post(ctx, "/tag", tagRequest{Tokens: tokens}, &resp); err != nil {
		return nil, err
	}
	for _, pair := range resp.Tags {
		tagged = append(tagged, model.TaggedToken{Text: pair[0], Tag: pair[1]})
	}
	return tagged, nil
}

// Lemmatize analyzes text into tokens with lemmas and stopword and
// punctuation flags. It fulfills services.Lemmatizer.
func (c *Client) Lemmatize(ctx context.Context, text string) ([]model.AnalyzedToken, error) {
	resp, err := c.analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	tokens := make([]model.AnalyzedToken, 0, len(resp.Tokens))
	for _, t := range resp.Tokens {
		tokens = append(tokens, model.AnalyzedToken{Text: t.Text, Lemma: t.Lemma, IsStop: t.IsStop, IsPunct: t.IsPunct})
	}
	return tokens, nil
}

// RecognizeEntities returns the merged entity spans of text with character
// offsets. It fulfills services.EntityRecognizer.
func (c *Client) RecognizeEntities(ctx context.Context, text string) ([]model.Entity, error) {
	resp, err := c.analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	entities := make([]model.Entity, 0, len(resp.Ents))
	for _, e := range resp.Ents {
		entities = append(entities, model.Entity{Text: e.Text, Label: e.Label, Start: e.StartChar, End: e.EndChar})
	}
	return entities, nil
}

func (c *Client) analyze(ctx context.Context, text string) (*analyzeResponse, error) {
	resp := &analyzeResponse{}
	if strings.TrimSpace(text) == "" {
		return resp, nil
	}
	if err := c.post(ctx, "/analyze", analyzeRequest{Text: text, Model: c.model}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nlp %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nlp %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding nlp %s response: %w", path, err)
	}
	return nil
}
