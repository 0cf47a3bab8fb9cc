package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phuslu/log"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/internal/indexing"
	"github.com/devinalusiana15/KMS-OOP/internal/persistence"
	"github.com/devinalusiana15/KMS-OOP/internal/search"
	"github.com/devinalusiana15/KMS-OOP/model"
)

// previewLength is the number of characters shown for a document in listings.
const previewLength = 1000

// IngestResult reports what an upload produced.
type IngestResult struct {
	indexing.Result
	OntologyPath string `json:"ontology_path,omitempty"`
	Classes      int    `json:"classes"`
	Triples      int    `json:"triples"`
	Took         int64  `json:"took"` // milliseconds
}

// DocumentSummary is a document as shown in the document list.
type DocumentSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentDetail is a document with its full extracted text.
type DocumentDetail struct {
	model.Document
	Title     string               `json:"title"`
	Text      string               `json:"text"`
	Sentences []model.SentenceUnit `json:"sentences"`
}

// Ingest stores an uploaded PDF (or .txt) file, indexes its text and writes
// its ontology. Duplicate names are rejected before anything is written. A
// failed ontology build is logged and does not fail the upload.
func (e *Engine) Ingest(ctx context.Context, name string, content []byte) (IngestResult, error) {
	start := time.Now()

	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return IngestResult{}, kmserrors.NewValidationError("file", "file name cannot be empty")
	}
	if !acceptedMedia(name, content) {
		return IngestResult{}, kmserrors.ErrUnsupportedMedia
	}

	path := filepath.Join(e.uploadDir, name)
	exists, err := e.store.DocumentExists(ctx, name)
	if err != nil {
		return IngestResult{}, kmserrors.NewIngestionError(name, err)
	}
	if exists || persistence.Exists(path) {
		return IngestResult{}, kmserrors.NewDocumentExistsError(name)
	}

	if err := persistence.SaveBytes(path, content); err != nil {
		return IngestResult{}, kmserrors.NewIngestionError(name, err)
	}

	text := e.extractor.Extract(path)
	indexed, err := e.indexer.IndexDocument(ctx, name, path, text)
	if err != nil {
		// A concurrent upload of the same name owns the file now.
		if !errors.Is(err, kmserrors.ErrDocumentExists) {
			if rmErr := os.Remove(path); rmErr != nil {
				log.Warn().Err(rmErr).Str("path", path).Msg("could not remove upload after failed indexing")
			}
		}
		return IngestResult{}, err
	}

	result := IngestResult{Result: indexed}
	ontologyPath, o, err := e.ontology.BuildAndSave(ctx, name, text)
	if err != nil {
		log.Error().Err(err).Str("document", name).Msg("ontology generation failed")
	} else {
		result.OntologyPath = ontologyPath
		result.Classes = len(o.Classes)
		result.Triples = len(o.Triples)
	}

	result.Took = time.Since(start).Milliseconds()
	log.Info().Str("document", name).Int64("document_id", indexed.Document.ID).
		Int("sentences", indexed.Sentences).Int64("took_ms", result.Took).Msg("ingested document")
	return result, nil
}

// acceptedMedia reports whether content is a PDF, or plain text uploaded under
// a .txt name.
func acceptedMedia(name string, content []byte) bool {
	mt := mimetype.Detect(content)
	if mt.Is("application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".txt") && mt.Is("text/plain")
}

// ListDocuments returns every document with a preview of its text.
func (e *Engine) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:        doc.ID,
			Name:      doc.Name,
			Title:     title(doc.Name),
			Preview:   preview(e.extractor.Extract(doc.Path)),
			URL:       search.DocumentURL(doc.ID),
			CreatedAt: doc.CreatedAt,
		})
	}
	return summaries, nil
}

// GetDocument returns a document with its full text and sentence units.
func (e *Engine) GetDocument(ctx context.Context, id int64) (DocumentDetail, error) {
	doc, err := e.store.GetDocument(ctx, id)
	if err != nil {
		return DocumentDetail{}, err
	}
	sentences, err := e.store.Sentences(ctx, id)
	if err != nil {
		return DocumentDetail{}, err
	}
	return DocumentDetail{
		Document:  doc,
		Title:     title(doc.Name),
		Text:      e.extractor.Extract(doc.Path),
		Sentences: sentences,
	}, nil
}

func title(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
