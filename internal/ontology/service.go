package ontology

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/internal/persistence"
	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
)

// Service generates a document's ontology from its text and writes it to the
// ontology directory.
type Service struct {
	recognizer services.EntityRecognizer
	generator  *Generator
	dir        string
}

// NewService creates a new ontology Service. recognizer must label relation
// spans with model.VerbLabel.
func NewService(recognizer services.EntityRecognizer, generator *Generator, dir string) (*Service, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("entity recognizer cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("ontology directory cannot be empty")
	}
	return &Service{recognizer: recognizer, generator: generator, dir: dir}, nil
}

// FileName derives the ontology file name from a document name by replacing
// its extension with ".owl".
func FileName(documentName string) string {
	base := filepath.Base(documentName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".owl"
}

// Path returns where the ontology of a document is written.
func (s *Service) Path(documentName string) string {
	return filepath.Join(s.dir, FileName(documentName))
}

// Build recognizes entities sentence by sentence and generates the ontology.
func (s *Service) Build(ctx context.Context, text string) (*Ontology, error) {
	sentences := tokenizer.SplitSentences(text)
	entities := make([][]model.Entity, 0, len(sentences))
	for _, sentence := range sentences {
		ents, err := s.recognizer.RecognizeEntities(ctx, sentence)
		if err != nil {
			return nil, kmserrors.NewCapabilityError("entity recognizer", err)
		}
		entities = append(entities, ents)
	}
	return s.generator.Generate(entities), nil
}

// BuildAndSave generates the ontology of a document and overwrites its file.
func (s *Service) BuildAndSave(ctx context.Context, documentName, text string) (string, *Ontology, error) {
	o, err := s.Build(ctx, text)
	if err != nil {
		return "", nil, err
	}

	path := s.Path(documentName)
	if err := persistence.SaveFile(path, o.WriteTurtle); err != nil {
		return "", nil, err
	}

	log.Info().Str("document", documentName).Str("path", path).
		Int("classes", len(o.Classes)).Int("triples", len(o.Triples)).Msg("wrote ontology")
	return path, o, nil
}
