// Package answer classifies questions and extracts entity answers from
// retrieved sentences.
package answer

import (
	"slices"
	"strings"
	"unicode"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/model"
)

// Annotation labels route a question to the ontology instead of entity extraction.
const (
	LabelDefinition = "definition"
	LabelDirection  = "direction"
)

var interrogatives = []string{"what", "when", "where", "who", "why", "how"}

// Target label sets, keyed by the interrogative that selects them.
var (
	whereLabels = []string{"LOC", "GPE", "CONTINENT", "LOCATION"}
	whoLabels   = []string{"NORP", "PERSON", "NATIONALITY"}
	whenLabels  = []string{"DATE", "TIME"}
	whatLabels  = []string{"PERCENT", "PRODUCT", "VARIETY", "METHODS", "BEVERAGE", "QUANTITY"}
)

// category is one family of the answer-type table. An entity answers a
// question when the family name is in the target set and its label is in
// the family.
type category struct {
	name   string
	labels []string
}

var categories = []category{
	{name: "LOC", labels: []string{"LOC", "GPE", "CONTINENT"}},
	{name: "PERSON", labels: []string{"NORP", "PERSON", "NATIONALITY", "JOB"}},
	{name: "DATE", labels: []string{"DATE", "TIME"}},
	{name: "PRODUCT", labels: []string{"PRODUCT", "VARIETY", "METHODS", "BEVERAGE", "QUANTITY", "DISTANCE", "TEMPERATURE"}},
}

// Classify returns the target label set for a question. The first word must
// be an interrogative; keywords anywhere in the question are then checked in
// the order where, who, when, what, how. A valid question matching none of
// them (a bare "why" question) gets an empty set.
func Classify(question string) ([]string, error) {
	words := questionWords(question)
	if len(words) == 0 || !slices.Contains(interrogatives, words[0]) {
		return nil, kmserrors.NewInvalidQuestionError(question)
	}

	switch {
	case slices.Contains(words, "where"):
		return slices.Clone(whereLabels), nil
	case slices.Contains(words, "who"):
		return slices.Clone(whoLabels), nil
	case slices.Contains(words, "when"):
		return slices.Clone(whenLabels), nil
	case slices.Contains(words, "what"):
		if slices.Contains(words, LabelDefinition) {
			return []string{LabelDefinition}, nil
		}
		return slices.Clone(whatLabels), nil
	case slices.Contains(words, "how"):
		return []string{LabelDirection}, nil
	}
	return []string{}, nil
}

// AnnotationLabel reports whether labels route to the ontology, and which
// annotation property to query.
func AnnotationLabel(labels []string) (string, bool) {
	for _, l := range labels {
		if l == LabelDefinition || l == LabelDirection {
			return l, true
		}
	}
	return "", false
}

// MatchAnswer returns the text of the first entity whose label belongs to a
// category selected by targetLabels.
func MatchAnswer(targetLabels []string, entities []model.Entity) (string, bool) {
	for _, ent := range entities {
		for _, cat := range categories {
			if slices.Contains(targetLabels, cat.name) && slices.Contains(cat.labels, ent.Label) {
				return ent.Text, true
			}
		}
	}
	return "", false
}

// questionWords lowercases the question, splits it on whitespace and trims
// punctuation from each word.
func questionWords(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := strings.TrimFunc(f, unicode.IsPunct); w != "" {
			words = append(words, w)
		}
	}
	return words
}
