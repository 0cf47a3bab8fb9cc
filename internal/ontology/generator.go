// Package ontology turns recognized entity sequences into an RDF graph and
// serializes it as Turtle.
package ontology

import (
	"sort"
	"strings"

	"github.com/devinalusiana15/KMS-OOP/model"
)

// Standard vocabulary IRIs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"

	RDFType    = RDFNamespace + "type"
	RDFSDomain = RDFSNamespace + "domain"
	RDFSRange  = RDFSNamespace + "range"
)

// Triple is one subject-predicate-object statement. Every part is a full IRI.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Ontology is the graph generated for one document.
type Ontology struct {
	Prefix    string
	Namespace string
	Version   string
	// Classes are the entity labels, as IRIs, sorted.
	Classes []string
	// ObjectProperties are the relation verbs, as IRIs, sorted.
	ObjectProperties []string
	// Triples are the distinct statements in emission order.
	Triples []Triple
}

// Generator builds ontologies under one document namespace.
type Generator struct {
	prefix    string
	namespace string
	version   string
}

// NewGenerator creates a Generator. namespace must end with the fragment
// separator, e.g. "http://www.semanticweb.org/ariana/coffee#".
func NewGenerator(prefix, namespace, version string) *Generator {
	return &Generator{prefix: prefix, namespace: namespace, version: version}
}

// Identifier turns entity text into a local name: spaces become underscores.
func Identifier(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
}

// IRI returns the namespaced IRI of an entity text or label.
func (g *Generator) IRI(text string) string {
	return g.namespace + Identifier(text)
}

// Generate builds the graph for a document given as its sentences' entities,
// each in text order. A relation pass links the entity before every VERB
// entity to the first entity starting after the verb ends; a type pass then
// types every non-VERB entity. Entities with an empty label are ignored.
func (g *Generator) Generate(sentences [][]model.Entity) *Ontology {
	b := newGraphBuilder()

	for _, ents := range sentences {
		var prev *model.Entity
		for i := range ents {
			ent := &ents[i]
			if ent.Label == "" {
				continue
			}
			if ent.Label != model.VerbLabel {
				prev = ent
				b.class(g.IRI(ent.Label))
				continue
			}

			if prev != nil {
				property := g.IRI(ent.Text)
				b.property(property)
				b.add(Triple{Subject: property, Predicate: RDFSDomain, Object: g.IRI(prev.Label)})

				if next := nextEntity(ents, i+1, ent.End); next != nil {
					b.add(Triple{Subject: property, Predicate: RDFSRange, Object: g.IRI(next.Label)})
					b.add(Triple{Subject: g.IRI(prev.Text), Predicate: property, Object: g.IRI(next.Text)})
				}
			}
			// A verb never anchors the next relation.
			prev = nil
		}
	}

	for _, ents := range sentences {
		for _, ent := range ents {
			if ent.Label == "" || ent.Label == model.VerbLabel {
				continue
			}
			b.class(g.IRI(ent.Label))
			b.add(Triple{Subject: g.IRI(ent.Text), Predicate: RDFType, Object: g.IRI(ent.Label)})
		}
	}

	return &Ontology{
		Prefix:           g.prefix,
		Namespace:        g.namespace,
		Version:          g.version,
		Classes:          sortedKeys(b.classes),
		ObjectProperties: sortedKeys(b.properties),
		Triples:          b.triples,
	}
}

// nextEntity returns the first labelled entity from index from onward that
// starts after end.
func nextEntity(ents []model.Entity, from, end int) *model.Entity {
	for j := from; j < len(ents); j++ {
		if ents[j].Label != "" && ents[j].Start > end {
			return &ents[j]
		}
	}
	return nil
}

type graphBuilder struct {
	classes    map[string]struct{}
	properties map[string]struct{}
	seen       map[Triple]struct{}
	triples    []Triple
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		classes:    make(map[string]struct{}),
		properties: make(map[string]struct{}),
		seen:       make(map[Triple]struct{}),
		triples:    make([]Triple, 0),
	}
}

func (b *graphBuilder) class(iri string)    { b.classes[iri] = struct{}{} }
func (b *graphBuilder) property(iri string) { b.properties[iri] = struct{}{} }

func (b *graphBuilder) add(t Triple) {
	if _, ok := b.seen[t]; ok {
		return
	}
	b.seen[t] = struct{}{}
	b.triples = append(b.triples, t)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
