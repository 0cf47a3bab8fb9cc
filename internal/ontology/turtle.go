package ontology

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/knakk/rdf"
)

// localNameRegex matches local names that can be written as prefixed names.
var localNameRegex = regexp.MustCompile(`^[\p{L}\p{N}_][\p{L}\p{N}_-]*$`)

// iriDelimiters may not appear unescaped inside an IRIREF.
const iriDelimiters = "<>\"{}|^`\\"

// WriteTurtle serializes the ontology as a Turtle document: prefixes, the
// ontology header, class and object property declarations, then the triples.
func (o *Ontology) WriteTurtle(w io.Writer) error {
	tw := &turtleWriter{w: w, o: o}

	tw.printf("@prefix rdf: <%s> .\n", RDFNamespace)
	tw.printf("@prefix rdfs: <%s> .\n", RDFSNamespace)
	tw.printf("@prefix owl: <%s> .\n", OWLNamespace)
	tw.printf("@prefix %s: <%s> .\n\n", o.Prefix, o.Namespace)

	tw.printf("# Ontology Header\n")
	tw.printf("%s\n    rdf:type owl:Ontology ;\n    owl:versionIRI %s .\n", tw.iriRef(o.Namespace), tw.iriRef(o.Namespace+o.Version))

	if len(o.Classes) > 0 {
		tw.printf("\n# Classes\n")
		for _, c := range o.Classes {
			tw.printf("%s rdf:type owl:Class .\n", tw.term(c))
		}
	}

	if len(o.ObjectProperties) > 0 {
		tw.printf("\n# Object Properties\n")
		for _, p := range o.ObjectProperties {
			tw.printf("%s rdf:type owl:ObjectProperty .\n", tw.term(p))
		}
	}

	if len(o.Triples) > 0 {
		tw.printf("\n# Statements\n")
		for _, t := range o.Triples {
			tw.printf("%s %s %s .\n", tw.term(t.Subject), tw.term(t.Predicate), tw.term(t.Object))
		}
	}
	return tw.err
}

// String returns the Turtle serialization.
func (o *Ontology) String() string {
	var sb strings.Builder
	_ = o.WriteTurtle(&sb)
	return sb.String()
}

type turtleWriter struct {
	w   io.Writer
	o   *Ontology
	err error
}

func (tw *turtleWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// term writes an IRI as a prefixed name when it lives in a known namespace
// and has a plain local name, otherwise as an escaped IRIREF. A '#' inside a
// local name is escaped.
func (tw *turtleWriter) term(iri string) string {
	namespaces := []struct{ prefix, ns string }{
		{"rdf", RDFNamespace},
		{"rdfs", RDFSNamespace},
		{"owl", OWLNamespace},
		{tw.o.Prefix, tw.o.Namespace},
	}
	for _, n := range namespaces {
		local, ok := strings.CutPrefix(iri, n.ns)
		if !ok {
			continue
		}
		if localNameRegex.MatchString(local) {
			return n.prefix + ":" + local
		}
		return tw.iriRef(n.ns + escapeIRI(local, "#"))
	}
	return tw.iriRef(escapeIRI(iri, ""))
}

// iriRef writes iri between angle brackets once it is a valid IRI.
func (tw *turtleWriter) iriRef(iri string) string {
	ref, err := rdf.NewIRI(iri)
	if err != nil {
		if tw.err == nil {
			tw.err = fmt.Errorf("invalid IRI %q: %w", iri, err)
		}
		return ""
	}
	return "<" + ref.String() + ">"
}

// escapeIRI percent-encodes control characters, space, the IRIREF
// delimiters and any rune of extra.
func escapeIRI(s, extra string) string {
	var sb strings.Builder
	for _, r := range s {
		if r <= 0x20 || r == 0x7f || strings.ContainsRune(iriDelimiters, r) || strings.ContainsRune(extra, r) {
			fmt.Fprintf(&sb, "%%%02X", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
