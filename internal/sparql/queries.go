package sparql

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/phuslu/log"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	"github.com/devinalusiana15/KMS-OOP/internal/ontology"
	"github.com/devinalusiana15/KMS-OOP/services"
)

// identifierRegex limits what may be interpolated into a query as a local name.
var identifierRegex = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

var annotationTemplate = template.Must(template.New("annotation").Parse(`PREFIX {{.Prefix}}: <{{.Namespace}}>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?s WHERE {
  {{.Prefix}}:{{.Subject}} rdfs:{{.Property}} ?s
}
`))

var enrichmentTemplate = template.Must(template.New("enrichment").Parse(`PREFIX {{.Prefix}}: <{{.Namespace}}>
SELECT ?p ?o ?s WHERE {
  { {{.Prefix}}:{{.Subject}} ?p ?o .
    FILTER (!CONTAINS(LCASE(STR(?p)), "type"))
  }
  UNION
  { ?s ?p {{.Prefix}}:{{.Subject}} .
    FILTER (!CONTAINS(LCASE(STR(?p)), "type"))
  }
}
`))

type queryParams struct {
	Prefix    string
	Namespace string
	Subject   string
	Property  string
}

// Adapter answers annotation questions and enriches answers from the
// ontology. It fulfills the services.GraphQuerier interface.
type Adapter struct {
	store     services.TripleStore
	prefix    string
	namespace string
}

// NewAdapter creates an Adapter querying store under the document namespace.
func NewAdapter(store services.TripleStore, prefix, namespace string) (*Adapter, error) {
	if store == nil {
		return nil, fmt.Errorf("triple store cannot be nil")
	}
	if !identifierRegex.MatchString(prefix) {
		return nil, fmt.Errorf("invalid prefix %q", prefix)
	}
	if !strings.HasSuffix(namespace, "#") {
		return nil, fmt.Errorf("namespace %q must end with '#'", namespace)
	}
	return &Adapter{store: store, prefix: prefix, namespace: namespace}, nil
}

// Sanitize checks that id can be used as a local name in a query.
func Sanitize(id string) (string, error) {
	if !identifierRegex.MatchString(id) {
		return "", fmt.Errorf("%w: %q", kmserrors.ErrInvalidIdentifier, id)
	}
	return id, nil
}

// AnnotationQuery builds the query for the annotation property of a subject.
func (a *Adapter) AnnotationQuery(subject, property string) (string, error) {
	subject, err := Sanitize(subject)
	if err != nil {
		return "", err
	}
	property, err = Sanitize(property)
	if err != nil {
		return "", err
	}
	return render(annotationTemplate, queryParams{Prefix: a.prefix, Namespace: a.namespace, Subject: subject, Property: property})
}

// EnrichmentQuery builds the query for every non-type statement about subject.
func (a *Adapter) EnrichmentQuery(subject string) (string, error) {
	subject, err := Sanitize(subject)
	if err != nil {
		return "", err
	}
	return render(enrichmentTemplate, queryParams{Prefix: a.prefix, Namespace: a.namespace, Subject: subject})
}

// Annotation joins the nouns with underscores into a subject and returns the
// first value of its annotation property, with newlines turned into <br>.
func (a *Adapter) Annotation(ctx context.Context, nouns []string, label string) string {
	subject := strings.Join(nouns, "_")
	query, err := a.AnnotationQuery(subject, label)
	if err != nil {
		log.Warn().Err(err).Str("label", label).Msg("annotation subject rejected")
		return services.NoAnnotationAnswer
	}

	rows, err := a.store.Query(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Str("label", label).Msg("error executing query")
		return services.QueryFailedAnswer
	}
	if len(rows) == 0 {
		return services.NoAnnotationAnswer
	}

	return strings.ReplaceAll(rows[0]["s"], "\n", "<br>")
}

// Enrichment describes the statements around the answer in the ontology as
// sentence fragments. It returns "" when there are none.
func (a *Adapter) Enrichment(ctx context.Context, answer string) string {
	subject := ontology.Identifier(answer)
	query, err := a.EnrichmentQuery(subject)
	if err != nil {
		log.Debug().Err(err).Str("answer", answer).Msg("answer is not an ontology identifier")
		return ""
	}

	rows, err := a.store.Query(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("answer", answer).Msg("error executing query")
		return services.QueryFailedAnswer
	}

	var sb strings.Builder
	for _, row := range rows {
		predicate := fragment(row["p"])
		if object := fragment(row["o"]); object != "" {
			fmt.Fprintf(&sb, "%s %s %s. ", answer, predicate, object)
		}
		if subj := fragment(row["s"]); subj != "" {
			fmt.Fprintf(&sb, "%s %s %s. ", subj, predicate, answer)
		}
	}
	return sb.String()
}

// fragment reduces a URI to the text after its last '#' with underscores
// shown as spaces. Literals pass through with the same replacement.
func fragment(uri string) string {
	if i := strings.LastIndex(uri, "#"); i >= 0 {
		uri = uri[i+1:]
	}
	return strings.ReplaceAll(uri, "_", " ")
}

func render(t *template.Template, params queryParams) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("rendering %s query: %w", t.Name(), err)
	}
	return sb.String(), nil
}
