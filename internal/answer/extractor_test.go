package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
	kmstesting "github.com/devinalusiana15/KMS-OOP/internal/testing"
	"github.com/devinalusiana15/KMS-OOP/internal/tokenizer"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
)

// --- Fakes ---

type retrieverCall struct {
	index    string
	keywords []string
	nouns    []string
}

// fakeRetriever serves candidates per exact term, in argument order.
type fakeRetriever struct {
	terms  map[string][]services.Candidate
	lemmas map[string][]services.Candidate
	calls  []retrieverCall
}

func (f *fakeRetriever) SearchTerms(_ context.Context, keywords, nouns []string) ([]services.Candidate, error) {
	f.calls = append(f.calls, retrieverCall{index: "term", keywords: keywords, nouns: nouns})
	return lookup(f.terms, keywords, nouns), nil
}

func (f *fakeRetriever) SearchLemmas(_ context.Context, keywords, nouns []string) ([]services.Candidate, error) {
	f.calls = append(f.calls, retrieverCall{index: "lemma", keywords: keywords, nouns: nouns})
	return lookup(f.lemmas, keywords, nouns), nil
}

func lookup(index map[string][]services.Candidate, sets ...[]string) []services.Candidate {
	out := make([]services.Candidate, 0)
	for _, set := range sets {
		for _, term := range set {
			out = append(out, index[term]...)
		}
	}
	return out
}

type fakeRefinements struct {
	questions []string
	answers   []string
}

func (f *fakeRefinements) AddRefinement(_ context.Context, question, answer string) error {
	f.questions = append(f.questions, question)
	f.answers = append(f.answers, answer)
	return nil
}

type annotationCall struct {
	nouns []string
	label string
}

type fakeGraph struct {
	annotation      string
	enrichment      string
	annotationCalls []annotationCall
	enrichmentCalls []string
}

func (f *fakeGraph) Annotation(_ context.Context, nouns []string, label string) string {
	f.annotationCalls = append(f.annotationCalls, annotationCall{nouns: nouns, label: label})
	return f.annotation
}

func (f *fakeGraph) Enrichment(_ context.Context, answer string) string {
	f.enrichmentCalls = append(f.enrichmentCalls, answer)
	return f.enrichment
}

// --- Helpers ---

type testHarness struct {
	svc         *Service
	tagger      *kmstesting.FakeTagger
	lemmatizer  *kmstesting.FakeLemmatizer
	recognizer  *kmstesting.FakeRecognizer
	retriever   *fakeRetriever
	refinements *fakeRefinements
	graph       *fakeGraph
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		tagger: &kmstesting.FakeTagger{Tags: map[string]string{
			"where": "WRB", "who": "WP", "when": "WRB", "what": "WP", "how": "WRB", "why": "WRB",
			"is": "VBZ", "was": "VBD", "the": "DT", "of": "IN", "to": "TO", "in": "IN",
			"grown": "VBN", "brew": "VB", "roasts": "VBZ", "found": "VBN",
			"toraja": "NNP", "coffee": "NN", "definition": "NN", "arabica": "NN",
			"gayo": "NNP", "luwak": "NNP", "kopi": "NNP",
		}},
		lemmatizer:  &kmstesting.FakeLemmatizer{Lemmas: map[string]string{"grown": "grow", "roasts": "roast"}},
		recognizer:  &kmstesting.FakeRecognizer{Entities: map[string][]model.Entity{}},
		retriever:   &fakeRetriever{terms: map[string][]services.Candidate{}, lemmas: map[string][]services.Candidate{}},
		refinements: &fakeRefinements{},
		graph:       &fakeGraph{annotation: services.NoAnnotationAnswer},
	}

	svc, err := NewService(Dependencies{
		Tokenizer:   tokenizer.WordTokenizer{},
		Tagger:      h.tagger,
		Lemmatizer:  h.lemmatizer,
		Recognizer:  h.recognizer,
		Retriever:   h.retriever,
		Refinements: h.refinements,
		Graph:       h.graph,
		Stopwords:   tokenizer.NewStopwords(nil),
	}, Options{
		DisallowedNoun:     "coffee",
		AnchorTerm:         "coffee",
		AnnotationExcluded: []string{"coffee", "definition"},
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func candidate(id int64, text string) services.Candidate {
	return services.Candidate{SentenceID: id, DocumentID: 1, DocumentName: "coffee.pdf", Text: text, URL: "/documents/1"}
}

// --- Tests ---

func TestNewService_MissingDependency(t *testing.T) {
	_, err := NewService(Dependencies{Tokenizer: tokenizer.WordTokenizer{}}, Options{})
	assert.Error(t, err)
}

func TestAsk_InvalidQuestion(t *testing.T) {
	h := newTestHarness(t)
	h.tagger.Err = errors.New("must not be called")

	ans, err := h.svc.Ask(context.Background(), "Tell me about Toraja")
	require.Error(t, err)
	assert.ErrorIs(t, err, kmserrors.ErrInvalidQuestion)
	assert.Equal(t, services.RouteRejected, ans.Route)
	assert.Equal(t, services.InvalidQuestionAnswer, ans.Answer)
	assert.False(t, ans.Found)
	assert.Empty(t, h.retriever.calls)
	assert.Empty(t, h.refinements.questions)
}

func TestAsk_VerbTierAnswer(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["grown"] = []services.Candidate{candidate(1, "Arabica is grown in Toraja")}
	h.recognizer.Entities["Arabica is grown in Toraja"] = []model.Entity{
		{Text: "Arabica", Label: "VARIETY"},
		{Text: "Toraja", Label: "LOC"},
	}
	h.graph.enrichment = "Toraja produces Arabica. "

	ans, err := h.svc.Ask(context.Background(), "Where is Toraja coffee grown")
	require.NoError(t, err)

	assert.Equal(t, services.RouteExtraction, ans.Route)
	assert.Equal(t, []string{"LOC", "GPE", "CONTINENT", "LOCATION"}, ans.Labels)
	assert.Equal(t, []string{"grown"}, ans.VerbKeywords, "stopword verbs are dropped")
	assert.Equal(t, []string{"Toraja"}, ans.NounKeywords, "the disallowed noun is dropped")
	assert.Equal(t, "Toraja", ans.Answer)
	assert.True(t, ans.Found)
	assert.Len(t, ans.Candidates, 1)
	assert.NotEmpty(t, ans.QueryID)

	assert.Equal(t, []string{"Toraja"}, h.graph.enrichmentCalls)
	assert.Equal(t, "Toraja produces Arabica. ", ans.ExtraInfo)
	require.Len(t, h.retriever.calls, 1)
	assert.Equal(t, retrieverCall{index: "term", keywords: []string{"grown"}}, h.retriever.calls[0])
	assert.Empty(t, h.refinements.questions)
}

func TestAsk_NounTierAnswerSkipsLemmaTiers(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["toraja"] = []services.Candidate{candidate(7, "Toraja lies in Sulawesi")}
	h.recognizer.Entities["Toraja lies in Sulawesi"] = []model.Entity{
		{Text: "Toraja", Label: "GPE"},
		{Text: "Sulawesi", Label: "LOC"},
	}

	ans, err := h.svc.Ask(context.Background(), "Where is Toraja coffee grown")
	require.NoError(t, err)

	assert.Equal(t, "Toraja", ans.Answer)
	require.Len(t, ans.Candidates, 1)
	assert.Equal(t, int64(7), ans.Candidates[0].SentenceID)

	require.Len(t, h.retriever.calls, 2)
	assert.Equal(t, retrieverCall{index: "term", keywords: []string{"grown"}}, h.retriever.calls[0])
	assert.Equal(t, retrieverCall{index: "term", nouns: []string{"toraja"}}, h.retriever.calls[1])
	assert.Empty(t, h.lemmatizer.Calls(), "no lemma tier is queried")
}

func TestAsk_LemmaTierAnswer(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.lemmas["grow"] = []services.Candidate{candidate(3, "Farmers grow Arabica in Gayo")}
	h.recognizer.Entities["Farmers grow Arabica in Gayo"] = []model.Entity{
		{Text: "Arabica", Label: "VARIETY"},
		{Text: "Gayo", Label: "GPE"},
	}

	ans, err := h.svc.Ask(context.Background(), "Where is Toraja coffee grown")
	require.NoError(t, err)

	assert.Equal(t, "Gayo", ans.Answer)
	require.Len(t, h.retriever.calls, 3)
	assert.Equal(t, retrieverCall{index: "lemma", keywords: []string{"grow"}}, h.retriever.calls[2])
	assert.Equal(t, []string{"grown", "Toraja"}, h.lemmatizer.Calls())
}

func TestAsk_LemmaKeywordsAreLowercased(t *testing.T) {
	h := newTestHarness(t)
	h.lemmatizer.Lemmas["grown"] = "Grow"
	h.retriever.lemmas["grow"] = []services.Candidate{candidate(3, "Farmers grow Arabica in Gayo")}
	h.recognizer.Entities["Farmers grow Arabica in Gayo"] = []model.Entity{{Text: "Gayo", Label: "GPE"}}

	ans, err := h.svc.Ask(context.Background(), "Where is Toraja coffee grown")
	require.NoError(t, err)

	assert.Equal(t, "Gayo", ans.Answer)
	require.Len(t, h.retriever.calls, 3)
	assert.Equal(t, retrieverCall{index: "lemma", keywords: []string{"grow"}}, h.retriever.calls[2])
}

func TestAsk_AllTiersEmptyWritesOneRefinement(t *testing.T) {
	h := newTestHarness(t)

	ans, err := h.svc.Ask(context.Background(), "Who roasts Gayo coffee")
	require.NoError(t, err)

	assert.Equal(t, services.NoInformationAnswer, ans.Answer)
	assert.False(t, ans.Found)
	assert.Empty(t, ans.Candidates)
	assert.Equal(t, []string{"Who roasts Gayo coffee"}, h.refinements.questions)
	assert.Equal(t, []string{services.NoInformationAnswer}, h.refinements.answers)
	assert.Len(t, h.retriever.calls, 4)
	assert.Empty(t, h.graph.enrichmentCalls)
	assert.Empty(t, h.recognizer.Calls())
}

func TestAsk_RefinementPerUnmatchedCandidate(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["roasts"] = []services.Candidate{
		candidate(1, "Gayo roasts beans slowly"),
		candidate(2, "Everyone roasts beans"),
	}
	h.recognizer.Entities["Gayo roasts beans slowly"] = []model.Entity{{Text: "Gayo", Label: "GPE"}}

	ans, err := h.svc.Ask(context.Background(), "Who roasts Gayo coffee")
	require.NoError(t, err)

	assert.Equal(t, services.NoInformationAnswer, ans.Answer)
	assert.Len(t, h.refinements.questions, 2)
	assert.Equal(t, []string{"Gayo roasts beans slowly", "Everyone roasts beans"}, h.recognizer.Calls())
	assert.Empty(t, h.graph.enrichmentCalls)
}

func TestAsk_FirstMatchingCandidateStopsExtraction(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["roasts"] = []services.Candidate{
		candidate(1, "Gayo roasts beans slowly"),
		candidate(2, "Dutch traders roasts beans"),
		candidate(3, "Javanese farmers roasts beans"),
	}
	h.recognizer.Entities["Gayo roasts beans slowly"] = []model.Entity{{Text: "Gayo", Label: "GPE"}}
	h.recognizer.Entities["Dutch traders roasts beans"] = []model.Entity{{Text: "Dutch", Label: "NORP"}}

	ans, err := h.svc.Ask(context.Background(), "Who roasts Gayo coffee")
	require.NoError(t, err)

	assert.Equal(t, "Dutch", ans.Answer)
	assert.Len(t, h.refinements.questions, 1, "one refinement for the unmatched first candidate")
	assert.Len(t, h.recognizer.Calls(), 2)
	assert.Len(t, ans.Candidates, 3)
}

func TestAsk_RecognizerFailure(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["roasts"] = []services.Candidate{candidate(1, "Gayo roasts beans slowly")}
	h.recognizer.Err = errors.New("model not loaded")

	_, err := h.svc.Ask(context.Background(), "Who roasts Gayo coffee")
	assert.ErrorIs(t, err, kmserrors.ErrCapability)
}

func TestAsk_AnnotationRoutes(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		reply     string
		wantNouns []string
		wantLabel string
		wantFound bool
	}{
		{
			name:      "definition drops excluded nouns",
			question:  "What is the definition of arabica coffee",
			reply:     "Arabica is a species of coffee.<br>It grows at altitude.",
			wantNouns: []string{"arabica"},
			wantLabel: "definition",
			wantFound: true,
		},
		{
			name:      "anchor term kept when it is the only noun",
			question:  "How to brew coffee",
			reply:     "Grind the beans.",
			wantNouns: []string{"coffee"},
			wantLabel: "direction",
			wantFound: true,
		},
		{
			name:      "no annotation in the graph",
			question:  "What is the definition of kopi luwak",
			reply:     services.NoAnnotationAnswer,
			wantNouns: []string{"kopi", "luwak"},
			wantLabel: "definition",
		},
		{
			name:      "graph query failure",
			question:  "How to brew coffee",
			reply:     services.QueryFailedAnswer,
			wantNouns: []string{"coffee"},
			wantLabel: "direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHarness(t)
			h.graph.annotation = tt.reply

			ans, err := h.svc.Ask(context.Background(), tt.question)
			require.NoError(t, err)

			assert.Equal(t, services.RouteAnnotation, ans.Route)
			assert.Equal(t, tt.reply, ans.Answer)
			assert.Equal(t, tt.wantFound, ans.Found)
			require.Len(t, h.graph.annotationCalls, 1)
			assert.Equal(t, tt.wantNouns, h.graph.annotationCalls[0].nouns)
			assert.Equal(t, tt.wantLabel, h.graph.annotationCalls[0].label)
			assert.Empty(t, h.retriever.calls)
			assert.Empty(t, h.refinements.questions)
		})
	}
}

func TestAsk_WhyQuestionHasNoAnswerType(t *testing.T) {
	h := newTestHarness(t)
	h.retriever.terms["roasts"] = []services.Candidate{candidate(1, "Gayo roasts beans slowly")}
	h.recognizer.Entities["Gayo roasts beans slowly"] = []model.Entity{{Text: "Gayo", Label: "GPE"}}

	ans, err := h.svc.Ask(context.Background(), "Why roasts Gayo")
	require.NoError(t, err)

	assert.Empty(t, ans.Labels)
	assert.Equal(t, services.NoInformationAnswer, ans.Answer)
	assert.Len(t, h.refinements.questions, 1)
}
