package model

// Entity is a named-entity span recognized in a piece of text.
// Start and End are character offsets; End is exclusive.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// VerbLabel marks relation spans produced by the ontology recognizer.
const VerbLabel = "VERB"

// TaggedToken is a token with its part-of-speech tag (Penn Treebank tag set).
type TaggedToken struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// AnalyzedToken is a token as seen by the lemmatizer.
type AnalyzedToken struct {
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	IsStop  bool   `json:"is_stop"`
	IsPunct bool   `json:"is_punct"`
}
