package model

import "time"

// Document is an uploaded source file. It is created once on upload and never
// mutated afterwards.
type Document struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// SentenceUnit is one period-delimited segment of a document.
// Position is 1-based and unique within the owning document.
type SentenceUnit struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	Text       string `json:"text"`
	Position   int    `json:"position"`
}

// TermKind selects which of the two inverted indexes a term belongs to.
type TermKind int

const (
	// SurfaceTerm is a lowercased whitespace token.
	SurfaceTerm TermKind = iota
	// LemmaTerm is a lemma produced by the lemmatizer.
	LemmaTerm
)

func (k TermKind) String() string {
	if k == LemmaTerm {
		return "lemma"
	}
	return "term"
}

// Term is a unique index string (surface form or lemma, depending on Kind).
type Term struct {
	ID   int64    `json:"id"`
	Term string   `json:"term"`
	Kind TermKind `json:"kind"`
}

// Posting links a term to a sentence in which it occurs.
// One posting exists per occurrence, so a token repeated in a sentence yields
// several postings for the same pair.
type Posting struct {
	ID         int64 `json:"id"`
	TermID     int64 `json:"term_id"`
	SentenceID int64 `json:"sentence_id"`
}

// PostingHit is a posting resolved to the sentence it points at.
type PostingHit struct {
	PostingID    int64
	Term         string
	SentenceID   int64
	DocumentID   int64
	DocumentName string
	Text         string
}

// Refinement records a question that could not be answered, along with the
// best-effort answer at the time. Refinements are append-only.
type Refinement struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
