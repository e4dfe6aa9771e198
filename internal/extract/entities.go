// Package extract pulls appointment entities (date phrase, time phrase,
// department) out of unstructured text. The primary extractor is an LLM;
// a deterministic heuristic extractor backs it up when the model is
// unavailable or comes back empty.
package extract

// Status classifies the outcome of one extraction attempt.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNeedsClarification Status = "needs_clarification"
	StatusFailed             Status = "failed"
)

// Source identifies which producer populated a set of entities. Used for
// diagnostics only, never for decision logic.
type Source string

const (
	SourcePrimary   Source = "primary-model"
	SourceHeuristic Source = "fallback-heuristic"
	SourceMerged    Source = "merged"
)

// Entities is a partial record of appointment fields. An empty string means
// the field was not found; extractors never invent values.
type Entities struct {
	DatePhrase string `json:"date_phrase,omitempty"`
	TimePhrase string `json:"time_phrase,omitempty"`
	Department string `json:"department,omitempty"`
}

// Empty reports whether no field was populated.
func (e Entities) Empty() bool {
	return e.DatePhrase == "" && e.TimePhrase == "" && e.Department == ""
}

// Complete reports whether every field was populated.
func (e Entities) Complete() bool {
	return e.DatePhrase != "" && e.TimePhrase != "" && e.Department != ""
}

// Merge fills the receiver's missing fields from other. It is strictly
// additive: a field already populated is never overwritten.
func (e Entities) Merge(other Entities) Entities {
	if e.DatePhrase == "" {
		e.DatePhrase = other.DatePhrase
	}
	if e.TimePhrase == "" {
		e.TimePhrase = other.TimePhrase
	}
	if e.Department == "" {
		e.Department = other.Department
	}
	return e
}

// Normalized carries canonical values an extractor may have produced on its
// own, used only as a fallback when phrase normalization fails downstream.
type Normalized struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// Outcome is the tagged result of one extraction attempt. StatusFailed is a
// soft failure: the caller routes to the heuristic path instead of erroring.
type Outcome struct {
	Status     Status
	Entities   Entities
	Confidence float64
	Normalized Normalized
	Source     Source
	Reason     string
}

// Failed builds a soft-failure outcome with a diagnostic reason.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Source: SourcePrimary, Reason: reason}
}

// Clamp01 bounds a confidence score to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
