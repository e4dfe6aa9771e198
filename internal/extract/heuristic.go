package extract

import (
	"regexp"
	"strings"

	"github.com/wolfman30/appointment-parser/internal/textutil"
)

// departments is the fixed vocabulary checked in order; the first entry
// contained in the text wins the direct-substring pass.
var departments = []string{
	"dentist", "dental", "cardiology", "cardiologist", "doctor", "dermatology",
	"dermatologist", "ophthalmology", "optometrist", "physio", "physiotherapy",
	"orthopedics", "pediatrician", "general practitioner", "gp", "ent",
	"psychiatry", "neurology", "oncology",
}

// ocrFixes repairs whole-word OCR misreads before any parsing. Word-boundary
// anchored and case-insensitive.
var ocrFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bdenfist\b`), "dentist"},
	{regexp.MustCompile(`(?i)\bdenhst\b`), "dentist"},
	{regexp.MustCompile(`(?i)\bdenist\b`), "dentist"},
	{regexp.MustCompile(`(?i)\bnxt\b`), "next"},
	{regexp.MustCompile(`(?i)\bnent\b`), "next"},
	{regexp.MustCompile(`(?i)\bnxtt\b`), "next"},
	{regexp.MustCompile(`(?i)\bnx\b`), "next"},
	{regexp.MustCompile(`\b@\b`), " at "},
}

var (
	weekdayPhraseRE = regexp.MustCompile(`\b(next|this|tomorrow|today)?\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	datePhraseRE    = regexp.MustCompile(`\b(next\s+\w+|this\s+\w+|tomorrow|today|in\s+\d+\s+days|\d{4}-\d{2}-\d{2})\b`)
	clockPhraseRE   = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\b\d{1,2}:\d{2}\b`)
	bareHourRE      = regexp.MustCompile(`\b(\d{1,2})\b`)
	spacesRE        = regexp.MustCompile(`\s+`)
)

// fuzzyAcceptThreshold is the minimum similarity for a fuzzy department hit.
const fuzzyAcceptThreshold = 0.35

const (
	confidenceWithDepartment    = 0.7
	confidenceWithoutDepartment = 0.45
)

// Heuristic is the deterministic fallback extractor: regex pattern families
// for dates and times plus fuzzy dictionary matching for departments. It
// needs no network and no model, so it is the last line of defense when the
// primary extractor is down. Every decision is traceable to one of the
// ordered rules below.
func Heuristic(raw string) Outcome {
	fixed := applyOCRFixes(strings.ToLower(raw))
	s := textutil.Clean(fixed)
	tokens := strings.Fields(s)

	var ents Entities

	// Date: a weekday phrase wins; a bare weekday defaults to "next".
	if m := weekdayPhraseRE.FindStringSubmatch(s); m != nil {
		prefix := strings.TrimSpace(m[1])
		if prefix == "" {
			ents.DatePhrase = "next " + m[2]
		} else {
			ents.DatePhrase = prefix + " " + m[2]
		}
	} else if m := datePhraseRE.FindString(s); m != "" {
		ents.DatePhrase = m
	}

	// Time: clock-like pattern first, then a bare 1-2 digit hour guess.
	if m := clockPhraseRE.FindString(s); m != "" {
		ents.TimePhrase = spacesRE.ReplaceAllString(m, "")
	} else if m := bareHourRE.FindStringSubmatch(s); m != nil {
		ents.TimePhrase = m[1]
	}

	// Department: direct substring in vocabulary order, then fuzzy match
	// over tokens and adjacent-token bigrams.
	for _, d := range departments {
		if strings.Contains(s, d) {
			ents.Department = d
			break
		}
	}
	if ents.Department == "" {
		candidates := candidateSet(tokens)
		bestScore := 0.0
		bestDept := ""
		for _, c := range candidates {
			for _, d := range departments {
				if sim := textutil.Similarity(c, d); sim > bestScore {
					bestScore = sim
					bestDept = d
				}
			}
		}
		if bestScore >= fuzzyAcceptThreshold {
			ents.Department = bestDept
		}
	}
	if ents.Department == "gp" {
		ents.Department = "general practitioner"
	}

	confidence := confidenceWithoutDepartment
	if ents.Department != "" {
		confidence = confidenceWithDepartment
	}

	status := StatusNeedsClarification
	if ents.Department != "" && (ents.DatePhrase != "" || ents.TimePhrase != "") {
		status = StatusOK
	}

	return Outcome{
		Status:     status,
		Entities:   ents,
		Confidence: confidence,
		Source:     SourceHeuristic,
	}
}

func applyOCRFixes(s string) string {
	for _, f := range ocrFixes {
		s = f.re.ReplaceAllString(s, f.repl)
	}
	return s
}

// candidateSet returns all single tokens plus adjacent-token bigrams.
func candidateSet(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
