// Package appointment hosts the extraction orchestrator: one stateless
// pipeline per request that turns raw text or an uploaded image into a
// normalized appointment, or a request for clarification.
package appointment

import "github.com/wolfman30/appointment-parser/internal/extract"

// Appointment is the normalized result emitted on an ok verdict.
type Appointment struct {
	Department string `json:"department"`
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"` // HH:MM, 24-hour
	TZ         string `json:"tz"`   // IANA zone name
}

// Step1 reports how the raw text was acquired.
type Step1 struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// OKResponse is the 200 body for a fully resolved appointment.
type OKResponse struct {
	Appointment             Appointment      `json:"appointment"`
	Status                  extract.Status   `json:"status"`
	Step1                   Step1            `json:"step1"`
	Entities                extract.Entities `json:"entities"`
	EntitiesConfidence      float64          `json:"entities_confidence"`
	NormalizationConfidence float64          `json:"normalization_confidence"`
}

// ClarificationDetails carries whatever partial state exists so a human or
// a follow-up turn can disambiguate.
type ClarificationDetails struct {
	RawText        string           `json:"raw_text"`
	Entities       extract.Entities `json:"entities"`
	NormalizedDate string           `json:"normalizedDate"`
	NormalizedTime string           `json:"normalizedTime"`
}

// ClarificationResponse is the 200 body for an ambiguous extraction.
type ClarificationResponse struct {
	Status  extract.Status       `json:"status"`
	Message string               `json:"message"`
	Details ClarificationDetails `json:"details"`
}

// ErrorResponse is the body for 400/500 failures.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
