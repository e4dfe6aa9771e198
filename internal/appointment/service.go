package appointment

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/appointment-parser/internal/extract"
	"github.com/wolfman30/appointment-parser/internal/normalize"
	"github.com/wolfman30/appointment-parser/internal/observability/metrics"
	"github.com/wolfman30/appointment-parser/internal/ocr"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

// ErrNoInput is returned when neither text nor an image was supplied.
var ErrNoInput = errors.New("appointment: no text or image provided")

// OCRRunner acquires text from an uploaded image.
type OCRRunner interface {
	Run(ctx context.Context, image []byte) ocr.Result
}

// PrimaryExtractor is the model-based entity extractor. Failures arrive as
// StatusFailed outcomes, never as panics.
type PrimaryExtractor interface {
	Extract(ctx context.Context, text, todayISO, timezone string) extract.Outcome
}

// Input is one parse request: exactly one of Text or Image should be set.
// Image wins when both are present.
type Input struct {
	Text  string
	Image []byte
}

// Result is the terminal state of one pipeline run.
type Result struct {
	Status                  extract.Status
	Message                 string
	Appointment             *Appointment // set only on StatusOK
	RawText                 string
	OCRConfidence           float64
	Entities                extract.Entities
	EntitiesConfidence      float64
	NormalizationConfidence float64
	NormalizedDate          string
	NormalizedTime          string
}

// Service runs the extraction pipeline. Each call is an independent,
// stateless run; the only shared state is read-only configuration.
type Service struct {
	ocr      OCRRunner
	primary  PrimaryExtractor
	timezone string
	logger   *logging.Logger
	metrics  *metrics.PipelineMetrics
	now      func() time.Time
}

// ServiceOption is a functional option for configuring the Service.
type ServiceOption func(*Service)

// WithClock overrides the reference-time source, for deterministic tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics attaches pipeline metrics. A nil metrics value is allowed.
func WithMetrics(m *metrics.PipelineMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the orchestrator. timezone is the IANA zone all dates
// resolve against; an unknown zone falls back to UTC downstream.
func NewService(ocrRunner OCRRunner, primary PrimaryExtractor, timezone string, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		ocr:      ocrRunner,
		primary:  primary,
		timezone: timezone,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse runs the full pipeline: acquire text, extract entities, merge the
// heuristic fallback, normalize, blend confidence, decide. The only error
// it returns is ErrNoInput; everything else terminates in a Result.
func (s *Service) Parse(ctx context.Context, in Input) (*Result, error) {
	inputType := "text"
	rawText := in.Text
	ocrConfidence := 1.0

	switch {
	case len(in.Image) > 0:
		inputType = "image"
		start := time.Now()
		res := s.ocr.Run(ctx, in.Image)
		s.metrics.ObserveOCRLatency(ocrOutcomeLabel(res.Confidence), time.Since(start).Seconds())
		s.logger.Info("ocr complete", "confidence", res.Confidence, "text_length", len(res.Text))
		rawText = res.Text
		ocrConfidence = res.Confidence
	case in.Text != "":
	default:
		return nil, ErrNoInput
	}

	loc := normalize.Location(s.timezone)
	ref := s.now()
	todayISO := ref.In(loc).Format("2006-01-02")

	start := time.Now()
	outcome := s.primary.Extract(ctx, rawText, todayISO, s.timezone)
	s.metrics.ObserveStageLatency("primary_extract", time.Since(start).Seconds())

	// A dead or empty-handed primary hands the whole request to the
	// deterministic heuristic.
	usedHeuristic := false
	if outcome.Status == extract.StatusFailed ||
		(outcome.Status == extract.StatusNeedsClarification && outcome.Entities.Empty()) {
		s.logger.Info("primary extractor unusable, running heuristic", "reason", outcome.Reason)
		outcome = extract.Heuristic(rawText)
		usedHeuristic = true
	}

	// Field-level merge: the heuristic fills gaps but never overwrites.
	ents := outcome.Entities
	if !ents.Complete() && !usedHeuristic {
		ents = ents.Merge(extract.Heuristic(rawText).Entities)
	}
	if ents.DatePhrase == "" {
		ents.DatePhrase = recoverWeekdayPhrase(rawText)
	}
	if ents.Department == "" && mentionsDental(rawText) {
		ents.Department = "dentist"
	}

	normalizedDate := normalize.ResolveDate(ref, ents.DatePhrase, s.timezone)
	normalizedTime := normalize.ResolveTime(ents.TimePhrase)
	if normalizedDate == "" && normalize.IsValidISODate(outcome.Normalized.Date) {
		normalizedDate = outcome.Normalized.Date
	}
	if normalizedTime == "" {
		normalizedTime = outcome.Normalized.Time
	}

	res := &Result{
		RawText:                 rawText,
		OCRConfidence:           ocrConfidence,
		Entities:                ents,
		EntitiesConfidence:      outcome.Confidence,
		NormalizationConfidence: BlendConfidence(ocrConfidence, outcome.Confidence),
		NormalizedDate:          normalizedDate,
		NormalizedTime:          normalizedTime,
	}

	if normalizedDate == "" || normalizedTime == "" || ents.Department == "" {
		res.Status = extract.StatusNeedsClarification
		res.Message = "Ambiguous date/time or department"
		s.metrics.ObserveRequest(inputType, string(res.Status))
		s.logger.Info("parse needs clarification",
			"date", normalizedDate, "time", normalizedTime, "department", ents.Department)
		return res, nil
	}

	res.Status = extract.StatusOK
	res.Appointment = &Appointment{
		Department: titleCase(ents.Department),
		Date:       normalizedDate,
		Time:       normalizedTime,
		TZ:         s.timezone,
	}
	s.metrics.ObserveRequest(inputType, string(res.Status))
	s.logger.Info("parse ok",
		"department", res.Appointment.Department, "date", normalizedDate, "time", normalizedTime)
	return res, nil
}

var (
	bareWeekdayRE    = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativePrefixRE = regexp.MustCompile(`\b(next|this|tomorrow|today)\b`)
	dentalKeywords   = []string{"dent", "tooth", "dental"}
)

// recoverWeekdayPhrase is the last-chance date recovery: any bare weekday
// in the raw text becomes a phrase, defaulting the prefix to "next".
func recoverWeekdayPhrase(raw string) string {
	s := strings.ToLower(raw)
	wk := bareWeekdayRE.FindString(s)
	if wk == "" {
		return ""
	}
	if p := relativePrefixRE.FindString(s); p != "" {
		return p + " " + wk
	}
	return "next " + wk
}

func mentionsDental(raw string) bool {
	s := strings.ToLower(raw)
	for _, kw := range dentalKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first character only; matching stays
// case-insensitive everywhere upstream.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ocrOutcomeLabel(confidence float64) string {
	switch confidence {
	case ocr.ConfidenceVariant:
		return "variant"
	case ocr.ConfidenceRaw:
		return "raw"
	default:
		return "salvage"
	}
}
