package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "apptparse",
		Subsystem: "extract",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM entity-extraction completions",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
	},
	[]string{"model", "status"},
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "apptparse",
		Subsystem: "extract",
		Name:      "llm_tokens_total",
		Help:      "Tokens used by the LLM extractor",
	},
	[]string{"model", "type"}, // type: input, output, total
)

func init() {
	prometheus.MustRegister(llmLatency)
	prometheus.MustRegister(llmTokensTotal)
}

const systemPromptTemplate = "You are an appointment extraction assistant. " +
	"Today's date is %s. Your timezone is %s. Return EXACTLY JSON (no extra text). " +
	"Keys: entities (date_phrase, time_phrase, department), entities_confidence (0 to 1), " +
	"optionally normalized (date as YYYY-MM-DD, time as HH:MM). " +
	"If ambiguous or missing, set status to needs_clarification and include a message."

// LLMExtractor is the primary, model-based entity extractor. All failures —
// transport, timeout, non-parseable output — surface as StatusFailed
// outcomes, never as errors or panics, so the orchestrator can route to the
// deterministic heuristic.
type LLMExtractor struct {
	client  LLMClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewLLMExtractor builds an extractor over client. A nil client is allowed:
// the extractor then degrades to a local regex pass so the service stays
// functional with zero provider credentials.
func NewLLMExtractor(client LLMClient, model string, timeout time.Duration, logger *logging.Logger) *LLMExtractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMExtractor{client: client, model: model, timeout: timeout, logger: logger}
}

// Extract asks the model for appointment entities in strict JSON.
func (e *LLMExtractor) Extract(ctx context.Context, text, todayISO, timezone string) Outcome {
	if e.client == nil {
		return localRegexExtract(text)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Complete(callCtx, LLMRequest{
		Model:  e.model,
		System: []string{fmt.Sprintf(systemPromptTemplate, todayISO, timezone)},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "Extract appointment entities from the following text. Return ONLY JSON (no commentary).\n\nText:\n" + text},
		},
		MaxTokens:   400,
		Temperature: 0,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues(e.model, status).Observe(time.Since(start).Seconds())
	if resp.Usage.InputTokens > 0 {
		llmTokensTotal.WithLabelValues(e.model, "input").Add(float64(resp.Usage.InputTokens))
	}
	if resp.Usage.OutputTokens > 0 {
		llmTokensTotal.WithLabelValues(e.model, "output").Add(float64(resp.Usage.OutputTokens))
	}
	if resp.Usage.TotalTokens > 0 {
		llmTokensTotal.WithLabelValues(e.model, "total").Add(float64(resp.Usage.TotalTokens))
	}
	if err != nil {
		e.logger.Warn("llm extraction failed", "model", e.model, "error", err)
		return Failed("llm_request_failed: " + err.Error())
	}

	outcome, perr := parseModelJSON(resp.Text)
	if perr != nil {
		e.logger.Warn("llm returned non-json output", "model", e.model, "error", perr)
		return Failed("llm_non_json")
	}
	return outcome
}

// parseModelJSON decodes the model's JSON reply, tolerating markdown fences
// and surrounding prose.
func parseModelJSON(raw string) (Outcome, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	jsonText := raw
	if !strings.HasPrefix(jsonText, "{") {
		start := strings.Index(jsonText, "{")
		end := strings.LastIndex(jsonText, "}")
		if start >= 0 && end > start {
			jsonText = jsonText[start : end+1]
		}
	}

	var parsed struct {
		Status             string     `json:"status"`
		Message            string     `json:"message"`
		Entities           Entities   `json:"entities"`
		EntitiesConfidence float64    `json:"entities_confidence"`
		Normalized         Normalized `json:"normalized"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return Outcome{}, fmt.Errorf("extract: llm reply parse: %w", err)
	}

	status := StatusOK
	if parsed.Status == string(StatusNeedsClarification) {
		status = StatusNeedsClarification
	}
	return Outcome{
		Status:     status,
		Entities:   parsed.Entities,
		Confidence: Clamp01(parsed.EntitiesConfidence),
		Normalized: parsed.Normalized,
		Source:     SourcePrimary,
		Reason:     parsed.Message,
	}, nil
}

var (
	localDeptRE   = regexp.MustCompile(`\b(dentist|dental|cardio|cardiologist|doctor|derma|dermatology|eye|ophthalmologist|optometrist|physio|physiotherapy|orthopedic|orthopedics|skin|general practitioner|gp|pediatrician|pediatrics)\b`)
	localTimeRE   = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\b\d{1,2}:\d{2}\b`)
	localDateRE   = regexp.MustCompile(`\b(next\s+\w+|this\s+\w+|tomorrow|today|tonight|in\s+\d+\s+days|\d{4}-\d{2}-\d{2})\b`)
	numericDateRE = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

const localRegexConfidence = 0.6

// localRegexExtract is the credential-free degradation of the primary
// extractor: a single cheap regex pass, less thorough than the heuristic
// fallback and with its own flat confidence.
func localRegexExtract(text string) Outcome {
	s := strings.ToLower(text)

	var ents Entities
	ents.Department = localDeptRE.FindString(s)
	ents.TimePhrase = localTimeRE.FindString(s)
	ents.DatePhrase = localDateRE.FindString(s)
	if ents.DatePhrase == "" {
		ents.DatePhrase = numericDateRE.FindString(s)
	}

	return Outcome{
		Status:     StatusOK,
		Entities:   ents,
		Confidence: localRegexConfidence,
		Source:     SourcePrimary,
	}
}
