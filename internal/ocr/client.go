// Package ocr turns uploaded images into text via the OCR.Space HTTP API.
// Several preprocessed variants of the image are tried before falling back
// to the raw upload, and finally to a local salvage pass, so the caller
// always gets text plus a confidence for how it was obtained.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/appointment-parser/pkg/logging"
)

// Confidence levels by acquisition path.
const (
	ConfidenceVariant = 0.78 // a preprocessed variant parsed cleanly
	ConfidenceRaw     = 0.7  // the unprocessed upload parsed cleanly
	ConfidenceSalvage = 0.25 // local salvage of whatever text survived
)

// Result is the outcome of one OCR run. Text may be empty when nothing
// could be recovered.
type Result struct {
	Text       string
	Confidence float64
}

// Client is an HTTP client for the OCR.Space parse endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	engine     int
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new OCR.Space client. An empty apiKey falls back to
// the provider's public demo key.
func NewClient(baseURL, apiKey string, engine int, opts ...ClientOption) *Client {
	if apiKey == "" {
		apiKey = "helloworld"
	}
	if engine <= 0 {
		engine = 2
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		engine:  engine,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run extracts text from image. It never returns an error: remote failures
// step down through the fallback ladder and end at a low-confidence local
// salvage of the input bytes.
func (c *Client) Run(ctx context.Context, image []byte) Result {
	if len(image) == 0 {
		return Result{}
	}

	for _, v := range Variants(image) {
		c.logger.Debug("trying ocr variant", "variant", v.Name, "bytes", len(v.PNG))
		text, err := c.parse(ctx, v.PNG, "upload.png")
		if err != nil {
			c.logger.Warn("ocr variant failed", "variant", v.Name, "error", err)
			continue
		}
		if text != "" {
			c.logger.Info("ocr variant succeeded", "variant", v.Name, "text_length", len(text))
			return Result{Text: text, Confidence: ConfidenceVariant}
		}
	}

	// Last remote resort: send the upload untouched.
	text, err := c.parse(ctx, image, "upload.png")
	if err == nil && text != "" {
		return Result{Text: text, Confidence: ConfidenceRaw}
	}
	if err != nil {
		c.logger.Warn("raw ocr attempt failed", "error", err)
	}

	return Result{Text: Salvage(image), Confidence: ConfidenceSalvage}
}

type parsedResult struct {
	ParsedText        string `json:"ParsedText"`
	FileParseExitCode int    `json:"FileParseExitCode"`
}

type spaceResponse struct {
	ParsedResults         []parsedResult  `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// parse uploads one image to OCR.Space and returns the trimmed parsed text.
// Empty text with a nil error means the provider parsed nothing.
func (c *Client) parse(ctx context.Context, image []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("ocr: create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("ocr: write form file: %w", err)
	}
	_ = w.WriteField("language", "eng")
	_ = w.WriteField("isOverlayRequired", "false")
	_ = w.WriteField("OCREngine", strconv.Itoa(c.engine))
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ocr: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("ocr: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ocr: unexpected status %d: %s", resp.StatusCode, string(b))
	}

	var parsed spaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ocr: decode response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr: provider error: %s", string(parsed.ErrorMessage))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.ParsedResults[0].ParsedText), nil
}
