package appointment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/appointment-parser/pkg/logging"
)

const (
	msgNoInput         = "Provide text or an image file (field name: image)"
	msgInvalidFileType = "Invalid file type. Only JPG, PNG, WEBP, TIFF allowed."
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/tiff": true,
}

// Handler handles HTTP requests for appointment parsing.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
	logger         *logging.Logger
}

// NewHandler creates a new appointment handler.
func NewHandler(svc *Service, maxUploadBytes int64, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ParseAppointment handles POST /parse-appointment requests. The body is
// either multipart/form-data with an image field (or a text field), or
// JSON/form-encoded text.
func (h *Handler) ParseAppointment(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Parse(r.Context(), in)
	if errors.Is(err, ErrNoInput) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Message: msgNoInput})
		return
	}
	if err != nil {
		h.logger.Error("parse pipeline failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Status: "error", Message: err.Error()})
		return
	}

	if res.Appointment != nil {
		respondJSON(w, http.StatusOK, OKResponse{
			Appointment: *res.Appointment,
			Status:      res.Status,
			Step1: Step1{
				RawText:    res.RawText,
				Confidence: round2(res.OCRConfidence),
			},
			Entities:                res.Entities,
			EntitiesConfidence:      res.EntitiesConfidence,
			NormalizationConfidence: round2(res.NormalizationConfidence),
		})
		return
	}

	respondJSON(w, http.StatusOK, ClarificationResponse{
		Status:  res.Status,
		Message: res.Message,
		Details: ClarificationDetails{
			RawText:        res.RawText,
			Entities:       res.Entities,
			NormalizedDate: res.NormalizedDate,
			NormalizedTime: res.NormalizedTime,
		},
	})
}

// readInput pulls text or image bytes out of the request. On a bad upload
// it writes the 400 itself and reports ok=false.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			h.logger.Warn("multipart parse failed", "error", err)
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Upload too large or malformed"})
			return in, false
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			in.Text = r.FormValue("text")
			return in, true
		}
		defer file.Close()
		if !allowedImageTypes[strings.ToLower(header.Header.Get("Content-Type"))] {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Message: msgInvalidFileType})
			return in, false
		}
		data, err := io.ReadAll(file)
		if err != nil {
			h.logger.Error("failed to read upload", "error", err)
			respondJSON(w, http.StatusInternalServerError, ErrorResponse{Status: "error", Message: "Failed to read upload"})
			return in, false
		}
		h.logger.Info("image upload received", "filename", header.Filename, "size", len(data))
		in.Image = data
		return in, true

	case strings.HasPrefix(contentType, "application/json"):
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Invalid request body"})
			return in, false
		}
		in.Text = body.Text
		return in, true

	default:
		if err := r.ParseForm(); err == nil {
			in.Text = r.FormValue("text")
		}
		return in, true
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
