package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("Timezone = %q, want Asia/Kolkata", cfg.Timezone)
	}
	if cfg.MaxUploadBytes != 5*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 5MB", cfg.MaxUploadBytes)
	}
	if cfg.OCRTimeout != 90*time.Second {
		t.Errorf("OCRTimeout = %v, want 90s", cfg.OCRTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("OCR_ENGINE", "1")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.OCREngine != 1 {
		t.Errorf("OCREngine = %d", cfg.OCREngine)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("LLMTimeout = %v", cfg.LLMTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("OCR_ENGINE", "not-a-number")
	if cfg := Load(); cfg.OCREngine != 2 {
		t.Errorf("OCREngine = %d, want default 2", cfg.OCREngine)
	}
}
