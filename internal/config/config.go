package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Timezone is the IANA zone used to resolve relative date phrases
	// ("today", "next friday") when the request carries no zone of its own.
	Timezone string

	// Upload limits for the image path of /parse-appointment.
	MaxUploadBytes int64

	// OCR.Space provider settings.
	OCRSpaceAPIKey string
	OCRBaseURL     string
	OCREngine      int
	OCRTimeout     time.Duration

	// Primary extractor (LLM) settings. Bedrock is the primary provider,
	// Gemini the fallback; either may be left unconfigured.
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string
	GeminiAPIKey        string
	GeminiModelID       string
	LLMTimeout          time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		Timezone:           getEnv("TIMEZONE", "Asia/Kolkata"),
		MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		OCRSpaceAPIKey:     getEnv("OCR_SPACE_API_KEY", "helloworld"),
		OCRBaseURL:         getEnv("OCR_BASE_URL", "https://api.ocr.space/parse/image"),
		OCREngine:          getEnvAsInt("OCR_ENGINE", 2),
		OCRTimeout:         getEnvAsDuration("OCR_TIMEOUT", 90*time.Second),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
