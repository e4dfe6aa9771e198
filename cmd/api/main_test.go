package main

import (
	"testing"

	appconfig "github.com/wolfman30/appointment-parser/internal/config"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

func TestBuildLLMClientNoProviders(t *testing.T) {
	cfg := &appconfig.Config{}
	if c := buildLLMClient(cfg, logging.New("error")); c != nil {
		t.Fatalf("expected nil client with no providers configured")
	}
}

func TestLLMModelIDPrefersBedrock(t *testing.T) {
	cfg := &appconfig.Config{BedrockModelID: "anthropic.claude-3-haiku", GeminiModelID: "gemini-2.5-flash"}
	if got := llmModelID(cfg); got != "anthropic.claude-3-haiku" {
		t.Fatalf("expected bedrock model id, got %q", got)
	}

	cfg.BedrockModelID = ""
	if got := llmModelID(cfg); got != "gemini-2.5-flash" {
		t.Fatalf("expected gemini model id, got %q", got)
	}
}
