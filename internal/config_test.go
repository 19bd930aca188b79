package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
	if cfg.TokenTTL <= 0 {
		t.Errorf("ttl not defaulted: %v", cfg.TokenTTL)
	}
}

func TestAuthConfig_RequiredModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "required", JWTSecret: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("required mode with secret should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("required mode should be enabled")
	}
}

func TestAuthConfig_RequiredModeEmptySecret(t *testing.T) {
	cfg := AuthConfig{Mode: "required"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("required mode with empty secret should fail")
	}
	if !strings.Contains(err.Error(), "jwt_secret is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", JWTSecret: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestAIConfig_Defaults(t *testing.T) {
	cfg := AIConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty AI config should pass: %v", err)
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.Timeout)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "required"
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
