package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HIPCHAT_SERVER", "api.example.com")
	t.Setenv("HIPCHAT_TOKEN", "tok")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %s, want 10s", cfg.HTTPTimeout)
	}
	if cfg.NotifyTriggeringUser {
		t.Error("NotifyTriggeringUser should default to false")
	}
	if cfg.RabbitMQURL != "" {
		t.Errorf("RabbitMQURL = %q, want empty", cfg.RabbitMQURL)
	}
	if cfg.RabbitMQPrefetch != 1 {
		t.Errorf("RabbitMQPrefetch = %d, want 1", cfg.RabbitMQPrefetch)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HIPCHAT_ROOMS", "100, General Room")
	t.Setenv("HIPCHAT_USERS", "@bob")
	t.Setenv("HIPCHAT_NOTIFY_TRIGGERING_USER", "true")
	t.Setenv("HIPCHAT_HTTP_TIMEOUT", "3s")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HipChatRooms != "100, General Room" {
		t.Errorf("HipChatRooms = %q", cfg.HipChatRooms)
	}
	if cfg.HipChatUsers != "@bob" {
		t.Errorf("HipChatUsers = %q", cfg.HipChatUsers)
	}
	if !cfg.NotifyTriggeringUser {
		t.Error("NotifyTriggeringUser = false, want true")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %s, want 3s", cfg.HTTPTimeout)
	}
	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("HIPCHAT_SERVER", "api.example.com")
	t.Setenv("HIPCHAT_TOKEN", "restored-after-test")
	if err := os.Unsetenv("HIPCHAT_TOKEN"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HIPCHAT_HTTP_TIMEOUT", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero timeout, got nil")
	}
}
