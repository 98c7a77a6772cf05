package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadArgsFlagsWin(t *testing.T) {
	cfg, err := LoadArgs(
		[]string{"-server", "https://flag.example.com", "-team", "flagteam", "-user", "flo"},
		[]string{"MATTERHORN_SERVER=https://env.example.com", "MATTERHORN_TEAM=envteam"},
	)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.ServerURL != "https://flag.example.com" {
		t.Fatalf("flag must override environment, got %q", cfg.App.ServerURL)
	}
	if cfg.App.Team != "flagteam" {
		t.Fatalf("expected flagteam, got %q", cfg.App.Team)
	}
	if cfg.App.Username != "flo" {
		t.Fatalf("expected flo, got %q", cfg.App.Username)
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{
		"MATTERHORN_SERVER=https://env.example.com/",
		"MATTERHORN_TEAM=envteam",
		"MATTERHORN_USER=enid",
		"MATTERHORN_TRACE=1",
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.ServerURL != "https://env.example.com" {
		t.Fatalf("expected trimmed env server, got %q", cfg.App.ServerURL)
	}
	if !cfg.Logging.Trace {
		t.Fatalf("expected trace enabled from environment")
	}
}

func TestLoadArgsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		`server = "https://file.example.com"`,
		`team = "fileteam"`,
		`username = "fred"`,
		`password = "secret"`,
		`trace = true`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadArgs([]string{"-config", path}, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.ServerURL != "https://file.example.com" {
		t.Fatalf("expected file server, got %q", cfg.App.ServerURL)
	}
	if cfg.App.Password != "secret" {
		t.Fatalf("expected file password")
	}
	if !cfg.Logging.Trace {
		t.Fatalf("expected trace from file")
	}

	// Flags still override the file.
	cfg, err = LoadArgs([]string{"-config", path, "-team", "other"}, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Team != "other" {
		t.Fatalf("flag must override file, got %q", cfg.App.Team)
	}
}

func TestLoadArgsMissingExplicitConfigFileErrors(t *testing.T) {
	if _, err := LoadArgs([]string{"-config", "/nonexistent/config.toml"}, nil); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := LoadArgs(
		[]string{"-server", "https://ok.example.com", "-team", "t", "-user", "u"},
		nil,
	)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.App.ServerURL = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing server")
	}

	cfg.App.ServerURL = "chat.example.com"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
}
