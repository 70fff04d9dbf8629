package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ECHO_API_BASE", "")
	t.Setenv("ECHO_WS_BASE", "")
	t.Setenv("ECHO_DATA_DIR", t.TempDir())
	t.Setenv("ECHO_DOMAIN", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q, want default", cfg.APIBase)
	}
	if cfg.Domain != DomainGeneral {
		t.Errorf("Domain = %q, want %q", cfg.Domain, DomainGeneral)
	}
	if cfg.WSBase == "" {
		t.Error("WSBase not derived from API base")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ECHO_API_BASE", "http://localhost:8000")
	t.Setenv("ECHO_WS_BASE", "")
	t.Setenv("ECHO_DATA_DIR", t.TempDir())
	t.Setenv("ECHO_DOMAIN", DomainFinance)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIBase != "http://localhost:8000" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.WSBase != "ws://localhost:8000/ws" {
		t.Errorf("WSBase = %q, want derived ws URL", cfg.WSBase)
	}
	if cfg.Domain != DomainFinance {
		t.Errorf("Domain = %q", cfg.Domain)
	}
}

func TestConfig_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "api_base: https://staging.example.com\ndomain: technical\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := &Config{APIBase: DefaultAPIBase, Domain: DomainGeneral}
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if cfg.APIBase != "https://staging.example.com" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Domain != DomainTechnical {
		t.Errorf("Domain = %q", cfg.Domain)
	}

	// Missing file is fine.
	if err := cfg.loadFile(filepath.Join(dir, "absent.yaml")); err != nil {
		t.Errorf("loadFile() on missing file error = %v", err)
	}

	// Broken YAML is not.
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte(": not yaml"), 0644); err != nil {
		t.Fatalf("failed to write broken file: %v", err)
	}
	if err := cfg.loadFile(broken); err == nil {
		t.Error("loadFile() accepted broken YAML")
	}
}

func TestDeriveWSBase(t *testing.T) {
	tests := []struct {
		apiBase string
		want    string
	}{
		{"https://backend.example.com", "wss://backend.example.com/ws"},
		{"http://localhost:8000", "ws://localhost:8000/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.apiBase, func(t *testing.T) {
			if got := deriveWSBase(tt.apiBase); got != tt.want {
				t.Errorf("deriveWSBase(%q) = %q, want %q", tt.apiBase, got, tt.want)
			}
		})
	}
}
