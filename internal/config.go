package internal

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the public backend used when nothing else is
// configured.
const DefaultAPIBase = "https://echo-backend-1-ubeb.onrender.com"

// Config holds the client configuration. Precedence, lowest to highest:
// built-in defaults, the YAML config file, environment variables, command
// flags (applied by the caller).
type Config struct {
	APIBase string `yaml:"api_base"`
	WSBase  string `yaml:"ws_base"`
	DataDir string `yaml:"data_dir"`
	Domain  string `yaml:"domain"`
}

// LoadConfig assembles the effective configuration.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIBase: DefaultAPIBase,
		Domain:  DomainGeneral,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfg.DataDir = filepath.Join(home, ".echo-cli")

	if err := cfg.loadFile(filepath.Join(cfg.DataDir, "config.yaml")); err != nil {
		return nil, err
	}

	cfg.APIBase = getEnv("ECHO_API_BASE", cfg.APIBase)
	cfg.WSBase = getEnv("ECHO_WS_BASE", cfg.WSBase)
	cfg.DataDir = getEnv("ECHO_DATA_DIR", cfg.DataDir)
	cfg.Domain = getEnv("ECHO_DOMAIN", cfg.Domain)

	if cfg.WSBase == "" {
		cfg.WSBase = deriveWSBase(cfg.APIBase)
	}
	return cfg, nil
}

// loadFile merges an optional YAML config file. A missing file is fine;
// an unreadable one is not.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ParseError{Source: "config", Key: path, Err: err}
	}
	return nil
}

// DatabasePath returns the location of the local key-value database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "echo.db")
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// deriveWSBase maps an HTTP base URL onto its websocket endpoint.
func deriveWSBase(apiBase string) string {
	ws := apiBase
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/ws"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
