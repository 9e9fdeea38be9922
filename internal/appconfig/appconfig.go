package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	// EnvAPIURL overrides the API base URL when no config file sets one.
	EnvAPIURL = "SMART_REVIEW_API_URL"

	DefaultTimeout = 30 * time.Second

	BackendFile    = "file"
	BackendKeyring = "keyring"
)

// Config holds all configuration details
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
}

// APIConfig defines how to reach the review API
type APIConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig defines where the session credential is persisted
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	Dir             string `yaml:"dir"`
	KeyringPassword string `yaml:"keyringPassword"`
}

// LoadConfig loads and parses the configuration from a given file path. The
// file is a template over the environment, e.g. {{ .SMART_REVIEW_API_URL }}.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		// Parse the template file
		tmpl, err := template.New(filepath.Base(path)).Option("missingkey=zero").ParseFiles(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("error parsing config file template")
			return nil, err
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
			log.Error().Err(err).Msg("error executing config file template")
			return nil, err
		}

		if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal config YAML")
			return nil, err
		}
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.API.BaseURL == "" {
		c.API.BaseURL = os.Getenv(EnvAPIURL)
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Dir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate user config dir: %w", err)
		}
		c.Storage.Dir = filepath.Join(dir, "smart-review")
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL is not set; set it in the config file or %s", EnvAPIURL)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.baseURL %q must be an http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	switch c.Storage.Backend {
	case BackendFile, BackendKeyring:
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	return nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
