package models

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingListURL  = errors.New("list_url is required")
	ErrMissingStore    = errors.New("master_csv is required")
	ErrInvalidLimit    = errors.New("limit must be non-negative")
	ErrInvalidWorkers  = errors.New("workers must be at least 1")
	ErrInvalidChunking = errors.New("chunk_size must be greater than chunk_overlap")
	ErrUnknownBackend  = errors.New("backend must be one of: openai, anthropic, none")
)

// WatchConfig holds the file-based configuration for a run. CLI flags
// override individual values; secrets never live here, they come from
// the environment.
type WatchConfig struct {
	ListURL      string `yaml:"list_url"`
	MasterCSV    string `yaml:"master_csv"`
	PDFDir       string `yaml:"pdf_dir"`
	PayloadPath  string `yaml:"payload_path"`
	EmailBody    string `yaml:"email_body_path"`
	Backend      string `yaml:"backend"`
	Limit        int    `yaml:"limit"`
	Workers      int    `yaml:"workers"`
	MaxChars     int    `yaml:"max_chars"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// DefaultConfig returns the configuration used when no config file is
// supplied.
func DefaultConfig() *WatchConfig {
	return &WatchConfig{
		ListURL:      "https://dot.gov.in/all-circulars",
		MasterCSV:    "data/dot_circulars_master.csv",
		PDFDir:       "data/pdfs",
		PayloadPath:  "dot_new_entries.json",
		EmailBody:    "email_body.txt",
		Backend:      "openai",
		Workers:      4,
		MaxChars:     40000,
		ChunkSize:    6000,
		ChunkOverlap: 400,
	}
}

// LoadConfig reads an optional YAML config file on top of the
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (*WatchConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no run could work with.
func (c *WatchConfig) Validate() error {
	if c.ListURL == "" {
		return ErrMissingListURL
	}
	if c.MasterCSV == "" {
		return ErrMissingStore
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.ChunkOverlap < 0 || c.ChunkSize <= c.ChunkOverlap {
		return ErrInvalidChunking
	}
	switch c.Backend {
	case "openai", "anthropic", "none", "":
	default:
		return ErrUnknownBackend
	}
	return nil
}
