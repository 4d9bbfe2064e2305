package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
)

// Config is the on-disk configuration, stored as TOML under
// ~/.shoebox/config.toml. Zero values mean "use the default"; Load
// fills them in so callers never see a zero weight or limit.
type Config struct {
	// DataDir is where the SQLite database lives. Empty means
	// ~/.shoebox/data.
	DataDir string `toml:"data_dir,omitempty"`

	Search    SearchConfig    `toml:"search"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

// SearchConfig holds the ranking knobs. Weights are not validated or
// normalized; they are applied exactly as configured.
type SearchConfig struct {
	KeywordWeight  float64 `toml:"keyword_weight"`
	SemanticWeight float64 `toml:"semantic_weight"`
	PrefilterLimit int     `toml:"prefilter_limit"`
}

// EmbeddingConfig selects and tunes the embedding strategies.
type EmbeddingConfig struct {
	// OllamaURL enables the ollama primary strategy when non-empty.
	OllamaURL   string  `toml:"ollama_url,omitempty"`
	OllamaModel string  `toml:"ollama_model,omitempty"`
	RatePerSec  float64 `toml:"rate_per_sec,omitempty"`

	// LexiconPath enables the word-vector fallback when non-empty.
	LexiconPath string `toml:"lexicon_path,omitempty"`

	Dimensions int `toml:"dimensions"`
}

// DefaultDimensions is the embedding width used when the config does
// not set one.
const DefaultDimensions = 768

// ConfigStore loads and saves the configuration file.
type ConfigStore struct {
	filePath string
}

// NewConfigStore creates a config store rooted at configDir. If
// configDir is empty, defaults to ~/.shoebox.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".shoebox")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Path returns the location of the config file.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the configuration, applying defaults for anything unset.
// A missing file is not an error; it yields the defaults.
func (s *ConfigStore) Load() (Config, error) {
	cfg := Config{}

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// First run, nothing saved yet.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// Save persists the configuration with restricted permissions.
func (s *ConfigStore) Save(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = domain.DefaultKeywordWeight
		cfg.Search.SemanticWeight = domain.DefaultSemanticWeight
	}
	if cfg.Search.PrefilterLimit <= 0 {
		cfg.Search.PrefilterLimit = domain.DefaultPrefilterLimit
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = DefaultDimensions
	}
}
