package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvModelPath      = "MODEL_PATH"
	EnvAddr           = "SEMSHAPES_ADDR"
	EnvAllowedOrigins = "SEMSHAPES_ALLOWED_ORIGINS"
)

const (
	defaultModelPath = "model/model.bin"
	defaultOrigin    = "https://semantic-shapes-frontend-production.up.railway.app"
)

// ModelConfig describes the embedding model to load at startup.
type ModelConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Table  string `yaml:"table,omitempty"`
	Limit  int    `yaml:"limit,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	ReadHeaderTimeoutS int      `yaml:"read_header_timeout_secs"`
	ReadTimeoutSecs    int      `yaml:"read_timeout_secs"`
	WriteTimeoutSecs   int      `yaml:"write_timeout_secs"`
	IdleTimeoutSecs    int      `yaml:"idle_timeout_secs"`
	ShutdownTimeoutS   int      `yaml:"shutdown_timeout_secs"`
}

// QueryConfig holds default result sizes used when a request omits them.
type QueryConfig struct {
	SimilarN    int `yaml:"similar_n"`
	ArithmeticN int `yaml:"arithmetic_n"`
	VocabLimit  int `yaml:"vocab_limit"`
}

// TSNEConfig configures the t-SNE projection.
type TSNEConfig struct {
	Perplexity   float64 `yaml:"perplexity"`
	Iterations   int     `yaml:"iterations"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`
}

// ProjectionConfig configures the dimensionality reduction strategies.
type ProjectionConfig struct {
	TSNE TSNEConfig `yaml:"tsne"`
}

// QdrantConfig configures the optional Qdrant similarity index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key,omitempty"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size,omitempty"`
	Recreate    bool   `yaml:"recreate,omitempty"`
}

// IndexConfig selects the similarity index ("memory" or "qdrant").
type IndexConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// DiagnosticsConfig toggles runtime diagnostics.
type DiagnosticsConfig struct {
	Gops bool `yaml:"gops"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Model       ModelConfig       `yaml:"model"`
	Index       IndexConfig       `yaml:"index"`
	Server      ServerConfig      `yaml:"server"`
	Query       QueryConfig       `yaml:"query"`
	Projection  ProjectionConfig  `yaml:"projection"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/semshapes/config.yaml.
// If neither exists, it writes defaults to ~/.config/semshapes/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvModelPath)); v != "" {
		cfg.Model.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAllowedOrigins)); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semshapes", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Model.Path == "" {
		cfg.Model.Path = defaultModelPath
	}
	if cfg.Model.Format == "" {
		cfg.Model.Format = "auto"
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if q := cfg.Index.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "semshapes"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{defaultOrigin}
	}
	if cfg.Server.ReadHeaderTimeoutS == 0 {
		cfg.Server.ReadHeaderTimeoutS = 10
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = 60
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = 60
	}
	if cfg.Server.IdleTimeoutSecs == 0 {
		cfg.Server.IdleTimeoutSecs = 120
	}
	if cfg.Server.ShutdownTimeoutS == 0 {
		cfg.Server.ShutdownTimeoutS = 5
	}
	if cfg.Query.SimilarN == 0 {
		cfg.Query.SimilarN = 10
	}
	if cfg.Query.ArithmeticN == 0 {
		cfg.Query.ArithmeticN = 5
	}
	if cfg.Query.VocabLimit == 0 {
		cfg.Query.VocabLimit = 10000
	}
	tsne := &cfg.Projection.TSNE
	if tsne.Perplexity == 0 {
		tsne.Perplexity = 30
	}
	if tsne.Iterations == 0 {
		tsne.Iterations = 1000
	}
	if tsne.LearningRate == 0 {
		tsne.LearningRate = 200
	}
	if tsne.Seed == 0 {
		tsne.Seed = 42
	}
}
