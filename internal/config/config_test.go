package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model.Path != "model/model.bin" || cfg.Model.Format != "auto" {
		t.Fatalf("unexpected model defaults: %+v", cfg.Model)
	}
	if cfg.Server.Addr != ":8000" || len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != defaultOrigin {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeoutS != 5 || cfg.Server.ReadHeaderTimeoutS != 10 {
		t.Fatalf("unexpected timeouts: %+v", cfg.Server)
	}
	if cfg.Query.SimilarN != 10 || cfg.Query.ArithmeticN != 5 || cfg.Query.VocabLimit != 10000 {
		t.Fatalf("unexpected query defaults: %+v", cfg.Query)
	}
	if cfg.Projection.TSNE.Seed != 42 || cfg.Projection.TSNE.Perplexity != 30 {
		t.Fatalf("unexpected t-SNE defaults: %+v", cfg.Projection.TSNE)
	}
	if cfg.Index.Type != "memory" || cfg.Diagnostics.Gops {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Index, cfg.Diagnostics)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
model:
  path: /data/glove.txt
  limit: 50000
server:
  addr: 127.0.0.1:9000
index:
  type: qdrant
  qdrant:
    url: http://localhost:6333
    recreate: true
diagnostics:
  gops: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model.Path != "/data/glove.txt" || cfg.Model.Limit != 50000 || cfg.Model.Format != "auto" {
		t.Fatalf("unexpected model: %+v", cfg.Model)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.IdleTimeoutSecs != 120 {
		t.Fatalf("unexpected server: %+v", cfg.Server)
	}
	if cfg.Index.Type != "qdrant" || cfg.Index.Qdrant.Collection != "semshapes" || cfg.Index.Qdrant.TimeoutSecs != 15 || !cfg.Index.Qdrant.Recreate {
		t.Fatalf("unexpected index: %+v", cfg.Index.Qdrant)
	}
	if !cfg.Diagnostics.Gops {
		t.Fatalf("gops should be enabled")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Query.SimilarN = 25
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Query.SimilarN != 25 || loaded.Server.Addr != ":8000" {
		t.Fatalf("unexpected config: %+v", loaded)
	}
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if path != filepath.Join(home, ".config", "semshapes", "config.yaml") {
		t.Fatalf("unexpected path: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("unexpected config: %+v", cfg.Server)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvModelPath, "/models/big.bin")
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvAllowedOrigins, "https://a.test, ,https://b.test")
	cfg := defaultConfig()
	ApplyEnv(cfg)
	if cfg.Model.Path != "/models/big.bin" || cfg.Server.Addr != ":9999" {
		t.Fatalf("env not applied: %+v %+v", cfg.Model, cfg.Server)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}
