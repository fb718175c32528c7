package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"golang.org/x/exp/mmap"
)

// Supported model formats.
const (
	FormatAuto     = "auto"
	FormatWord2Vec = "word2vec"
	FormatSQLite   = "sqlite"
)

// LoadConfig describes where and how to load the model.
type LoadConfig struct {
	// Path is a local file path or a URL understood by afs (mem://, gs://, s3://, http://...).
	Path   string
	Format string
	// Table is the SQLite table name, used by the sqlite format.
	Table string
	// Limit caps the number of words read when positive.
	Limit int
	Logf  func(format string, args ...any)
}

func (c *LoadConfig) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Load reads the model described by cfg.
func Load(ctx context.Context, cfg LoadConfig) (*Table, error) {
	if cfg.Path == "" {
		return nil, errors.New("embedding: model path is empty")
	}
	switch resolveFormat(cfg) {
	case FormatSQLite:
		if remote(cfg.Path) {
			return nil, fmt.Errorf("embedding: sqlite models must be local files: %s", cfg.Path)
		}
		return LoadSQLite(ctx, localPath(cfg.Path), cfg.Table, cfg.Limit)
	case FormatWord2Vec:
		if remote(cfg.Path) {
			return loadRemoteWord2Vec(ctx, cfg.Path, cfg.Limit)
		}
		return loadLocalWord2Vec(localPath(cfg.Path), cfg.Limit)
	default:
		return nil, fmt.Errorf("embedding: unsupported model format %q", cfg.Format)
	}
}

// LoadOrFallback loads the configured model, or the synthetic fallback table when loading fails.
// It always returns a usable table.
func LoadOrFallback(ctx context.Context, cfg LoadConfig) *Table {
	t, err := Load(ctx, cfg)
	if err == nil {
		cfg.logf("Loaded model with %d words and %d dimensions from %s", t.VocabSize(), t.Dimensions(), cfg.Path)
		return t
	}
	if errors.Is(err, os.ErrNotExist) {
		cfg.logf("warning: Model file not found at %q. Will use fallback model for testing.", cfg.Path)
	} else {
		cfg.logf("error: Error loading model: %v", err)
	}
	t = Fallback()
	cfg.logf("warning: Created fallback model with %d words and %d dimensions", t.VocabSize(), t.Dimensions())
	return t
}

func resolveFormat(cfg LoadConfig) string {
	switch strings.ToLower(cfg.Format) {
	case "", FormatAuto:
		switch strings.ToLower(filepath.Ext(cfg.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			return FormatSQLite
		}
		return FormatWord2Vec
	default:
		return strings.ToLower(cfg.Format)
	}
}

func remote(path string) bool {
	scheme := url.Scheme(path, "")
	return scheme != "" && scheme != file.Scheme
}

func localPath(path string) string {
	if url.Scheme(path, "") == file.Scheme {
		return url.Path(path)
	}
	return path
}

func loadLocalWord2Vec(path string, limit int) (*Table, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ParseWord2Vec(io.NewSectionReader(r, 0, int64(r.Len())), limit)
}

func loadRemoteWord2Vec(ctx context.Context, URL string, limit int) (*Table, error) {
	fs := afs.New()
	if ok, _ := fs.Exists(ctx, URL); !ok {
		return nil, fmt.Errorf("embedding: %s: %w", URL, os.ErrNotExist)
	}
	reader, err := fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("embedding: open %s: %w", URL, err)
	}
	defer reader.Close()
	return ParseWord2Vec(reader, limit)
}
