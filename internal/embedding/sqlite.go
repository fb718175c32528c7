package embedding

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/viant/sqlite-vec/engine"
	"github.com/viant/sqlite-vec/vector"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteTable holds one row per word: (word TEXT, embedding BLOB).
const DefaultSQLiteTable = "words"

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads words and little-endian float32 embedding blobs from table in rowid order.
func LoadSQLite(ctx context.Context, path, table string, limit int) (*Table, error) {
	if table == "" {
		table = DefaultSQLiteTable
	}
	if !identifierRe.MatchString(table) {
		return nil, fmt.Errorf("embedding: invalid table name %q", table)
	}
	// sqlite creates missing files on open
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, fmt.Errorf("embedding: open %s: %w", path, err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT word, embedding FROM %s ORDER BY rowid", table)
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("embedding: query %s: %w", table, err)
	}
	defer rows.Close()

	var words []string
	var vectors [][]float32
	for rows.Next() {
		var word string
		var blob []byte
		if err := rows.Scan(&word, &blob); err != nil {
			return nil, err
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding: decode %q: %w", word, err)
		}
		words = append(words, word)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewTable(ModelSQLite, words, vectors)
}
