package embedding

import (
	"errors"
	"fmt"
)

// Model types reported by Table.ModelType.
const (
	ModelWord2Vec = "word2vec"
	ModelSQLite   = "sqlite"
	ModelFallback = "fallback"
)

// Table is an immutable word to vector lookup table.
// Words keep the order in which they were loaded.
type Table struct {
	modelType  string
	dimensions int
	words      []string
	vectors    [][]float32
	index      map[string]int
}

// NewTable builds a table from parallel words and vectors. A repeated word keeps its first vector.
func NewTable(modelType string, words []string, vectors [][]float32) (*Table, error) {
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("embedding: words and vectors length mismatch: %d != %d", len(words), len(vectors))
	}
	if len(words) == 0 {
		return nil, errors.New("embedding: empty table")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("embedding: zero dimensions")
	}
	t := &Table{
		modelType:  modelType,
		dimensions: dim,
		words:      make([]string, 0, len(words)),
		vectors:    make([][]float32, 0, len(words)),
		index:      make(map[string]int, len(words)),
	}
	for i, w := range words {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("embedding: vector for %q has %d dimensions, want %d", w, len(vectors[i]), dim)
		}
		t.add(w, vectors[i])
	}
	return t, nil
}

func (t *Table) add(word string, vec []float32) {
	if _, ok := t.index[word]; ok {
		return
	}
	t.index[word] = len(t.words)
	t.words = append(t.words, word)
	t.vectors = append(t.vectors, vec)
}

// ModelType names the source the table was loaded from.
func (t *Table) ModelType() string { return t.modelType }

// Dimensions returns the length of every vector in the table.
func (t *Table) Dimensions() int { return t.dimensions }

// VocabSize returns the number of distinct words.
func (t *Table) VocabSize() int { return len(t.words) }

// Words returns the vocabulary in load order. The slice must not be modified.
func (t *Table) Words() []string { return t.words }

// Vectors returns the vectors parallel to Words. The slices must not be modified.
func (t *Table) Vectors() [][]float32 { return t.vectors }

// Contains reports whether word is in the vocabulary (exact, case-sensitive).
func (t *Table) Contains(word string) bool {
	_, ok := t.index[word]
	return ok
}

// Vector returns the stored vector for word. The slice must not be modified.
func (t *Table) Vector(word string) ([]float32, bool) {
	i, ok := t.index[word]
	if !ok {
		return nil, false
	}
	return t.vectors[i], true
}
