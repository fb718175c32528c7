package service

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"semshapes/internal/domain"
	"semshapes/internal/embedding"
	"semshapes/internal/projection"
	"semshapes/internal/vectorstore/memory"
)

// Engine answers read-only queries over one embedding table.
// It is safe for concurrent use once constructed.
type Engine struct {
	table *embedding.Table
	index domain.VectorIndex
	tsne  projection.TSNEConfig
}

// Option customises an Engine.
type Option func(*Engine)

// WithTSNE sets the t-SNE parameters used by Project.
func WithTSNE(cfg projection.TSNEConfig) Option {
	return func(e *Engine) { e.tsne = cfg }
}

// WithIndex replaces the default in-memory index.
func WithIndex(index domain.VectorIndex) Option {
	return func(e *Engine) { e.index = index }
}

// NewEngine indexes table and returns a query engine. A nil table produces an engine
// whose queries fail with domain.ErrModelNotLoaded.
func NewEngine(table *embedding.Table, opts ...Option) (*Engine, error) {
	e := &Engine{table: table, index: memory.NewStorage(), tsne: projection.DefaultTSNEConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if table == nil {
		return e, nil
	}
	if err := e.index.Init(table.Dimensions()); err != nil {
		return nil, err
	}
	if err := e.index.Upsert(table.Words(), table.Vectors()); err != nil {
		return nil, err
	}
	return e, nil
}

// Info describes the loaded model.
func (e *Engine) Info() (domain.Info, error) {
	if e.table == nil {
		return domain.Info{}, domain.ErrModelNotLoaded
	}
	return domain.Info{
		ModelType:  e.table.ModelType(),
		Dimensions: e.table.Dimensions(),
		VocabSize:  e.table.VocabSize(),
	}, nil
}

// Vector returns a copy of the vector stored for word.
func (e *Engine) Vector(word string) ([]float64, error) {
	if e.table == nil {
		return nil, domain.ErrModelNotLoaded
	}
	vec, ok := e.table.Vector(word)
	if !ok {
		return nil, &domain.NotFoundError{Words: []string{word}}
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out, nil
}

// Similar returns up to n words ranked by cosine similarity to word, excluding word itself.
func (e *Engine) Similar(word string, n int) ([]domain.Neighbor, error) {
	if e.table == nil {
		return nil, domain.ErrModelNotLoaded
	}
	vec, ok := e.table.Vector(word)
	if !ok {
		return nil, &domain.NotFoundError{Words: []string{word}}
	}
	return e.index.Search(vec, e.clamp(n), word)
}

// Evaluate solves an arithmetic expression and returns up to n nearest words that are not
// part of the expression.
func (e *Engine) Evaluate(expression string, n int) ([]domain.Neighbor, error) {
	if e.table == nil {
		return nil, domain.ErrModelNotLoaded
	}
	terms, err := ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	sum := make([]float32, e.table.Dimensions())
	used := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		vec, ok := e.table.Vector(term.Word)
		if !ok {
			return nil, &domain.WordNotFoundError{Word: term.Word}
		}
		for i, v := range vec {
			sum[i] += float32(term.Sign) * v
		}
		used[canonical(term.Word)] = struct{}{}
	}
	n = e.clamp(n)
	if n == 0 {
		return []domain.Neighbor{}, nil
	}
	candidates, err := e.index.Search(sum, e.clamp(n+len(terms)))
	if err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, min(n, len(candidates)))
	for _, c := range candidates {
		if _, ok := used[canonical(c.Word)]; ok {
			continue
		}
		results = append(results, domain.Neighbor{Word: strings.TrimRight(c.Word, "."), Similarity: c.Similarity})
		if len(results) == n {
			break
		}
	}
	return results, nil
}

// Project reduces the vectors of words to dimensions coordinates using method ("pca" or "tsne").
func (e *Engine) Project(words []string, method string, dimensions int) (*domain.Projection, error) {
	if e.table == nil {
		return nil, domain.ErrModelNotLoaded
	}
	var missing []string
	for _, w := range words {
		if !e.table.Contains(w) {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundError{Words: missing}
	}
	if dimensions != 2 && dimensions != 3 {
		return nil, domain.InvalidArgument("Dimensions must be 2 or 3")
	}
	m, err := projection.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, domain.InvalidArgument("no words to project")
	}

	data := mat.NewDense(len(words), e.table.Dimensions(), nil)
	for i, w := range words {
		vec, _ := e.table.Vector(w)
		for j, v := range vec {
			data.Set(i, j, float64(v))
		}
	}
	reduced, err := projection.New(m, e.tsne).Reduce(data, dimensions)
	if err != nil {
		return nil, err
	}
	if r, c := reduced.Dims(); r != len(words) || c != dimensions {
		return nil, fmt.Errorf("projection: %s returned %dx%d, want %dx%d", m, r, c, len(words), dimensions)
	}
	out := domain.NewProjection(len(words))
	for i, w := range words {
		out.Set(w, mat.Row(nil, i, reduced))
	}
	return out, nil
}

// Vocabulary lists up to limit words in load order. A non-empty prefix keeps only words
// starting with the lower-cased prefix; the comparison itself is case-sensitive.
func (e *Engine) Vocabulary(limit int, prefix string) ([]string, error) {
	if e.table == nil {
		return nil, domain.ErrModelNotLoaded
	}
	out := []string{}
	if limit <= 0 {
		return out, nil
	}
	lowered := strings.ToLower(prefix)
	for _, w := range e.table.Words() {
		if prefix != "" && !strings.HasPrefix(w, lowered) {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// clamp bounds a requested result count to [0, vocabulary size].
func (e *Engine) clamp(n int) int {
	return max(0, min(n, e.table.VocabSize()))
}

var _ domain.QueryService = (*Engine)(nil)
