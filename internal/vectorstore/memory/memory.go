package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"semshapes/internal/domain"
)

// Storage is a simple in-memory vector index using brute-force cosine similarity.
// Vectors are kept in insertion order, which also breaks score ties.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	words     []string
	vectors   [][]float32
	mags      []float32
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.words = nil
	s.vectors = nil
	s.mags = nil
	return nil
}

func (s *Storage) Upsert(words []string, vectors [][]float32) error {
	if len(words) != len(vectors) {
		return errors.New("words and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, v := range vectors {
		s.mags = append(s.mags, search.Float32s(v).Magnitude())
	}
	s.words = append(s.words, words...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK stored words most similar to vector, skipping words listed in exclude.
func (s *Storage) Search(vector []float32, topK int, exclude ...string) ([]domain.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	if topK <= 0 {
		return []domain.Neighbor{}, nil
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, w := range exclude {
		skip[w] = struct{}{}
	}
	qm := search.Float32s(vector).Magnitude()
	idxs := make([]int, 0, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		if _, ok := skip[s.words[i]]; ok {
			continue
		}
		scores[i] = cosine(vector, qm, s.vectors[i], s.mags[i])
		idxs = append(idxs, i)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Neighbor, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.Neighbor{Word: s.words[j], Similarity: scores[j]})
	}
	return results, nil
}

// cosine returns 0 when either vector has zero magnitude.
func cosine(a []float32, am float32, b []float32, bm float32) float64 {
	if am == 0 || bm == 0 {
		return 0
	}
	return 1 - float64(search.Float32s(a).CosineDistanceWithMagnitude(b, am, bm))
}
