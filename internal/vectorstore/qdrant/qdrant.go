package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"semshapes/internal/domain"
)

const defaultBatchSize = 512

// pointNamespace scopes the deterministic point ids derived from words.
var pointNamespace = uuid.MustParse("6f1c1e2a-8d3b-4a57-9a0e-2f4c5b7d9e10")

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	batchSize  int
	recreate   bool
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	BatchSize  int
	// Recreate drops an existing collection in Init so stale points from another model are not served.
	Recreate   bool
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		batchSize:  batch,
		recreate:   cfg.Recreate,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	if s.recreate {
		if err := s.Clear(); err != nil {
			return err
		}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if the collection exists with the same schema
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

// Upsert stores words in batches. Point ids are derived from the word so reloading is idempotent.
func (s *Storage) Upsert(words []string, vectors [][]float32) error {
	if len(words) != len(vectors) {
		return errors.New("words and vectors length mismatch")
	}
	for start := 0; start < len(words); start += s.batchSize {
		end := min(start+s.batchSize, len(words))
		points := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			if len(vectors[i]) != s.dimension {
				return errors.New("vector dimension mismatch")
			}
			points = append(points, map[string]any{
				"id":     PointID(words[i]),
				"vector": vectors[i],
				"payload": map[string]any{
					"word": words[i],
					"rank": i,
				},
			})
		}
		body := map[string]any{"points": points}
		if err := s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body); err != nil {
			return err
		}
	}
	return nil
}

// Search asks Qdrant for the topK nearest words, filtering out exclude server-side.
func (s *Storage) Search(vector []float32, topK int, exclude ...string) ([]domain.Neighbor, error) {
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	if topK <= 0 {
		return []domain.Neighbor{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if len(exclude) > 0 {
		req["filter"] = map[string]any{
			"must_not": []map[string]any{
				{"key": "word", "match": map[string]any{"any": exclude}},
			},
		}
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		word, _ := r.Payload["word"].(string)
		results = append(results, domain.Neighbor{Word: word, Similarity: r.Score})
	}
	return results, nil
}

// Clear drops the collection.
func (s *Storage) Clear() error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE collection failed: %s", resp.Status)
	}
	return nil
}

// PointID returns the stable point id used for word.
func PointID(word string) string {
	return uuid.NewSHA1(pointNamespace, []byte(word)).String()
}

func (s *Storage) putJSON(url string, body any) error {
	return s.do(http.MethodPut, url, body, nil)
}

func (s *Storage) postJSON(url string, body any, out any) error {
	return s.do(http.MethodPost, url, body, out)
}

func (s *Storage) do(method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.VectorIndex = (*Storage)(nil)
