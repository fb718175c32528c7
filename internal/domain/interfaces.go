package domain

// Term is a single signed word of an arithmetic expression.
type Term struct {
	Word string
	Sign int
}

// Neighbor is a vocabulary word paired with its cosine similarity to a query vector.
type Neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// Info describes the loaded model.
type Info struct {
	ModelType  string `json:"model_type"`
	Dimensions int    `json:"dimensions"`
	VocabSize  int    `json:"vocab_size"`
}

// VectorIndex answers nearest-neighbour queries over the loaded vectors.
type VectorIndex interface {
	Init(dimension int) error
	Upsert(words []string, vectors [][]float32) error
	Search(vector []float32, topK int, exclude ...string) ([]Neighbor, error)
}

// QueryService defines the read operations exposed by the application core.
type QueryService interface {
	Info() (Info, error)
	Vector(word string) ([]float64, error)
	Similar(word string, n int) ([]Neighbor, error)
	Evaluate(expression string, n int) ([]Neighbor, error)
	Project(words []string, method string, dimensions int) (*Projection, error)
	Vocabulary(limit int, prefix string) ([]string, error)
}
