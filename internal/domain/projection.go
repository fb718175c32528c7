package domain

import (
	"bytes"
	"encoding/json"
)

// Projection maps words to reduced coordinates and remembers insertion order.
type Projection struct {
	order  []string
	coords map[string][]float64
}

// NewProjection creates an empty projection with room for n words.
func NewProjection(n int) *Projection {
	return &Projection{order: make([]string, 0, n), coords: make(map[string][]float64, n)}
}

// Set stores coordinates for word. A word set twice keeps its first position.
func (p *Projection) Set(word string, coords []float64) {
	if _, ok := p.coords[word]; !ok {
		p.order = append(p.order, word)
	}
	p.coords[word] = coords
}

// Get returns the coordinates for word.
func (p *Projection) Get(word string) ([]float64, bool) {
	c, ok := p.coords[word]
	return c, ok
}

// Words returns the projected words in insertion order.
func (p *Projection) Words() []string { return p.order }

// Len returns the number of distinct words.
func (p *Projection) Len() int { return len(p.order) }

// MarshalJSON encodes the projection as an object whose keys follow insertion order.
func (p *Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, word := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(word)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.coords[word])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
