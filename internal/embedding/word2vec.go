package embedding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxLineBytes = 16 << 20
	// the header count is untrusted, so preallocation stops here and append grows the rest
	maxPrealloc = 1 << 16
)

// ParseWord2Vec reads vectors in word2vec text format: a "<vocab_size> <dimensions>" header
// followed by one "<word> <v1> ... <vN>" row per word. At most limit rows are read when limit > 0.
func ParseWord2Vec(r io.Reader, limit int) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("embedding: read header: %w", err)
		}
		return nil, errors.New("embedding: missing header")
	}
	count, dim, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < count {
		count = limit
	}
	capacity := min(count, maxPrealloc)
	t := &Table{
		modelType:  ModelWord2Vec,
		dimensions: dim,
		words:      make([]string, 0, capacity),
		vectors:    make([][]float32, 0, capacity),
		index:      make(map[string]int, capacity),
	}
	line := 1
	for row := 0; row < count; row++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("embedding: read line %d: %w", line+1, err)
			}
			return nil, fmt.Errorf("embedding: unexpected end of input after %d of %d rows", row, count)
		}
		line++
		word, vec, err := parseRow(scanner.Text(), dim)
		if err != nil {
			return nil, fmt.Errorf("embedding: line %d: %w", line, err)
		}
		t.add(word, vec)
	}
	return t, nil
}

func parseHeader(text string) (int, int, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("embedding: invalid header %q", text)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count <= 0 {
		return 0, 0, fmt.Errorf("embedding: invalid vocabulary size %q", fields[0])
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return 0, 0, fmt.Errorf("embedding: invalid dimensions %q", fields[1])
	}
	return count, dim, nil
}

func parseRow(text string, dim int) (string, []float32, error) {
	parts := strings.Split(strings.TrimRightFunc(text, unicode.IsSpace), " ")
	if len(parts) != dim+1 {
		return "", nil, fmt.Errorf("expected %d values, got %d", dim, len(parts)-1)
	}
	vec := make([]float32, dim)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value %q for %q", p, parts[0])
		}
		vec[i] = float32(v)
	}
	return parts[0], vec, nil
}
