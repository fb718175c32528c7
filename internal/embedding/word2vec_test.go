package embedding

import (
	"strings"
	"testing"
)

const sampleModel = `3 2
king 1.0 0.5
queen 0.9 0.6
man 0.2 -0.1
`

func TestParseWord2Vec(t *testing.T) {
	table, err := ParseWord2Vec(strings.NewReader(sampleModel), 0)
	if err != nil {
		t.Fatalf("ParseWord2Vec failed: %v", err)
	}
	if table.Dimensions() != 2 || table.VocabSize() != 3 {
		t.Fatalf("unexpected shape: dims=%d vocab=%d", table.Dimensions(), table.VocabSize())
	}
	if table.ModelType() != ModelWord2Vec {
		t.Fatalf("model type = %q, want %q", table.ModelType(), ModelWord2Vec)
	}
	want := []string{"king", "queen", "man"}
	for i, w := range table.Words() {
		if w != want[i] {
			t.Fatalf("word %d = %q, want %q", i, w, want[i])
		}
	}
	vec, ok := table.Vector("man")
	if !ok || vec[0] != 0.2 || vec[1] != -0.1 {
		t.Fatalf("unexpected vector for man: %v %v", vec, ok)
	}
	if table.Contains("King") {
		t.Fatalf("lookups must be case-sensitive")
	}
}

func TestParseWord2Vec_TrailingWhitespaceAndExtraRows(t *testing.T) {
	input := "2 2\nking 1 2 \nqueen 3 4\t\nextra 5 6\n"
	table, err := ParseWord2Vec(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("ParseWord2Vec failed: %v", err)
	}
	if table.VocabSize() != 2 {
		t.Fatalf("vocab = %d, want 2", table.VocabSize())
	}
	if table.Contains("extra") {
		t.Fatalf("rows beyond the header count must be ignored")
	}
}

func TestParseWord2Vec_Limit(t *testing.T) {
	table, err := ParseWord2Vec(strings.NewReader(sampleModel), 2)
	if err != nil {
		t.Fatalf("ParseWord2Vec failed: %v", err)
	}
	if table.VocabSize() != 2 || table.Contains("man") {
		t.Fatalf("limit not applied: %v", table.Words())
	}
}

func TestParseWord2Vec_DuplicateKeepsFirst(t *testing.T) {
	table, err := ParseWord2Vec(strings.NewReader("2 1\nking 1\nking 2\n"), 0)
	if err != nil {
		t.Fatalf("ParseWord2Vec failed: %v", err)
	}
	vec, _ := table.Vector("king")
	if table.VocabSize() != 1 || vec[0] != 1 {
		t.Fatalf("duplicate word handling: vocab=%d vec=%v", table.VocabSize(), vec)
	}
}

func TestParseWord2Vec_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "missing header"},
		{"header fields", "3\n", "invalid header"},
		{"header count", "x 2\n", "invalid vocabulary size"},
		{"header dims", "1 0\n", "invalid dimensions"},
		{"ragged row", "2 2\nking 1 2\nqueen 3\n", "line 3"},
		{"bad float", "1 2\nking 1 abc\n", "invalid value"},
		{"short file", "3 2\nking 1 2\n", "unexpected end of input after 1 of 3 rows"},
		{"huge header count", "100000000000 2\na 1 2\n", "unexpected end of input after 1 of 100000000000 rows"},
		{"huge header dims", "1 100000000000\na 1 2\n", "line 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWord2Vec(strings.NewReader(tc.input), 0)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	if _, err := NewTable(ModelWord2Vec, nil, nil); err == nil {
		t.Fatalf("expected error for empty table")
	}
	if _, err := NewTable(ModelWord2Vec, []string{"a", "b"}, [][]float32{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for ragged vectors")
	}
	if _, err := NewTable(ModelWord2Vec, []string{"a"}, [][]float32{{1}, {2}}); err == nil {
		t.Fatalf("expected error for length mismatch")
	}
}

func TestFallback(t *testing.T) {
	a, b := Fallback(), Fallback()
	if a.ModelType() != ModelFallback {
		t.Fatalf("model type = %q", a.ModelType())
	}
	if a.VocabSize() != 23 || a.Dimensions() != 10 {
		t.Fatalf("unexpected shape: vocab=%d dims=%d", a.VocabSize(), a.Dimensions())
	}
	for _, w := range []string{"king", "queen", "man", "woman", "dog", "cat", "paris", "tokyo", "mouse"} {
		if !a.Contains(w) {
			t.Fatalf("fallback missing %q", w)
		}
	}
	for _, w := range a.Words() {
		va, _ := a.Vector(w)
		vb, _ := b.Vector(w)
		for i := range va {
			if va[i] != vb[i] {
				t.Fatalf("fallback not reproducible for %q", w)
			}
		}
	}
}
