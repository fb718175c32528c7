package memory

import (
	"math"
	"testing"
)

func newStorage(t *testing.T, words []string, vectors [][]float32) *Storage {
	t.Helper()
	s := NewStorage()
	if err := s.Init(len(vectors[0])); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Upsert(words, vectors); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	return s
}

func TestStorage_SearchOrdering(t *testing.T) {
	s := newStorage(t,
		[]string{"a", "b", "c", "d"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {-1, 0}},
	)
	res, err := s.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []string{"a", "c", "b", "d"}
	if len(res) != len(want) {
		t.Fatalf("got %d results, want %d", len(res), len(want))
	}
	for i, w := range want {
		if res[i].Word != w {
			t.Fatalf("result %d = %q, want %q", i, res[i].Word, w)
		}
	}
	if math.Abs(res[0].Similarity-1) > 1e-6 || math.Abs(res[1].Similarity-math.Sqrt2/2) > 1e-6 || math.Abs(res[3].Similarity+1) > 1e-6 {
		t.Fatalf("unexpected scores: %+v", res)
	}
}

func TestStorage_SearchTiesKeepInsertionOrder(t *testing.T) {
	s := newStorage(t,
		[]string{"x", "y", "z"},
		[][]float32{{0, 1}, {0, 2}, {0, 3}},
	)
	res, err := s.Search([]float32{0, 1}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, w := range []string{"x", "y", "z"} {
		if res[i].Word != w {
			t.Fatalf("result %d = %q, want %q", i, res[i].Word, w)
		}
	}
}

func TestStorage_SearchExcludeAndTopK(t *testing.T) {
	s := newStorage(t,
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0.9, 0.1}, {0, 1}},
	)
	res, err := s.Search([]float32{1, 0}, 1, "a")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res) != 1 || res[0].Word != "b" {
		t.Fatalf("unexpected results: %+v", res)
	}
	res, err = s.Search([]float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Fatalf("topK=0 should return an empty slice, got %+v", res)
	}
}

func TestStorage_ZeroVector(t *testing.T) {
	s := newStorage(t, []string{"zero", "one"}, [][]float32{{0, 0}, {1, 0}})
	res, err := s.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res[1].Word != "zero" || res[1].Similarity != 0 {
		t.Fatalf("zero vector should score 0: %+v", res)
	}
	res, err = s.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range res {
		if r.Similarity != 0 {
			t.Fatalf("zero query should score 0: %+v", res)
		}
	}
}

func TestStorage_Errors(t *testing.T) {
	s := NewStorage()
	if err := s.Init(0); err == nil {
		t.Fatalf("expected invalid dimension error")
	}
	if err := s.Init(2); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Upsert([]string{"a"}, [][]float32{{1, 2, 3}}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if err := s.Upsert([]string{"a", "b"}, [][]float32{{1, 2}}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := s.Search([]float32{1}, 1); err == nil {
		t.Fatalf("expected query dimension mismatch error")
	}
}
