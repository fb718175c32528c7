package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestProjection_MarshalKeepsOrder(t *testing.T) {
	p := NewProjection(3)
	p.Set("zebra", []float64{1, 2})
	p.Set("apple", []float64{3, 4})
	p.Set("mango", []float64{5, 6})
	p.Set("zebra", []float64{7, 8})

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"zebra":[7,8],"apple":[3,4],"mango":[5,6]}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}
	if c, ok := p.Get("apple"); !ok || c[0] != 3 {
		t.Fatalf("Get(apple) = %v %v", c, ok)
	}
}

func TestErrors(t *testing.T) {
	one := &NotFoundError{Words: []string{"xyz"}}
	if one.Error() != "Word 'xyz' not found in vocabulary" {
		t.Fatalf("unexpected message: %s", one)
	}
	many := &NotFoundError{Words: []string{"a", "b"}}
	if many.Error() != "Words not found in vocabulary: a, b" {
		t.Fatalf("unexpected message: %s", many)
	}
	term := &WordNotFoundError{Word: "unknownword"}
	if term.Error() != "Word 'unknownword' not in vocabulary" {
		t.Fatalf("unexpected message: %s", term)
	}
	for _, err := range []error{one, many, term} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%v should match ErrNotFound", err)
		}
	}
	arg := InvalidArgument("Dimensions must be 2 or 3")
	if !errors.Is(arg, ErrInvalidArgument) || arg.Error() != "Dimensions must be 2 or 3" {
		t.Fatalf("unexpected argument error: %v", arg)
	}
}
