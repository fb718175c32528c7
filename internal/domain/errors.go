package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found in vocabulary")
	ErrInvalidExpression = errors.New("Invalid expression")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrModelNotLoaded    = errors.New("Model not loaded")
)

// NotFoundError lists the requested words that are absent from the vocabulary.
type NotFoundError struct {
	Words []string
}

func (e *NotFoundError) Error() string {
	if len(e.Words) == 1 {
		return fmt.Sprintf("Word '%s' not found in vocabulary", e.Words[0])
	}
	return "Words not found in vocabulary: " + strings.Join(e.Words, ", ")
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WordNotFoundError reports an expression term that is absent from the vocabulary.
type WordNotFoundError struct {
	Word string
}

func (e *WordNotFoundError) Error() string {
	return fmt.Sprintf("Word '%s' not in vocabulary", e.Word)
}

func (e *WordNotFoundError) Unwrap() error { return ErrNotFound }

// InvalidArgument returns an error carrying msg that matches ErrInvalidArgument.
func InvalidArgument(msg string) error {
	return &argumentError{msg: msg}
}

type argumentError struct{ msg string }

func (e *argumentError) Error() string { return e.msg }

func (e *argumentError) Unwrap() error { return ErrInvalidArgument }
