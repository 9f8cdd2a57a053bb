package storyboard

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the text model returned no text.
	ErrEmptyResponse = errors.New("no text generated from the AI model")

	// ErrInvalidShape means the parsed response lacks an expected array.
	ErrInvalidShape = errors.New("invalid scene data structure")

	// ErrInvalidRequest means the caller's input cannot be used.
	ErrInvalidRequest = errors.New("invalid request")
)

// ParseError reports a model response that is not valid JSON after fence
// stripping. Raw holds the unmodified model text for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse AI response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const (
	scenesStagePrefix     = "failed to generate scenes"
	storyboardStagePrefix = "failed to generate storyboard"
)
