package rag

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the pipeline stage that produced it.
type Kind string

const (
	KindExtraction Kind = "extraction"
	KindEmbedding  Kind = "embedding"
	KindSearch     Kind = "search"
	KindGeneration Kind = "generation"
	KindNotReady   Kind = "not_ready"
)

// ErrNotReady is returned when a query arrives before any index was built.
var ErrNotReady = &Error{Kind: KindNotReady, Message: "no document has been processed yet"}

// Error is the structured failure surfaced by the core. Error() always names the stage.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	stage := e.Kind.stage()
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s failed: %v", stage, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", stage, e.Message)
}

// stage is the pipeline step named in messages. A query against an empty
// engine fails before any step runs.
func (k Kind) stage() string {
	if k == KindNotReady {
		return "query"
	}
	return string(k)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotReady) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Wrap attaches a kind to err. An err that already carries a kind is returned unchanged.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Errorf builds a kind-tagged error without an underlying cause.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or "" when err is not a core error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
