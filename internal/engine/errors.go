package engine

import (
	"errors"
	"fmt"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an id that does not resolve. It matches
// storage.ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e NotFoundError) Unwrap() error { return storage.ErrNotFound }

func asNotFound(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NotFoundError{Kind: kind, ID: id}
	}
	return err
}
