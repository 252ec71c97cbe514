package services

import (
	"errors"
	"fmt"

	"sprift/internal/repositories"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrExternalService = errors.New("external service failure")
)

// notFound lifts a repository not-found into the service error space and
// leaves every other error untouched.
func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func external(service string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalService, service, err)
}
