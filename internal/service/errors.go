package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// fieldErrors accumulates per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// err returns a ValidationError naming every failed field, or nil.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return apperrors.NewValidationError("invalid fields: "+strings.Join(fields, ", "), map[string]any(f))
}

// parseID validates that value is a UUID.
func parseID(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field+" is required", map[string]any{field: "required"})
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", apperrors.NewValidationError("invalid "+field, map[string]any{field: "must be a UUID"})
	}
	return id.String(), nil
}

// notFoundOr maps repository.ErrNotFound to a NotFound DomainError and anything
// else to Internal.
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewInternalError(fmt.Errorf("load %s %s: %w", resource, id, err))
}
