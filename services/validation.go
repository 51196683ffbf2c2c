package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError перечисляет ВСЕ непрошедшие проверку поля, а не только
// первое. Сообщение детерминировано (поля отсортированы).
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) hasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is позволяет errors.Is(err, ErrValidationFailed) для любого ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
