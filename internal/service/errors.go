package service

import (
	"errors"
	"sort"
	"strings"
)

// Ошибки уровня операций. Хендлеры переводят их в HTTP-статусы,
// сервисы наружу ничего другого не бросают.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrAlreadyClosed = errors.New("data request is already closed")
)

// ValidationError накапливает все ошибки валидации по полям,
// а не обрывается на первой
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}
