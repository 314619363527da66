package features

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every request-level validation failure
var ErrValidation = errors.New("validation failed")

// OutOfRangeError reports a numeric input outside its accepted range
type OutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

// Is makes errors.Is(err, ErrValidation) true
func (e *OutOfRangeError) Is(target error) bool { return target == ErrValidation }

// VocabularyError reports a categorical value the model was not trained on
type VocabularyError struct {
	Field string
	Value string
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("%s %q is not part of the trained vocabulary", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrValidation) true
func (e *VocabularyError) Is(target error) bool { return target == ErrValidation }
