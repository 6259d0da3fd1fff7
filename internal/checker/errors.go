package checker

import (
	"errors"
	"fmt"
)

// ErrInsufficientText is returned when a document has too little text to
// check.
var ErrInsufficientText = errors.New("insufficient text")

// ExtractionError wraps a failure to read text out of a document.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RuleEvaluationError reports a rule that panicked during evaluation. It
// aborts the one document being checked.
type RuleEvaluationError struct {
	RuleID string
	Cause  any
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("evaluate rule %s: %v", e.RuleID, e.Cause)
}
