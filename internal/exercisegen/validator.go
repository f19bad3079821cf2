package exercisegen

import "fmt"

// Validator checks a draft before it is converted to content.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs, e.g.
	// "structural" or "notation".
	Name() string

	// Validate returns nil if the draft passes.
	Validate(d *Draft, input GenerateInput) *ValidationError
}

// ValidationError describes why a draft was rejected.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
