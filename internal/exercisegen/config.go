package exercisegen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every draft; the first failure stops the
	// chain.
	Validators []Validator

	// MaxAttempts bounds how often a draft is regenerated after a
	// retryable validation failure.
	MaxAttempts int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxExistingTitles caps the titles listed in the prompt for
	// deduplication.
	MaxExistingTitles int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ReferenceValidator{},
			&NotationValidator{},
		},
		MaxAttempts:       3,
		MaxTokens:         4096,
		Temperature:       0.7,
		MaxExistingTitles: 20,
	}
}

// Limits on generated exercises.
const (
	MinPairs       = 2
	MaxPairs       = 12
	MaxDistractors = 4
	maxTitleLen    = 200
	maxCardTextLen = 300
	maxLabelLen    = 40
	maxABCCodeLen  = 2000
)
