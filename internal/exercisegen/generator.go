// Package exercisegen drafts matching exercises with an LLM and turns the
// draft into validated exercise content.
package exercisegen

import (
	"context"

	"github.com/benewagner/musicmapping/internal/content"
)

// Generator produces matching exercises.
type Generator interface {
	// Generate drafts one exercise for the input. The returned content has
	// passed every configured validator and content.Validate.
	Generate(ctx context.Context, input GenerateInput) (*Exercise, error)
}

// GenerateInput holds everything the prompt is built from.
type GenerateInput struct {
	// Topic is the music-theory subject, e.g. "major key signatures".
	Topic string

	// Pairs is the number of question cards to produce.
	Pairs int

	// Distractors is the number of extra answer cards that match no question.
	Distractors int

	// Notation allows question cards written in ABC notation.
	Notation bool

	// ExistingTitles lists exercises already in the library so the model
	// can avoid duplicates.
	ExistingTitles []string
}

// Exercise is a generated exercise ready to be stored.
type Exercise struct {
	Title   string
	Content content.Content

	// Attempts is the number of LLM calls it took.
	Attempts int
}
