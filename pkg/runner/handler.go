package runner

import (
	"context"

	"github.com/aretw0/teevee/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
type IOHandler interface {
	// Output presents the actions to the user and reports whether one of
	// them asks for input.
	Output(ctx context.Context, actions []domain.ActionRequest) (bool, error)

	// Input reads one utterance. It returns io.EOF when the stream ends.
	Input(ctx context.Context) (string, error)

	// SystemOutput reports a runner-level message (interrupts, aborts).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms content before it is written, e.g. markdown to
// ANSI. Rendering errors fall back to the raw text.
type ContentRenderer func(string) (string, error)
