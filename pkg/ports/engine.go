package ports

import (
	"context"

	"github.com/aretw0/teevee/pkg/domain"
)

// DialogueEngine is the contract adapters (runner, HTTP) use to drive a conversation.
type DialogueEngine interface {
	// Start creates a session positioned at the entry node.
	Start(ctx context.Context, sessionID string) (*domain.State, error)

	// Render calculates the presentation (actions) for a given state without advancing it.
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)

	// Navigate processes one utterance, returning the new state.
	Navigate(ctx context.Context, state *domain.State, utterance string) (*domain.State, error)

	// Inspect returns the current graph structure for introspection.
	Inspect() ([]domain.Node, error)
}
