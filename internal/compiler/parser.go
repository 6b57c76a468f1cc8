package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/teevee/pkg/domain"
)

// Parser converts the raw bytes served by a GraphLoader into a Node.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a JSON-encoded node.
func (p *Parser) Parse(data []byte) (*domain.Node, error) {
	var node domain.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse node: %w", err)
	}
	if node.ID == "" {
		return nil, fmt.Errorf("node missing ID")
	}
	for i, b := range node.Branches {
		if b.When.Kind == "" {
			return nil, fmt.Errorf("node %s: branch %d has no guard", node.ID, i)
		}
	}
	return &node, nil
}
