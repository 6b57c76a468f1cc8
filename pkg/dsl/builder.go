package dsl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/teevee/pkg/adapters/memory"
	"github.com/aretw0/teevee/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	errs  []error
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID: id,
		},
		builder: b,
	}
	b.nodes[id] = nb
	return nb
}

// Nodes returns the declared nodes sorted by id, or the first guard error.
func (b *Builder) Nodes() ([]domain.Node, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	nodes := make([]domain.Node, 0, len(b.nodes))
	for _, nb := range b.nodes {
		nodes = append(nodes, nb.node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

// Build compiles the graph into a memory.Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	nodes, err := b.Nodes()
	if err != nil {
		return nil, err
	}

	loader, err := memory.NewFromNodes(nodes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}

	return loader, nil
}
