package dsl

import (
	"fmt"

	"github.com/aretw0/teevee/internal/compiler"
	"github.com/aretw0/teevee/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Prompt sets the utterance rendered when the node is entered.
func (n *NodeBuilder) Prompt(text string) *NodeBuilder {
	n.node.Prompt = text
	return n
}

// Next makes the node a soft step that moves on to target without input.
func (n *NodeBuilder) Next(target string) *NodeBuilder {
	n.node.Next = target
	return n
}

// When adds a branch in the flow document guard notation ("#NAME",
// "[#ONT(scifi)]", "#UNX", "yes", ...). An empty target stays on the node.
func (n *NodeBuilder) When(guard, reply, target string) *NodeBuilder {
	g, err := compiler.ParseGuard(guard)
	if err != nil {
		n.builder.errs = append(n.builder.errs, fmt.Errorf("node %s: %w", n.node.ID, err))
		return n
	}
	return n.Branch(g, reply, target)
}

// Macro adds a branch guarded by the named macro.
func (n *NodeBuilder) Macro(name, reply, target string) *NodeBuilder {
	return n.Branch(domain.Guard{Kind: domain.GuardMacro, Arg: name}, reply, target)
}

// Otherwise adds the catch-all branch (#UNX).
func (n *NodeBuilder) Otherwise(reply, target string) *NodeBuilder {
	return n.Branch(domain.Guard{Kind: domain.GuardAny}, reply, target)
}

// Error sets the fallback branch, tried after every other branch.
func (n *NodeBuilder) Error(reply, target string) *NodeBuilder {
	return n.Branch(domain.Guard{Kind: domain.GuardError}, reply, target)
}

// Branch appends an already compiled guard.
func (n *NodeBuilder) Branch(g domain.Guard, reply, target string) *NodeBuilder {
	n.node.Branches = append(n.node.Branches, domain.Branch{When: g, Reply: reply, Target: target})
	return n
}

// Terminal marks the node as the end of the conversation.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.node.Terminal = true
	n.node.Branches = nil
	n.node.Next = ""
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
