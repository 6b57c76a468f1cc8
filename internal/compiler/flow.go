package compiler

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/teevee/internal/dto"
	"github.com/aretw0/teevee/pkg/domain"
)

// Flow is a compiled flow document.
type Flow struct {
	Entry string
	Nodes []domain.Node
}

// LoadFlow compiles a YAML flow document:
//
//	entry: start
//	states:
//	  start:
//	    prompt: "what's your name?"
//	    branches:
//	      - when: "#NAME"
//	        say: "{{NAME}}, nice!"
//	        to: getmovie
//	      - when: error
//	        to: start
//
// Nodes are returned sorted by id. Entry defaults to "start".
func LoadFlow(data []byte) (*Flow, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow: %w", err)
	}

	var doc dto.FlowDocument
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	return Compile(doc.Entry, doc.States)
}

// Compile turns decoded states into a Flow. Entry defaults to "start".
func Compile(entry string, states map[string]dto.StateMetadata) (*Flow, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("invalid flow: no states")
	}
	flow := &Flow{Entry: entry}
	if flow.Entry == "" {
		flow.Entry = domain.DefaultEntryNodeID
	}

	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node, err := compileState(id, states[id])
		if err != nil {
			return nil, err
		}
		flow.Nodes = append(flow.Nodes, node)
	}
	return flow, nil
}

func compileState(id string, meta dto.StateMetadata) (domain.Node, error) {
	node := domain.Node{
		ID:       id,
		Prompt:   meta.Prompt,
		Next:     meta.Next,
		Terminal: meta.Terminal,
	}
	for i, b := range meta.Branches {
		guard, err := ParseGuard(b.When)
		if err != nil {
			return domain.Node{}, fmt.Errorf("state %s, branch %d: %w", id, i, err)
		}
		if b.To == "" {
			return domain.Node{}, fmt.Errorf("state %s, branch %d: missing target", id, i)
		}
		node.Branches = append(node.Branches, domain.Branch{When: guard, Reply: b.Say, Target: b.To})
	}
	return node, nil
}
