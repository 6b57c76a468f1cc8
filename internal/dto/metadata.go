package dto

// StateMetadata is one entry of the `states` map of a flow document, or the
// front matter of one state file in a flow directory.
// It uses "mapstructure" tags so it can be decoded from generic YAML maps.
type StateMetadata struct {
	// ID overrides the file name of a state file.
	ID       string           `json:"id,omitempty" mapstructure:"id"`
	Prompt   string           `json:"prompt" mapstructure:"prompt"`
	Next     string           `json:"next" mapstructure:"next"`
	Terminal bool             `json:"terminal" mapstructure:"terminal"`
	Branches []BranchMetadata `json:"branches" mapstructure:"branches"`
}

// BranchMetadata is a guarded transition as written in a flow document.
type BranchMetadata struct {
	When string `json:"when" mapstructure:"when"`
	Say  string `json:"say" mapstructure:"say"`
	To   string `json:"to" mapstructure:"to"`
}

// FlowDocument is the root of a flow document.
type FlowDocument struct {
	Entry  string                   `json:"entry" mapstructure:"entry"`
	States map[string]StateMetadata `json:"states" mapstructure:"states"`
}
