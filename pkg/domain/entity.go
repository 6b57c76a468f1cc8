package domain

// Entity labels consumed by the macros.
const (
	LabelPerson = "PERSON"
	LabelNORP   = "NORP"
)

// Entity is a typed span returned by an entity tagger.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}
