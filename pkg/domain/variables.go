package domain

// Variables is the typed session variable store.
// Zero values mean "unset" for the string fields.
type Variables struct {
	// Name is the user's name. Once set it is never re-extracted.
	Name string `json:"name,omitempty"`

	// UserDescription is the quoted fragment the user gave for the movie.
	UserDescription string `json:"user_description,omitempty"`

	// Results is the resolved record set of the last successful lookup.
	Results []MovieSummary `json:"results,omitempty"`

	// PickID is the row identity of the selected record, valid when Picked.
	PickID int  `json:"pickid"`
	Picked bool `json:"picked,omitempty"`

	// Genres maps a record's row identity to its genre tags.
	Genres map[int][]string `json:"genres,omitempty"`

	// Keywords maps a record's row identity to its keyword tags.
	// Rows whose keyword field failed to parse are absent.
	Keywords map[int][]string `json:"keywords,omitempty"`

	// Characters is the ordered cast of the selected record.
	Characters []CastCredit `json:"characters,omitempty"`

	Culture string `json:"culture,omitempty"`

	// Once flips after the article macro ran for the first time.
	Once bool `json:"once,omitempty"`
}

// NewVariables returns an empty store with initialised maps.
func NewVariables() Variables {
	return Variables{
		Genres:   make(map[int][]string),
		Keywords: make(map[int][]string),
	}
}

func (v *Variables) HasName() bool    { return v.Name != "" }
func (v *Variables) HasCulture() bool { return v.Culture != "" }

// PickedGenres returns the genre tags of the selected record.
func (v *Variables) PickedGenres() []string {
	if !v.Picked {
		return nil
	}
	return v.Genres[v.PickID]
}

// Clone returns a deep copy of the store.
func (v Variables) Clone() Variables {
	out := v
	out.Results = append([]MovieSummary(nil), v.Results...)
	out.Characters = append([]CastCredit(nil), v.Characters...)
	out.Genres = cloneTags(v.Genres)
	out.Keywords = cloneTags(v.Keywords)
	return out
}

func cloneTags(src map[int][]string) map[int][]string {
	dst := make(map[int][]string, len(src))
	for k, tags := range src {
		dst[k] = append([]string(nil), tags...)
	}
	return dst
}
