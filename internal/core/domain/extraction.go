package domain

// Extraction is a partial profile decoded from one Extractor response.
// An empty scalar means the message did not mention it.
type Extraction struct {
	ProjectType    string   `json:"project_type"`
	Technologies   []string `json:"technologies"`
	Forbidden      []string `json:"forbidden"`
	Colors         []string `json:"colors"`
	Style          string   `json:"style"`
	AnimationSpeed string   `json:"animation_speed"`
	Features       []string `json:"features"`
	Mood           string   `json:"mood"`
	Examples       []string `json:"examples"`
	References     []string `json:"references"`
	HasExamples    bool     `json:"has_examples"`

	// Confidence is the extractor's own 0-1 clarity estimate. Informational only;
	// profile confidence is always recomputed from fields.
	Confidence float64 `json:"confidence"`

	// MissingInfo lists what the extractor thought was unclear.
	MissingInfo []string `json:"missing_info"`
}

// NullExtractionReason is the missing_info entry of a null extraction.
const NullExtractionReason = "could not parse"

// NullExtraction is the result used when Extractor output cannot be decoded.
func NullExtraction() Extraction {
	return Extraction{
		Technologies: []string{},
		Forbidden:    []string{},
		Colors:       []string{},
		Features:     []string{},
		Examples:     []string{},
		References:   []string{},
		Confidence:   0.1,
		MissingInfo:  []string{NullExtractionReason},
	}
}

// IsNull reports whether the extraction is the parse-failure placeholder.
func (e Extraction) IsNull() bool {
	return len(e.MissingInfo) == 1 && e.MissingInfo[0] == NullExtractionReason &&
		e.ProjectType == "" && len(e.Colors) == 0 && len(e.Technologies) == 0 && len(e.Features) == 0
}
