package models

// MergedCharacter is a source character with its weather enrichment attached.
// It exists only after both the character and the enrichment validated.
type MergedCharacter struct {
	Character
	Enrichment Weather `json:"enrichment"`
}

// MergedResult is the outcome of one pipeline invocation.
// TotalCount == 0 with an empty entity list is the canonical failure shape,
// and Error is set only in that case.
type MergedResult struct {
	TotalCount int               `json:"totalCount"`
	Entities   []MergedCharacter `json:"entities"`
	Error      string            `json:"error,omitempty"`
}

// FailedResult builds the canonical failure shape from an error.
func FailedResult(err error) MergedResult {
	return MergedResult{
		TotalCount: 0,
		Entities:   []MergedCharacter{},
		Error:      err.Error(),
	}
}
