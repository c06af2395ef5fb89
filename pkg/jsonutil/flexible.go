package jsonutil

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ResultsArray extracts the element list from a source payload that may be a
// bare JSON array or an object wrapping a "results" array. Any other shape
// yields an empty list, not an error.
func ResultsArray(raw json.RawMessage) []json.RawMessage {
	var wrapped struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Results != nil {
		return wrapped.Results
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}

	return []json.RawMessage{}
}

// FlexibleNumber converts a JSON value that may arrive as a number or a
// numeric string. Empty strings, null, and non-numeric strings are treated as
// absent rather than an error.
func FlexibleNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return &numVal
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err != nil {
		return nil
	}
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strVal, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// FlexibleString converts a JSON value that may arrive as a string or a
// number. Null and empty values are treated as absent.
func FlexibleString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if strVal == "" {
			return nil
		}
		return &strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		s := strconv.FormatFloat(numVal, 'f', -1, 64)
		return &s
	}

	return nil
}

// StringList decodes a JSON array of strings; anything else yields an empty
// list.
func StringList(raw json.RawMessage) []string {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
