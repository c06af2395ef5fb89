package validators

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/jsonutil"
	"github.com/starfusion/engine/pkg/models"
)

// MaxCharacterListLen bounds how many characters one source list may carry.
const MaxCharacterListLen = 1000

// rawCharacter mirrors the upstream people payload before any normalization.
// Everything is kept raw because the upstream encodes numbers as strings and
// uses sentinel strings ("n/a", "unknown") for absent values.
type rawCharacter struct {
	Name      json.RawMessage `json:"name"`
	Height    json.RawMessage `json:"height"`
	Mass      json.RawMessage `json:"mass"`
	HairColor json.RawMessage `json:"hair_color"`
	SkinColor json.RawMessage `json:"skin_color"`
	EyeColor  json.RawMessage `json:"eye_color"`
	BirthYear json.RawMessage `json:"birth_year"`
	Gender    json.RawMessage `json:"gender"`
	Homeworld json.RawMessage `json:"homeworld"`
	Films     json.RawMessage `json:"films"`
	Species   json.RawMessage `json:"species"`
	Vehicles  json.RawMessage `json:"vehicles"`
	Starships json.RawMessage `json:"starships"`
	Created   json.RawMessage `json:"created"`
	Edited    json.RawMessage `json:"edited"`
	URL       json.RawMessage `json:"url"`
}

// optionalText folds upstream absence markers into nil. The comparison is
// done on a trimmed, lowercased copy; the original casing is preserved in
// the returned value.
func optionalText(raw json.RawMessage) *string {
	v := jsonutil.FlexibleString(raw)
	if v == nil {
		return nil
	}
	folded := strings.ToLower(strings.TrimSpace(*v))
	if folded == "" || folded == "n/a" || folded == "unknown" {
		return nil
	}
	return v
}

// optionalDate keeps a timestamp string only when it parses to a real
// calendar date; anything else is absent, not an error.
func optionalDate(raw json.RawMessage) *string {
	v := jsonutil.FlexibleString(raw)
	if v == nil {
		return nil
	}
	if !parsesAsDate(*v) {
		return nil
	}
	return v
}

func requiredString(raw json.RawMessage) string {
	v := jsonutil.FlexibleString(raw)
	if v == nil {
		return ""
	}
	return *v
}

// normalizeCharacter converts one raw item into the typed model. Coercion
// failures become absent fields here; bounds and formats are enforced by the
// schema pass that follows.
func normalizeCharacter(rc rawCharacter) models.Character {
	return models.Character{
		Name:      requiredString(rc.Name),
		Height:    jsonutil.FlexibleNumber(rc.Height),
		Mass:      jsonutil.FlexibleNumber(rc.Mass),
		HairColor: optionalText(rc.HairColor),
		SkinColor: optionalText(rc.SkinColor),
		EyeColor:  optionalText(rc.EyeColor),
		BirthYear: optionalText(rc.BirthYear),
		Gender:    optionalText(rc.Gender),
		Homeworld: requiredString(rc.Homeworld),
		Films:     jsonutil.StringList(rc.Films),
		Species:   jsonutil.StringList(rc.Species),
		Vehicles:  jsonutil.StringList(rc.Vehicles),
		Starships: jsonutil.StringList(rc.Starships),
		Created:   optionalDate(rc.Created),
		Edited:    optionalDate(rc.Edited),
		URL:       requiredString(rc.URL),
	}
}

// ValidateCharacterList normalizes and validates every item of the source
// list. If any item is malformed the whole list is rejected, and the returned
// *apperrors.ValidationError carries every violation across all items, not
// just the first.
func ValidateCharacterList(items []json.RawMessage) ([]models.Character, error) {
	ve := &apperrors.ValidationError{}

	if len(items) > MaxCharacterListLen {
		ve.Add("characters", fmt.Sprintf("exceeds maximum of %d items", MaxCharacterListLen))
		return nil, ve
	}

	characters := make([]models.Character, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("[%d].", i)

		var rc rawCharacter
		if err := json.Unmarshal(item, &rc); err != nil {
			ve.Add(fmt.Sprintf("[%d]", i), "must be an object")
			continue
		}

		character := normalizeCharacter(rc)
		collectViolations(ve, prefix, validate.Struct(character))
		characters = append(characters, character)
	}

	if ve.HasViolations() {
		return nil, ve
	}
	return characters, nil
}
