package validators

import (
	"bytes"
	"encoding/json"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/models"
)

// ValidateStoragePayload decodes and validates a client storage document.
// Unknown fields are rejected, free text is held to allow-lists, and the
// description is additionally screened for SQL injection and XSS patterns.
func ValidateStoragePayload(raw json.RawMessage) (*models.StoragePayload, error) {
	ve := &apperrors.ValidationError{}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var payload models.StoragePayload
	if err := dec.Decode(&payload); err != nil {
		ve.Add("payload", "must be an object with only title, description, userId and timestamp")
		return nil, ve
	}

	collectViolations(ve, "", validate.Struct(payload))

	for _, field := range []struct {
		name  string
		value string
	}{
		{"title", payload.Title},
		{"description", payload.Description},
	} {
		if isSQLi, _ := libinjection.IsSQLi(field.value); isSQLi {
			ve.Add(field.name, "contains a SQL injection pattern")
		}
		if libinjection.IsXSS(field.value) {
			ve.Add(field.name, "contains an XSS pattern")
		}
	}

	if ve.HasViolations() {
		return nil, ve
	}
	return &payload, nil
}
