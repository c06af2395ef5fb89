package validators

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/starfusion/engine/pkg/apperrors"
)

// Character and weather payloads arrive from untrusted upstreams, so every
// free-text field is held to a regex allow-list in addition to length and
// range bounds.
var (
	reName      = regexp.MustCompile(`^[\p{L}\p{M}\p{N}][\p{L}\p{M}\p{N} .,'\-]*$`)
	reColorList = regexp.MustCompile(`^[\p{L}\p{M}\d\s,\-]+$`)
	reBirthYear = regexp.MustCompile(`^\d+(?:\.\d+)?(?:BBY|ABY)$`)
	reGender    = regexp.MustCompile(`^(?i:male|female|hermaphrodite|none)$`)
	reISOZ      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z$`)
	reISOFlex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2})?(?:\.\d+)?Z?$`)
	reTZName    = regexp.MustCompile(`^[A-Za-z_\-+/]+(?:/[A-Za-z_\-+]+)*$`)
	reTZAbbr    = regexp.MustCompile(`^[A-Z]{1,10}$`)
	reUnitLabel = regexp.MustCompile(`^[\p{L}\p{M}\d\s/°\-]+$`)
	reTitle     = regexp.MustCompile(`^[\p{L}\p{N} .,_\-()¡!¿?:;#@]+$`)
	reNoTags    = regexp.MustCompile(`^[^<>]*$`)
	reUserID    = regexp.MustCompile(`^[A-Za-z0-9_\-:]{1,64}$`)
)

// validate is the shared schema engine. It is configured once and safe for
// concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report violations under JSON field names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	regexRules := map[string]*regexp.Regexp{
		"char_name":   reName,
		"color_list":  reColorList,
		"birth_year":  reBirthYear,
		"gender":      reGender,
		"iso8601z":    reISOZ,
		"iso8601flex": reISOFlex,
		"tz_name":     reTZName,
		"tz_abbr":     reTZAbbr,
		"unit_label":  reUnitLabel,
		"safe_title":  reTitle,
		"no_tags":     reNoTags,
		"user_id":     reUserID,
	}
	for tag, re := range regexRules {
		re := re
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}

	return v
}

// violationMessage renders one field error the way clients see it.
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "exceeds maximum of " + fe.Param()
	case "min":
		return "is below minimum of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a well-formed URL"
	case "char_name", "color_list", "safe_title":
		return "contains invalid characters"
	case "birth_year":
		return "must look like 19BBY, 41.9BBY or 8ABY"
	case "gender":
		return "must be one of male, female, hermaphrodite, none"
	case "iso8601z":
		return "must be an ISO-8601 timestamp with Z suffix"
	case "iso8601flex":
		return "must be an ISO-8601 timestamp"
	case "tz_name":
		return "must be a timezone name like America/Bogota or GMT"
	case "tz_abbr":
		return "must be an uppercase timezone abbreviation"
	case "unit_label":
		return "contains invalid unit characters"
	case "no_tags":
		return "must not contain angle brackets"
	case "user_id":
		return "must be 1-64 characters of letters, digits, _ - or :"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// collectViolations appends every field error from err to ve, with the field
// path prefixed (e.g. "[2]." for list items). A nil err is a no-op.
func collectViolations(ve *apperrors.ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve.Add(strings.TrimSuffix(prefix, "."), err.Error())
		return
	}
	for _, fe := range fieldErrs {
		// Namespace starts with the root struct type; drop it.
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		ve.Add(prefix+path, violationMessage(fe))
	}
}

// dateLayouts are the timestamp shapes the upstreams emit. A string that
// matches no layout, or matches but is not a real calendar date, is treated
// as absent.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z",
	"2006-01-02T15:04",
}

func parsesAsDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
