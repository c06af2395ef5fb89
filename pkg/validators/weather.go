package validators

import (
	"encoding/json"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/jsonutil"
	"github.com/starfusion/engine/pkg/models"
)

// rawWeather mirrors the forecast payload before normalization; numeric
// fields may arrive as strings.
type rawWeather struct {
	Latitude             json.RawMessage `json:"latitude"`
	Longitude            json.RawMessage `json:"longitude"`
	GenerationTimeMs     json.RawMessage `json:"generationtime_ms"`
	UTCOffsetSeconds     json.RawMessage `json:"utc_offset_seconds"`
	Timezone             json.RawMessage `json:"timezone"`
	TimezoneAbbreviation json.RawMessage `json:"timezone_abbreviation"`
	Elevation            json.RawMessage `json:"elevation"`
	Units                json.RawMessage `json:"current_weather_units"`
	Current              json.RawMessage `json:"current_weather"`
}

type rawWeatherUnits struct {
	Time          json.RawMessage `json:"time"`
	Interval      json.RawMessage `json:"interval"`
	Temperature   json.RawMessage `json:"temperature"`
	Windspeed     json.RawMessage `json:"windspeed"`
	Winddirection json.RawMessage `json:"winddirection"`
	IsDay         json.RawMessage `json:"is_day"`
	Weathercode   json.RawMessage `json:"weathercode"`
}

type rawCurrentWeather struct {
	Time          json.RawMessage `json:"time"`
	Interval      json.RawMessage `json:"interval"`
	Temperature   json.RawMessage `json:"temperature"`
	Windspeed     json.RawMessage `json:"windspeed"`
	Winddirection json.RawMessage `json:"winddirection"`
	IsDay         json.RawMessage `json:"is_day"`
	Weathercode   json.RawMessage `json:"weathercode"`
}

func normalizeWeatherUnits(raw json.RawMessage) *models.WeatherUnits {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var ru rawWeatherUnits
	if err := json.Unmarshal(raw, &ru); err != nil {
		return nil
	}
	return &models.WeatherUnits{
		Time:          optionalText(ru.Time),
		Interval:      optionalText(ru.Interval),
		Temperature:   optionalText(ru.Temperature),
		Windspeed:     optionalText(ru.Windspeed),
		Winddirection: optionalText(ru.Winddirection),
		IsDay:         optionalText(ru.IsDay),
		Weathercode:   optionalText(ru.Weathercode),
	}
}

func normalizeCurrentWeather(raw json.RawMessage) *models.CurrentWeather {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var rc rawCurrentWeather
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil
	}
	return &models.CurrentWeather{
		Time:          optionalDate(rc.Time),
		Interval:      jsonutil.FlexibleNumber(rc.Interval),
		Temperature:   jsonutil.FlexibleNumber(rc.Temperature),
		Windspeed:     jsonutil.FlexibleNumber(rc.Windspeed),
		Winddirection: jsonutil.FlexibleNumber(rc.Winddirection),
		IsDay:         jsonutil.FlexibleNumber(rc.IsDay),
		Weathercode:   jsonutil.FlexibleNumber(rc.Weathercode),
	}
}

// ValidateWeather normalizes and validates one enrichment record. Latitude
// and longitude are required; every other numeric field is either absent or
// within its domain bound. All violations are reported together.
func ValidateWeather(raw json.RawMessage) (*models.Weather, error) {
	ve := &apperrors.ValidationError{}

	var rw rawWeather
	if err := json.Unmarshal(raw, &rw); err != nil {
		ve.Add("weather", "must be an object")
		return nil, ve
	}

	weather := models.Weather{
		GenerationTimeMs:     jsonutil.FlexibleNumber(rw.GenerationTimeMs),
		UTCOffsetSeconds:     jsonutil.FlexibleNumber(rw.UTCOffsetSeconds),
		Timezone:             optionalText(rw.Timezone),
		TimezoneAbbreviation: optionalText(rw.TimezoneAbbreviation),
		Elevation:            jsonutil.FlexibleNumber(rw.Elevation),
		Units:                normalizeWeatherUnits(rw.Units),
		Current:              normalizeCurrentWeather(rw.Current),
	}

	// Coordinates are required, and zero is a legal value, so presence is
	// checked here rather than with a `required` tag.
	if lat := jsonutil.FlexibleNumber(rw.Latitude); lat != nil {
		weather.Latitude = *lat
	} else {
		ve.Add("latitude", "is required")
	}
	if lon := jsonutil.FlexibleNumber(rw.Longitude); lon != nil {
		weather.Longitude = *lon
	} else {
		ve.Add("longitude", "is required")
	}

	collectViolations(ve, "", validate.Struct(weather))

	if ve.HasViolations() {
		return nil, ve
	}
	return &weather, nil
}
