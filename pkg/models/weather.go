package models

// Weather is the validated enrichment record attached to each character.
// Latitude and longitude are required; everything else is validated-or-absent.
// Numeric bounds follow the upstream forecast API's documented ranges.
type Weather struct {
	Latitude             float64         `json:"latitude" validate:"max=90"`
	Longitude            float64         `json:"longitude" validate:"max=180"`
	GenerationTimeMs     *float64        `json:"generationtime_ms,omitempty" validate:"omitempty,max=60000"`
	UTCOffsetSeconds     *float64        `json:"utc_offset_seconds,omitempty" validate:"omitempty,max=50400"`
	Timezone             *string         `json:"timezone,omitempty" validate:"omitempty,max=50,tz_name"`
	TimezoneAbbreviation *string         `json:"timezone_abbreviation,omitempty" validate:"omitempty,max=10,tz_abbr"`
	Elevation            *float64        `json:"elevation,omitempty" validate:"omitempty,max=10000"`
	Units                *WeatherUnits   `json:"current_weather_units,omitempty"`
	Current              *CurrentWeather `json:"current_weather,omitempty"`
}

// WeatherUnits carries the unit labels reported alongside a current reading.
type WeatherUnits struct {
	Time          *string `json:"time,omitempty" validate:"omitempty,max=50,unit_label"`
	Interval      *string `json:"interval,omitempty" validate:"omitempty,max=50,unit_label"`
	Temperature   *string `json:"temperature,omitempty" validate:"omitempty,max=50,unit_label"`
	Windspeed     *string `json:"windspeed,omitempty" validate:"omitempty,max=50,unit_label"`
	Winddirection *string `json:"winddirection,omitempty" validate:"omitempty,max=50,unit_label"`
	IsDay         *string `json:"is_day,omitempty" validate:"omitempty,max=50,unit_label"`
	Weathercode   *string `json:"weathercode,omitempty" validate:"omitempty,max=50,unit_label"`
}

// CurrentWeather is the current reading sub-object of an enrichment record.
type CurrentWeather struct {
	Time          *string  `json:"time,omitempty" validate:"omitempty,max=40,iso8601flex"`
	Interval      *float64 `json:"interval,omitempty" validate:"omitempty,max=86400"`
	Temperature   *float64 `json:"temperature,omitempty" validate:"omitempty,max=100"`
	Windspeed     *float64 `json:"windspeed,omitempty" validate:"omitempty,max=500"`
	Winddirection *float64 `json:"winddirection,omitempty" validate:"omitempty,max=360"`
	IsDay         *float64 `json:"is_day,omitempty" validate:"omitempty,max=1"`
	Weathercode   *float64 `json:"weathercode,omitempty" validate:"omitempty,max=99"`
}
