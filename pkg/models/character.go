package models

// Character is one validated record from the primary people catalog.
// Required fields are always present after validation; optional fields are
// either a validated value or nil, never a raw unvalidated string.
type Character struct {
	Name      string   `json:"name" validate:"required,max=100,char_name"`
	Height    *float64 `json:"height,omitempty" validate:"omitempty,min=0,max=500"`
	Mass      *float64 `json:"mass,omitempty" validate:"omitempty,min=0,max=1000"`
	HairColor *string  `json:"hair_color,omitempty" validate:"omitempty,max=40,color_list"`
	SkinColor *string  `json:"skin_color,omitempty" validate:"omitempty,max=40,color_list"`
	EyeColor  *string  `json:"eye_color,omitempty" validate:"omitempty,max=40,color_list"`
	BirthYear *string  `json:"birth_year,omitempty" validate:"omitempty,max=12,birth_year"`
	Gender    *string  `json:"gender,omitempty" validate:"omitempty,max=50,gender"`
	Homeworld string   `json:"homeworld" validate:"required,url,max=2048"`
	Films     []string `json:"films" validate:"max=30,dive,url,max=2048"`
	Species   []string `json:"species" validate:"max=30,dive,url,max=2048"`
	Vehicles  []string `json:"vehicles" validate:"max=30,dive,url,max=2048"`
	Starships []string `json:"starships" validate:"max=30,dive,url,max=2048"`
	Created   *string  `json:"created,omitempty" validate:"omitempty,max=40,iso8601z"`
	Edited    *string  `json:"edited,omitempty" validate:"omitempty,max=40,iso8601z"`
	URL       string   `json:"url" validate:"required,url,max=2048"`
}
