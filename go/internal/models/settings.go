package models

// Settings holds the operator-tunable defaults of the console.
type Settings struct {
	DefaultTimer     int     `json:"default_timer"`
	DefaultIncrement float64 `json:"default_increment"`
	SoundsEnabled    bool    `json:"sounds_enabled"`
	Theme            string  `json:"theme"`
}
