package search

import "time"

// Config is one search profile, loaded from searches/<name>.yml. Its fields
// map onto the upstream feed's query parameters and are passed explicitly
// into every fetch call.
type Config struct {
	Name          string         // Derived from filename (without .yml extension)
	City          string         `yaml:"city"`
	Neighborhoods []string       `yaml:"neighborhoods"`
	Area          string         `yaml:"area"`
	TopArea       string         `yaml:"top_area"`
	Property      string         `yaml:"property"`
	MaxPrice      int            `yaml:"max_price"`
	MinRooms      float64        `yaml:"min_rooms"`
	MaxRooms      float64        `yaml:"max_rooms"`
	MinSquareM    int            `yaml:"min_square_meter"`
	MinFloor      int            `yaml:"min_floor"`
	Settings      ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
}

func (s *ConfigSettings) GetRefreshInterval() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s *ConfigSettings) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
