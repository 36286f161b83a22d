package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is the static world definition: the map, its legend, the
// character roster and the cast lists the scheduler uses for batching.
// It never changes during a session.
type Seed struct {
	ScenarioName string                `json:"scenario_name" yaml:"scenario_name"`
	Description  string                `json:"description" yaml:"description"`
	GridSize     int                   `json:"grid_size" yaml:"grid_size"`
	MapLegend    map[string]string     `json:"map_legend" yaml:"map_legend"`
	MapColors    map[string]string     `json:"map_colors,omitempty" yaml:"map_colors,omitempty"`
	MapLayout    []string              `json:"map_layout" yaml:"map_layout"`
	Characters   map[string]*Character `json:"characters" yaml:"characters"`
	LootTable    []string              `json:"loot_table,omitempty" yaml:"loot_table,omitempty"`

	// PriorityCast get a dedicated oracle call each; ExtrasCast share a
	// single batch regardless of size.
	PriorityCast []string `json:"priority_cast,omitempty" yaml:"priority_cast,omitempty"`
	ExtrasCast   []string `json:"extras_cast,omitempty" yaml:"extras_cast,omitempty"`

	// StartTime is the clock minute a brand new session opens at.
	StartTime int `json:"start_time,omitempty" yaml:"start_time,omitempty"`
}

// LoadSeed reads and validates a world definition. YAML and JSON are
// both accepted, keyed off the file extension. Any failure here is
// fatal to startup: the simulation refuses to run without a world.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world seed %s: %w", path, err)
	}

	var seed Seed
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seed)
	default:
		err = json.Unmarshal(data, &seed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse world seed %s: %w", path, err)
	}

	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid world seed %s: %w", path, err)
	}

	for name, c := range seed.Characters {
		c.Name = name
		if c.Level == 0 {
			c.Level = 1
		}
	}
	if seed.StartTime == 0 {
		seed.StartTime = 1200
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	if s.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", s.GridSize)
	}
	if len(s.MapLayout) != s.GridSize {
		return fmt.Errorf("map_layout has %d rows, want %d", len(s.MapLayout), s.GridSize)
	}
	for y, row := range s.MapLayout {
		if len([]rune(row)) != s.GridSize {
			return fmt.Errorf("map_layout row %d has %d cells, want %d", y, len([]rune(row)), s.GridSize)
		}
	}
	if len(s.Characters) == 0 {
		return fmt.Errorf("character roster is empty")
	}
	for name, c := range s.Characters {
		if c.Pos[0] < 0 || c.Pos[0] >= s.GridSize || c.Pos[1] < 0 || c.Pos[1] >= s.GridSize {
			return fmt.Errorf("character %s starts out of bounds at %v", name, c.Pos)
		}
	}
	return nil
}

// TerrainAt names the terrain under a coordinate. Off-grid is open
// ocean; on-grid codes missing from the legend are unknown.
func (s *Seed) TerrainAt(x, y int) string {
	if x < 0 || x >= s.GridSize || y < 0 || y >= s.GridSize {
		return "Océan"
	}
	code := string([]rune(s.MapLayout[y])[x])
	if name, ok := s.MapLegend[code]; ok {
		return name
	}
	return "Inconnu"
}

// ClampPos folds a coordinate back inside the grid.
func (s *Seed) ClampPos(x, y int) (int, int) {
	return clamp(x, 0, s.GridSize-1), clamp(y, 0, s.GridSize-1)
}
