package layout

import (
	"fmt"
	"io"
	"os"

	"github.com/warehouse-sim/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Rules is the optional YAML layout rules file. It names the grid and lists
// cells excluded from item placement (maintenance bays, charging docks).
// The grid dimensions themselves are fixed; the file cannot resize them.
type Rules struct {
	Name          string       `json:"name" yaml:"name"`
	ExcludedCells []RuleCell   `json:"excludedCells" yaml:"excluded_cells"`
	Zones         []LayoutZone `json:"zones" yaml:"zones"`
}

// RuleCell is one grid cell reference in the rules file.
type RuleCell struct {
	Aisle int    `json:"aisle" yaml:"aisle"`
	Rack  int    `json:"rack" yaml:"rack"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// LayoutZone is a named rectangular region used by the dashboard overlay.
type LayoutZone struct {
	Name      string `json:"name" yaml:"name"`
	FromAisle int    `json:"fromAisle" yaml:"from_aisle"`
	ToAisle   int    `json:"toAisle" yaml:"to_aisle"`
	FromRack  int    `json:"fromRack" yaml:"from_rack"`
	ToRack    int    `json:"toRack" yaml:"to_rack"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ParseRules parses a YAML layout rules file.
func ParseRules(filePath string) (*Rules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseRulesFromReader(file)
}

// ParseRulesFromReader parses rules from an io.Reader and validates every
// referenced cell against the grid bounds.
func ParseRulesFromReader(r io.Reader) (*Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks every cell and zone against the warehouse bounds.
func (r *Rules) Validate() error {
	for _, cell := range r.ExcludedCells {
		c := models.Coordinate{Aisle: cell.Aisle, Rack: cell.Rack}
		if !c.IsValid() {
			return fmt.Errorf("excluded cell %s outside warehouse grid", c)
		}
	}
	for _, z := range r.Zones {
		if z.FromAisle < 1 || z.ToAisle > models.MaxAisle || z.FromAisle > z.ToAisle {
			return fmt.Errorf("zone %q has invalid aisle range %d-%d", z.Name, z.FromAisle, z.ToAisle)
		}
		if z.FromRack < 1 || z.ToRack > models.MaxRack || z.FromRack > z.ToRack {
			return fmt.Errorf("zone %q has invalid rack range %d-%d", z.Name, z.FromRack, z.ToRack)
		}
	}
	return nil
}

// IsExcluded reports whether the cell is excluded from item placement.
// The packout cell is always excluded.
func (r *Rules) IsExcluded(c models.Coordinate) bool {
	if c.IsPackout() {
		return true
	}
	if r == nil {
		return false
	}
	for _, cell := range r.ExcludedCells {
		if cell.Aisle == c.Aisle && cell.Rack == c.Rack {
			return true
		}
	}
	return false
}
