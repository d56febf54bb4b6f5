package layout

import (
	"strings"
	"testing"

	"github.com/warehouse-sim/backend/internal/models"
)

const sampleRules = `
name: main-floor
excluded_cells:
  - aisle: 3
    rack: 5
    label: charging dock
  - aisle: 10
    rack: 12
zones:
  - name: fast movers
    from_aisle: 1
    to_aisle: 5
    from_rack: 1
    to_rack: 20
    color: "#88cc88"
`

func TestParseRulesFromReader(t *testing.T) {
	rules, err := ParseRulesFromReader(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("Failed to parse rules: %v", err)
	}

	if rules.Name != "main-floor" {
		t.Errorf("Expected name main-floor, got %s", rules.Name)
	}
	if len(rules.ExcludedCells) != 2 {
		t.Fatalf("Expected 2 excluded cells, got %d", len(rules.ExcludedCells))
	}
	if len(rules.Zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(rules.Zones))
	}

	if !rules.IsExcluded(models.Coordinate{Aisle: 3, Rack: 5}) {
		t.Error("Expected (3,5) to be excluded")
	}
	if rules.IsExcluded(models.Coordinate{Aisle: 3, Rack: 6}) {
		t.Error("Expected (3,6) not to be excluded")
	}
}

func TestParseRulesRejectsOutOfBounds(t *testing.T) {
	bad := `
excluded_cells:
  - aisle: 30
    rack: 5
`
	if _, err := ParseRulesFromReader(strings.NewReader(bad)); err == nil {
		t.Fatal("Expected error for excluded cell outside the grid")
	}

	badZone := `
zones:
  - name: broken
    from_aisle: 5
    to_aisle: 2
    from_rack: 1
    to_rack: 20
`
	if _, err := ParseRulesFromReader(strings.NewReader(badZone)); err == nil {
		t.Fatal("Expected error for inverted zone range")
	}
}

func TestIsExcludedAlwaysCoversPackout(t *testing.T) {
	var rules *Rules
	if !rules.IsExcluded(models.Packout()) {
		t.Error("Packout must be excluded even with no rules loaded")
	}
}
