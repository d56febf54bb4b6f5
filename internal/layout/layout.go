// Package layout provides warehouse grid geometry: coordinate validation,
// item-ID translation, and the layout rules file.
package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"

	"github.com/warehouse-sim/backend/internal/models"
)

// ErrParse indicates an item ID that does not match the ITEM_<Letter>_<NN>
// pattern. Callers may fall back to a random valid coordinate but must log
// the failure since it signals an upstream data problem.
var ErrParse = errors.New("item id parse error")

// InvalidLocationError indicates a coordinate outside the grid or inside the
// packout zone.
type InvalidLocationError struct {
	Coordinate models.Coordinate
	Reason     string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location %s: %s", e.Coordinate, e.Reason)
}

// itemIDPattern matches ITEM_<Letter>_<NN>: letter A..Y is the aisle, the
// numeric suffix is the rack.
var itemIDPattern = regexp.MustCompile(`^ITEM_([A-Y])_(\d{1,2})$`)

// ItemIDToCoordinate translates an item identifier to its grid cell.
// A=1 .. Y=25 maps to the aisle, the numeric suffix (1-20) to the rack.
func ItemIDToCoordinate(itemID string) (models.Coordinate, error) {
	m := itemIDPattern.FindStringSubmatch(itemID)
	if m == nil {
		return models.Coordinate{}, fmt.Errorf("%w: %q", ErrParse, itemID)
	}

	aisle := int(m[1][0]-'A') + 1
	rack, err := strconv.Atoi(m[2])
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: %q", ErrParse, itemID)
	}

	c := models.Coordinate{Aisle: aisle, Rack: rack}
	if !c.IsValid() {
		return models.Coordinate{}, &InvalidLocationError{Coordinate: c, Reason: "outside warehouse grid"}
	}
	if c.IsPackout() {
		return models.Coordinate{}, &InvalidLocationError{Coordinate: c, Reason: "packout zone holds no items"}
	}
	return c, nil
}

// CoordinateToItemID is the inverse translation.
func CoordinateToItemID(c models.Coordinate) (string, error) {
	if !c.IsValid() {
		return "", &InvalidLocationError{Coordinate: c, Reason: "outside warehouse grid"}
	}
	if c.IsPackout() {
		return "", &InvalidLocationError{Coordinate: c, Reason: "packout zone holds no items"}
	}
	return fmt.Sprintf("ITEM_%c_%02d", 'A'+c.Aisle-1, c.Rack), nil
}

// RandomCoordinate returns a uniformly random valid non-packout cell. The
// rand source is injected so the malformed-item-ID fallback stays
// deterministic under test.
func RandomCoordinate(rng *rand.Rand) models.Coordinate {
	for {
		c := models.Coordinate{
			Aisle: rng.Intn(models.MaxAisle) + 1,
			Rack:  rng.Intn(models.MaxRack) + 1,
		}
		if !c.IsPackout() {
			return c
		}
	}
}

// ValidateRoutePoint checks a coordinate is usable as a routing endpoint.
func ValidateRoutePoint(c models.Coordinate) error {
	if !c.IsValid() {
		return &InvalidLocationError{Coordinate: c, Reason: "outside warehouse grid"}
	}
	return nil
}
