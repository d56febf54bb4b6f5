// Package orders supplies the engine's external collaborators on the order
// side: the item catalog and the synthetic order generator.
package orders

import (
	"errors"
	"fmt"

	"github.com/warehouse-sim/backend/internal/layout"
	"github.com/warehouse-sim/backend/internal/models"
)

// ErrNotFound indicates a well-formed item ID that has no stock location.
var ErrNotFound = errors.New("item not found in catalog")

// Catalog maps item IDs to stock locations. It is generated from the grid:
// every valid non-excluded cell holds exactly one item.
type Catalog struct {
	locations map[string]models.Coordinate
	itemIDs   []string
}

// NewCatalog builds the full catalog, honoring layout rules exclusions.
// rules may be nil, in which case only the packout cell is excluded.
func NewCatalog(rules *layout.Rules) *Catalog {
	c := &Catalog{
		locations: make(map[string]models.Coordinate),
		itemIDs:   make([]string, 0, models.MaxAisle*models.MaxRack),
	}

	for aisle := 1; aisle <= models.MaxAisle; aisle++ {
		for rack := 1; rack <= models.MaxRack; rack++ {
			coord := models.Coordinate{Aisle: aisle, Rack: rack}
			if rules.IsExcluded(coord) {
				continue
			}
			id, err := layout.CoordinateToItemID(coord)
			if err != nil {
				continue
			}
			c.locations[id] = coord
			c.itemIDs = append(c.itemIDs, id)
		}
	}

	return c
}

// Resolve returns the stock location for an item ID. A malformed ID yields a
// layout.ErrParse-wrapped error; a well-formed but unknown ID yields
// ErrNotFound.
func (c *Catalog) Resolve(itemID string) (models.Coordinate, error) {
	if _, err := layout.ItemIDToCoordinate(itemID); err != nil {
		return models.Coordinate{}, err
	}
	stored, ok := c.locations[itemID]
	if !ok {
		return models.Coordinate{}, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	return stored, nil
}

// ItemIDs returns all catalog item IDs in grid order.
func (c *Catalog) ItemIDs() []string {
	return c.itemIDs
}

// Len returns the number of stocked items.
func (c *Catalog) Len() int {
	return len(c.itemIDs)
}
