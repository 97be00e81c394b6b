package domain

// InventoryLevel is the tracked quantity of an item at one location.
type InventoryLevel struct {
	LocationID   string
	LocationName string
	Available    int64
}

// InventorySnapshot is the catalog's current inventory state for one
// product variant. It is fetched fresh for every record.
type InventorySnapshot struct {
	VariantID       string
	SKU             string
	InventoryItemID string
	Levels          []InventoryLevel
}

// Level returns the level tracked at the location with the given name.
func (s *InventorySnapshot) Level(locationName string) (InventoryLevel, bool) {
	for _, l := range s.Levels {
		if l.LocationName == locationName {
			return l, true
		}
	}
	return InventoryLevel{}, false
}

// Track records a newly activated location with a starting quantity of 0.
func (s *InventorySnapshot) Track(loc Location) InventoryLevel {
	level := InventoryLevel{LocationID: loc.ID, LocationName: loc.Name}
	s.Levels = append(s.Levels, level)
	return level
}

// Location is an entry of the catalog's location directory.
type Location struct {
	ID   string
	Name string
}

// FindLocation resolves a location by exact name.
func FindLocation(directory []Location, name string) (Location, bool) {
	for _, l := range directory {
		if l.Name == name {
			return l, true
		}
	}
	return Location{}, false
}

// LocationTarget is a named stock location the feed reports quantities for.
type LocationTarget struct {
	// Key is a short identifier used in configuration ("sweden").
	Key string

	// Name is the exact display name of the location in the catalog.
	Name string

	// Column is the feed column holding the quantity for this location.
	Column string

	// Format describes how Column encodes the quantity.
	Format QuantityFormat
}

// DefaultLocationTargets returns the two remote warehouses the feed reports.
func DefaultLocationTargets() []LocationTarget {
	return []LocationTarget{
		{
			Key:    "sweden",
			Name:   "Fjernlager - Leveres innen 4-6 dager",
			Column: "SWEDEN",
			Format: QuantityDecimal,
		},
		{
			Key:    "vaasa",
			Name:   "Fjernlager - Leveres innen 6-8 dager",
			Column: "VAASA",
			Format: QuantityInteger,
		},
	}
}

// TargetNames returns the display names of the targets.
func TargetNames(targets []LocationTarget) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// Adjustment defaults used by every quantity mutation.
const (
	AdjustmentReason   = "correction"
	AdjustmentQuantity = "available"
)

// QuantityChange is a signed adjustment of one item at one location.
type QuantityChange struct {
	InventoryItemID string
	LocationID      string
	LocationName    string
	Delta           int64
}

// AdjustmentRequest is a batch of changes applied in one round trip.
type AdjustmentRequest struct {
	Reason  string
	Name    string
	Changes []QuantityChange
}

// NewAdjustmentRequest builds a correction of the available quantity.
func NewAdjustmentRequest(changes []QuantityChange) AdjustmentRequest {
	return AdjustmentRequest{
		Reason:  AdjustmentReason,
		Name:    AdjustmentQuantity,
		Changes: changes,
	}
}
