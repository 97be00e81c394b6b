package domain

// ResolvedTarget pairs a location target with the tracked level it maps
// to and the quantity the feed reported for it.
type ResolvedTarget struct {
	Target   LocationTarget
	Level    InventoryLevel
	Reported ReportedQuantity
}

// Delta returns reported minus tracked. A reported quantity that is not
// valid contributes no change.
func (r ResolvedTarget) Delta() int64 {
	if !r.Reported.Valid {
		return 0
	}
	return r.Reported.Value - r.Level.Available
}

// SyncChanges computes the changes that bring each target location to
// its reported quantity. Zero deltas are dropped and each location
// appears at most once.
func SyncChanges(inventoryItemID string, targets []ResolvedTarget) []QuantityChange {
	var changes []QuantityChange
	seen := make(map[string]bool, len(targets))
	for _, rt := range targets {
		delta := rt.Delta()
		if delta == 0 || seen[rt.Level.LocationID] {
			continue
		}
		seen[rt.Level.LocationID] = true
		changes = append(changes, QuantityChange{
			InventoryItemID: inventoryItemID,
			LocationID:      rt.Level.LocationID,
			LocationName:    rt.Level.LocationName,
			Delta:           delta,
		})
	}
	return changes
}

// ZeroOutChanges computes the changes that bring every tracked location
// outside the protected set to 0. Locations already at 0 are skipped.
func ZeroOutChanges(snapshot *InventorySnapshot, protected []string) []QuantityChange {
	keep := make(map[string]bool, len(protected))
	for _, name := range protected {
		keep[name] = true
	}

	var changes []QuantityChange
	seen := make(map[string]bool, len(snapshot.Levels))
	for _, level := range snapshot.Levels {
		if keep[level.LocationName] || level.Available == 0 || seen[level.LocationID] {
			continue
		}
		seen[level.LocationID] = true
		changes = append(changes, QuantityChange{
			InventoryItemID: snapshot.InventoryItemID,
			LocationID:      level.LocationID,
			LocationName:    level.LocationName,
			Delta:           -level.Available,
		})
	}
	return changes
}
