package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	swedenName = "Fjernlager - Leveres innen 4-6 dager"
	vaasaName  = "Fjernlager - Leveres innen 6-8 dager"
)

func resolved(target LocationTarget, id string, tracked int64, reported ReportedQuantity) ResolvedTarget {
	return ResolvedTarget{
		Target:   target,
		Level:    InventoryLevel{LocationID: id, LocationName: target.Name, Available: tracked},
		Reported: reported,
	}
}

func TestResolvedTarget_Delta(t *testing.T) {
	targets := DefaultLocationTargets()

	tests := []struct {
		name     string
		tracked  int64
		reported ReportedQuantity
		want     int64
	}{
		{"increase", 2, Quantity(5), 3},
		{"decrease", 9, Quantity(4), -5},
		{"equal", 3, Quantity(3), 0},
		{"invalid reported quantity", 7, NoQuantity, 0},
		{"zero reported", 4, Quantity(0), -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := resolved(targets[0], "loc-1", tt.tracked, tt.reported)
			assert.Equal(t, tt.want, rt.Delta())
		})
	}
}

func TestSyncChanges_OnlyNonZero(t *testing.T) {
	targets := DefaultLocationTargets()

	changes := SyncChanges("item-1", []ResolvedTarget{
		resolved(targets[0], "loc-se", 2, Quantity(5)),
		resolved(targets[1], "loc-va", 3, Quantity(3)),
	})

	assert.Equal(t, []QuantityChange{
		{InventoryItemID: "item-1", LocationID: "loc-se", LocationName: swedenName, Delta: 3},
	}, changes)
}

func TestSyncChanges_AllZero(t *testing.T) {
	targets := DefaultLocationTargets()

	changes := SyncChanges("item-1", []ResolvedTarget{
		resolved(targets[0], "loc-se", 5, Quantity(5)),
		resolved(targets[1], "loc-va", 0, NoQuantity),
	})

	assert.Empty(t, changes)
}

func TestSyncChanges_NoDuplicateLocations(t *testing.T) {
	targets := DefaultLocationTargets()

	changes := SyncChanges("item-1", []ResolvedTarget{
		resolved(targets[0], "loc-same", 0, Quantity(5)),
		resolved(targets[1], "loc-same", 0, Quantity(8)),
	})

	assert.Len(t, changes, 1)
	assert.Equal(t, int64(5), changes[0].Delta)
}

func TestZeroOutChanges(t *testing.T) {
	snapshot := &InventorySnapshot{
		InventoryItemID: "item-9",
		Levels: []InventoryLevel{
			{LocationID: "loc-se", LocationName: swedenName, Available: 4},
			{LocationID: "loc-va", LocationName: vaasaName, Available: 2},
			{LocationID: "loc-shop", LocationName: "Shop floor", Available: 7},
			{LocationID: "loc-empty", LocationName: "Back room", Available: 0},
		},
	}

	changes := ZeroOutChanges(snapshot, []string{swedenName, vaasaName})

	assert.Equal(t, []QuantityChange{
		{InventoryItemID: "item-9", LocationID: "loc-shop", LocationName: "Shop floor", Delta: -7},
	}, changes)
}

func TestZeroOutChanges_NegativeQuantity(t *testing.T) {
	snapshot := &InventorySnapshot{
		InventoryItemID: "item-9",
		Levels: []InventoryLevel{
			{LocationID: "loc-shop", LocationName: "Shop floor", Available: -3},
		},
	}

	changes := ZeroOutChanges(snapshot, nil)

	assert.Len(t, changes, 1)
	assert.Equal(t, int64(3), changes[0].Delta)
}

func TestZeroOutChanges_Idempotent(t *testing.T) {
	snapshot := &InventorySnapshot{
		InventoryItemID: "item-9",
		Levels: []InventoryLevel{
			{LocationID: "loc-shop", LocationName: "Shop floor", Available: 7},
		},
	}

	first := ZeroOutChanges(snapshot, nil)
	for _, c := range first {
		for i := range snapshot.Levels {
			if snapshot.Levels[i].LocationID == c.LocationID {
				snapshot.Levels[i].Available += c.Delta
			}
		}
	}

	assert.Empty(t, ZeroOutChanges(snapshot, nil))
}

func TestInventorySnapshot_LevelAndTrack(t *testing.T) {
	snapshot := &InventorySnapshot{InventoryItemID: "item-1"}

	_, ok := snapshot.Level(swedenName)
	assert.False(t, ok)

	level := snapshot.Track(Location{ID: "loc-se", Name: swedenName})
	assert.Equal(t, int64(0), level.Available)

	got, ok := snapshot.Level(swedenName)
	assert.True(t, ok)
	assert.Equal(t, "loc-se", got.LocationID)
}

func TestFindLocation(t *testing.T) {
	directory := []Location{{ID: "1", Name: "Main"}, {ID: "2", Name: swedenName}}

	loc, ok := FindLocation(directory, swedenName)
	assert.True(t, ok)
	assert.Equal(t, "2", loc.ID)

	_, ok = FindLocation(directory, "main")
	assert.False(t, ok)
}
