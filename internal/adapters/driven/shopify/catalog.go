package shopify

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

const variantsQuery = `query VariantsBySKU($query: String!, $first: Int!, $levels: Int!) {
  productVariants(first: $first, query: $query) {
    nodes {
      id
      sku
      inventoryItem {
        id
        inventoryLevels(first: $levels) {
          nodes {
            quantities(names: ["available"]) {
              name
              quantity
            }
            location {
              id
              name
            }
          }
        }
      }
    }
  }
}`

const locationsQuery = `query Locations($first: Int!) {
  locations(first: $first) {
    nodes {
      id
      name
    }
  }
}`

const activateMutation = `mutation ActivateInventoryItem($inventoryItemId: ID!, $locationId: ID!) {
  inventoryActivate(inventoryItemId: $inventoryItemId, locationId: $locationId) {
    inventoryLevel {
      id
      location {
        id
      }
    }
    userErrors {
      field
      message
    }
  }
}`

const adjustMutation = `mutation inventoryAdjustQuantities($input: InventoryAdjustQuantitiesInput!) {
  inventoryAdjustQuantities(input: $input) {
    inventoryAdjustmentGroup {
      createdAt
      reason
    }
    userErrors {
      field
      message
    }
  }
}`

type userErrorNode struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func toUserErrors(nodes []userErrorNode) []domain.UserError {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]domain.UserError, len(nodes))
	for i, n := range nodes {
		out[i] = domain.UserError{Field: n.Field, Message: n.Message}
	}
	return out
}

type variantsData struct {
	ProductVariants struct {
		Nodes []struct {
			ID            string `json:"id"`
			SKU           string `json:"sku"`
			InventoryItem *struct {
				ID              string `json:"id"`
				InventoryLevels struct {
					Nodes []struct {
						Quantities []struct {
							Name     string `json:"name"`
							Quantity int64  `json:"quantity"`
						} `json:"quantities"`
						Location struct {
							ID   string `json:"id"`
							Name string `json:"name"`
						} `json:"location"`
					} `json:"nodes"`
				} `json:"inventoryLevels"`
			} `json:"inventoryItem"`
		} `json:"nodes"`
	} `json:"productVariants"`
}

// skuSearch builds the search expression for an exact SKU.
func skuSearch(sku string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(sku)
	return `sku:"` + escaped + `"`
}

// LookupVariants searches variants by SKU and keeps exact matches only,
// since the search syntax also matches prefixes and tokens.
func (c *Client) LookupVariants(ctx context.Context, tenant domain.Tenant, sku string) ([]domain.InventorySnapshot, error) {
	var data variantsData
	err := c.execute(ctx, tenant, "productVariants", variantsQuery, map[string]any{
		"query":  skuSearch(sku),
		"first":  variantLookupLimit,
		"levels": c.cfg.InventoryLevelPageSize,
	}, false, &data)
	if err != nil {
		return nil, err
	}

	var snapshots []domain.InventorySnapshot
	for _, v := range data.ProductVariants.Nodes {
		if v.SKU != sku {
			continue
		}
		// Exact matches are kept even without an inventory item so the
		// match count stays honest; the snapshot then has no item ID.
		snap := domain.InventorySnapshot{
			VariantID: v.ID,
			SKU:       v.SKU,
		}
		if v.InventoryItem == nil {
			snapshots = append(snapshots, snap)
			continue
		}
		snap.InventoryItemID = v.InventoryItem.ID
		for _, lvl := range v.InventoryItem.InventoryLevels.Nodes {
			level := domain.InventoryLevel{
				LocationID:   lvl.Location.ID,
				LocationName: lvl.Location.Name,
			}
			for _, q := range lvl.Quantities {
				if q.Name == domain.AdjustmentQuantity {
					level.Available = q.Quantity
				}
			}
			snap.Levels = append(snap.Levels, level)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// ListLocations returns the shop's location directory.
func (c *Client) ListLocations(ctx context.Context, tenant domain.Tenant) ([]domain.Location, error) {
	var data struct {
		Locations struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"locations"`
	}
	err := c.execute(ctx, tenant, "locations", locationsQuery, map[string]any{
		"first": c.cfg.LocationPageSize,
	}, false, &data)
	if err != nil {
		return nil, err
	}

	locations := make([]domain.Location, len(data.Locations.Nodes))
	for i, n := range data.Locations.Nodes {
		locations[i] = domain.Location{ID: n.ID, Name: n.Name}
	}
	return locations, nil
}

// ActivateInventory starts tracking the item at the location.
func (c *Client) ActivateInventory(
	ctx context.Context,
	tenant domain.Tenant,
	inventoryItemID, locationID string,
) (string, []domain.UserError, error) {
	var data struct {
		InventoryActivate *struct {
			InventoryLevel *struct {
				ID       string `json:"id"`
				Location struct {
					ID string `json:"id"`
				} `json:"location"`
			} `json:"inventoryLevel"`
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"inventoryActivate"`
	}
	err := c.execute(ctx, tenant, "inventoryActivate", activateMutation, map[string]any{
		"inventoryItemId": inventoryItemID,
		"locationId":      locationID,
	}, true, &data)
	if err != nil {
		return "", nil, err
	}

	result := data.InventoryActivate
	if result == nil {
		return "", nil, fmt.Errorf("shopify: inventoryActivate returned no payload")
	}

	var activated string
	if result.InventoryLevel != nil {
		activated = result.InventoryLevel.Location.ID
	}
	return activated, toUserErrors(result.UserErrors), nil
}

type adjustChange struct {
	Delta           int64  `json:"delta"`
	InventoryItemID string `json:"inventoryItemId"`
	LocationID      string `json:"locationId"`
}

type adjustInput struct {
	Reason  string         `json:"reason"`
	Name    string         `json:"name"`
	Changes []adjustChange `json:"changes"`
}

// AdjustQuantities applies the batch in one inventoryAdjustQuantities call.
func (c *Client) AdjustQuantities(
	ctx context.Context,
	tenant domain.Tenant,
	req domain.AdjustmentRequest,
) ([]domain.UserError, error) {
	input := adjustInput{
		Reason:  req.Reason,
		Name:    req.Name,
		Changes: make([]adjustChange, len(req.Changes)),
	}
	for i, ch := range req.Changes {
		input.Changes[i] = adjustChange{
			Delta:           ch.Delta,
			InventoryItemID: ch.InventoryItemID,
			LocationID:      ch.LocationID,
		}
	}

	var data struct {
		InventoryAdjustQuantities *struct {
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"inventoryAdjustQuantities"`
	}
	err := c.execute(ctx, tenant, "inventoryAdjustQuantities", adjustMutation, map[string]any{
		"input": input,
	}, true, &data)
	if err != nil {
		return nil, err
	}
	if data.InventoryAdjustQuantities == nil {
		return nil, fmt.Errorf("shopify: inventoryAdjustQuantities returned no payload")
	}
	return toUserErrors(data.InventoryAdjustQuantities.UserErrors), nil
}
