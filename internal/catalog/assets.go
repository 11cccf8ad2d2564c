package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/Badriprasad/knowledge-graph/internal/models"
)

const assetsPath = "/rest/2.0/assets"

// FetchAssets retrieves every asset from the catalog, optionally filtered
// by asset type id. A fetch failure aborts; an unparsable record returns
// the assets parsed so far alongside the error.
func (c *Client) FetchAssets(ctx context.Context, typeID string) ([]models.Asset, error) {
	filters := url.Values{}
	if typeID != "" {
		filters.Set("typeId", typeID)
	}

	records, err := c.FetchAll(ctx, assetsPath, filters)
	if err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(records))
	for i, record := range records {
		asset, err := ParseAsset(record)
		if err != nil {
			return assets, fmt.Errorf("asset %d: %w", i, err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// ParseAsset decodes a raw catalog asset record. The id field is required;
// nested domain/type/status objects are captured when present.
func ParseAsset(body []byte) (models.Asset, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Asset{}, err
	}

	asset := models.Asset{Fields: raw}
	if id, ok := raw["id"].(string); ok {
		asset.ID = id
	}
	if asset.ID == "" {
		return models.Asset{}, errors.New("asset record has no id")
	}
	if resourceType, ok := raw["resourceType"].(string); ok {
		asset.ResourceType = resourceType
	}
	if nested, ok := raw["domain"].(map[string]any); ok {
		asset.Domain = nested
	}
	if nested, ok := raw["type"].(map[string]any); ok {
		asset.Type = nested
	}
	if nested, ok := raw["status"].(map[string]any); ok {
		asset.Status = nested
	}
	return asset, nil
}
