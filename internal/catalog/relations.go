package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/Badriprasad/knowledge-graph/internal/models"
)

const relationsPath = "/rest/2.0/relations"

// FetchRelations retrieves all relations whose source is the given asset
// and normalizes each into a (source, target, type) triple. A record
// missing any of the three identifiers aborts with an error: that shape
// signals a schema mismatch and must surface rather than be skipped.
func (c *Client) FetchRelations(ctx context.Context, assetID string) ([]models.Relation, error) {
	filters := url.Values{}
	filters.Set("sourceId", assetID)

	records, err := c.FetchAll(ctx, relationsPath, filters)
	if err != nil {
		return nil, err
	}

	relations := make([]models.Relation, 0, len(records))
	for i, record := range records {
		relation, err := ParseRelation(record)
		if err != nil {
			return relations, fmt.Errorf("relation %d: %w", i, err)
		}
		relations = append(relations, relation)
	}
	return relations, nil
}

// ParseRelation projects source.id, target.id and type.id out of a raw
// relation record.
func ParseRelation(body []byte) (models.Relation, error) {
	type ref struct {
		ID string `json:"id"`
	}
	var payload struct {
		Source *ref `json:"source"`
		Target *ref `json:"target"`
		Type   *ref `json:"type"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Relation{}, err
	}

	if payload.Source == nil || payload.Source.ID == "" {
		return models.Relation{}, errors.New("relation record has no source id")
	}
	if payload.Target == nil || payload.Target.ID == "" {
		return models.Relation{}, errors.New("relation record has no target id")
	}
	if payload.Type == nil || payload.Type.ID == "" {
		return models.Relation{}, errors.New("relation record has no type id")
	}

	return models.Relation{
		SourceID:       payload.Source.ID,
		TargetID:       payload.Target.ID,
		RelationTypeID: payload.Type.ID,
	}, nil
}
