package gremlin

import (
	"errors"
	"fmt"
)

// UpsertVertex guarantees at most one vertex per (label, unique property
// value): an existence lookup decides between updating the matched
// vertex and creating a new one. The two round trips are not atomic
// across processes; the client mutex serializes them within this one,
// and the pipeline runs as a single sequential writer.
func (c *Client) UpsertVertex(label, idValue, uniquePropertyName, uniquePropertyValue string, properties map[string]any) (map[string]any, error) {
	if label == "" || idValue == "" || uniquePropertyName == "" || uniquePropertyValue == "" {
		return nil, errors.New("upsert vertex: label, id value, unique property name and value are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// id and label are addressed explicitly in the statements, never as
	// generic properties; the unique property must always be written.
	filtered := make(map[string]any, len(properties)+1)
	for key, value := range properties {
		if key == "id" || key == "label" {
			continue
		}
		filtered[key] = value
	}
	filtered[uniquePropertyName] = uniquePropertyValue

	existing, err := c.findVertex(label, uniquePropertyName, uniquePropertyValue)
	if err != nil {
		return nil, err
	}

	var statement string
	if existing != nil {
		vertexID := RecordID(existing)
		if vertexID == "" {
			return nil, fmt.Errorf("upsert vertex: matched %s vertex has no id", label)
		}
		// Unique property, partition key and id are immutable after
		// creation.
		updates := make(map[string]any, len(filtered))
		for key, value := range filtered {
			if key == uniquePropertyName || key == c.cfg.PartitionKeyField || key == "id" {
				continue
			}
			updates[key] = value
		}
		statement = VertexUpdate(vertexID, label, c.cfg.PartitionKeyField, updates)
	} else {
		creates := make(map[string]any, len(filtered))
		for key, value := range filtered {
			if key == c.cfg.PartitionKeyField || key == "id" {
				continue
			}
			creates[key] = value
		}
		statement = VertexUpsertCreation(label, idValue, c.cfg.PartitionKeyField, creates)
	}

	results, err := c.execute(statement)
	if err != nil {
		return nil, err
	}
	return firstRecord(results, "upsert vertex")
}

// findVertex runs the existence lookup; nil means no match. Requires c.mu
// held.
func (c *Client) findVertex(label, uniquePropertyName, uniquePropertyValue string) (map[string]any, error) {
	results, err := c.execute(ExistenceLookup(label, uniquePropertyName, uniquePropertyValue, c.cfg.PartitionKeyField))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	record, ok := toRecord(results[0])
	if !ok {
		return nil, fmt.Errorf("find vertex: unexpected result shape %T", results[0])
	}
	return record, nil
}
