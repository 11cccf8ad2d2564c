package models

// Relation links a source asset to a target asset via a relation type. It
// has no identity beyond these three fields.
type Relation struct {
	SourceID       string `json:"source_id"`
	TargetID       string `json:"target_id"`
	RelationTypeID string `json:"relation_type_id"`
}
