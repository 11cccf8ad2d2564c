package models

// Asset is a catalog asset record. Fields holds the raw decoded JSON
// object so vertex projection can preserve exactly the keys the catalog
// returned; Domain, Type and Status are the nested sub-entity objects
// when present on the record.
type Asset struct {
	ID           string
	ResourceType string
	Fields       map[string]any
	Domain       map[string]any
	Type         map[string]any
	Status       map[string]any
}

// Nested returns the named sub-entity record, or nil when the asset does
// not carry one.
func (a Asset) Nested(kind string) map[string]any {
	switch kind {
	case "domain":
		return a.Domain
	case "type":
		return a.Type
	case "status":
		return a.Status
	}
	return nil
}

// CreatedOn returns the asset's creation timestamp as reported by the
// catalog, or "unknown" when the field is absent.
func (a Asset) CreatedOn() any {
	if v, ok := a.Fields["createdOn"]; ok && v != nil {
		return v
	}
	return "unknown"
}
