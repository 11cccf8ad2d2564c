// Package gremlin builds and executes textual graph traversal statements
// against a Cosmos-DB-style Gremlin endpoint.
package gremlin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EscapeString escapes embedded single quotes so a value can be inlined in
// a traversal statement. Every string that reaches a statement goes
// through here; an unescaped quote is an injection vector.
func EscapeString(value string) string {
	return strings.ReplaceAll(value, "'", `\'`)
}

// FormatValue renders a property value for embedding in a statement:
// strings quoted and escaped, booleans as true/false, numbers bare, nil
// as null. Values of any other type are stringified and quoted.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + EscapeString(v) + "'"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return "'" + EscapeString(fmt.Sprintf("%v", v)) + "'"
	}
}

// FormatProperties renders one .property() step per map entry. Keys are
// emitted in sorted order so statements are deterministic.
func FormatProperties(properties map[string]any) string {
	if len(properties) == 0 {
		return ""
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(".property('")
		b.WriteString(EscapeString(key))
		b.WriteString("', ")
		b.WriteString(FormatValue(properties[key]))
		b.WriteString(")")
	}
	return b.String()
}

// VertexCreation emits an add-vertex statement with one property step per
// entry.
func VertexCreation(label string, properties map[string]any) string {
	return fmt.Sprintf("g.addV('%s')", EscapeString(label)) + FormatProperties(properties)
}

// VertexUpsertCreation emits a creation statement that pins the vertex id
// and the partition key before the remaining properties.
func VertexUpsertCreation(label, idValue, partitionKeyField string, properties map[string]any) string {
	return fmt.Sprintf("g.addV('%s').property('id', '%s').property('%s', '%s')",
		EscapeString(label), EscapeString(idValue),
		EscapeString(partitionKeyField), EscapeString(label)) + FormatProperties(properties)
}

// VertexUpdate emits a statement addressing an existing vertex by id and
// partition key, followed by property assignments.
func VertexUpdate(vertexID, label, partitionKeyField string, properties map[string]any) string {
	return fmt.Sprintf("g.V('%s').has('%s', '%s')",
		EscapeString(vertexID), EscapeString(partitionKeyField), EscapeString(label)) + FormatProperties(properties)
}

// EdgeCreation emits a statement that locates the source vertex by id and
// adds an edge to the target vertex located by id.
func EdgeCreation(fromID, toID, label string, properties map[string]any) string {
	return fmt.Sprintf("g.V('%s').addE('%s').to(g.V('%s'))",
		EscapeString(fromID), EscapeString(label), EscapeString(toID)) + FormatProperties(properties)
}

// ExistenceLookup emits a statement matching at most one vertex by label,
// partition key and unique property.
func ExistenceLookup(label, uniquePropertyName, uniquePropertyValue, partitionKeyField string) string {
	return fmt.Sprintf("g.V().hasLabel('%s').has('%s', '%s').has('%s', '%s').limit(1)",
		EscapeString(label),
		EscapeString(partitionKeyField), EscapeString(label),
		EscapeString(uniquePropertyName), EscapeString(uniquePropertyValue))
}

// VertexCount counts all vertices.
func VertexCount() string {
	return "g.V().count()"
}

// VertexDropBatch drops up to limit vertices.
func VertexDropBatch(limit int) string {
	return fmt.Sprintf("g.V().limit(%d).drop()", limit)
}
