// Package migrate drives the catalog-to-graph migration: drain the store,
// load asset vertices, upsert nested sub-entity vertices with their
// belongsTo edges, then load relation edges.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Badriprasad/knowledge-graph/internal/gremlin"
	"github.com/Badriprasad/knowledge-graph/internal/models"
	"github.com/Badriprasad/knowledge-graph/internal/store"
)

// Field allow-lists projected into vertex properties, matching the fields
// the catalog exposes on asset and sub-entity resources.
var (
	assetKeys = []string{
		"id", "createdBy", "createdOn", "lastModifiedBy", "lastModifiedOn",
		"system", "resourceType", "name", "displayName", "articulationScore",
		"excludedFromAutoHyperlinking", "avgRating", "ratingsCount",
	}
	nestedKeys = []string{"id", "resourceType", "resourceDiscriminator", "name"}
)

// nestedKinds orders the sub-entity traversal per asset.
var nestedKinds = []string{"domain", "type", "status"}

// AssetSource provides the catalog side of the pipeline.
type AssetSource interface {
	FetchAssets(ctx context.Context, typeID string) ([]models.Asset, error)
	FetchRelations(ctx context.Context, assetID string) ([]models.Relation, error)
}

// GraphWriter is the graph side of the pipeline, satisfied by
// *gremlin.Client.
type GraphWriter interface {
	CreateVertex(label string, properties map[string]any) (map[string]any, error)
	CreateEdge(fromID, toID, label string, properties map[string]any) (map[string]any, error)
	UpsertVertex(label, idValue, uniquePropertyName, uniquePropertyValue string, properties map[string]any) (map[string]any, error)
	RunRaw(statement string) ([]any, error)
}

// Migrator executes one complete migration in strict sequence: no step
// starts before the previous one finishes.
type Migrator struct {
	source        AssetSource
	graph         GraphWriter
	runs          store.RunStore // nil disables run tracking
	typeID        string
	rootAssetID   string
	dropBatchSize int
}

// New builds a Migrator. runs may be nil; typeID and rootAssetID may be
// empty (no type filter, no relation pass).
func New(source AssetSource, graph GraphWriter, runs store.RunStore, typeID, rootAssetID string, dropBatchSize int) *Migrator {
	if dropBatchSize <= 0 {
		dropBatchSize = 10
	}
	return &Migrator{
		source:        source,
		graph:         graph,
		runs:          runs,
		typeID:        typeID,
		rootAssetID:   rootAssetID,
		dropBatchSize: dropBatchSize,
	}
}

// Run executes one migration. Fatal conditions (drain failure, asset
// fetch failure) abort with an error; per-record failures accumulate on
// the returned run report and the migration carries on.
func (m *Migrator) Run(ctx context.Context) (models.MigrationRun, error) {
	run := models.MigrationRun{
		RunID:     uuid.NewString(),
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	m.saveRun(ctx, run)

	// Creation must never start over a partially drained store.
	if err := m.drain(); err != nil {
		return m.finish(ctx, run, fmt.Errorf("drain: %w", err))
	}

	assets, err := m.source.FetchAssets(ctx, m.typeID)
	if err != nil {
		return m.finish(ctx, run, fmt.Errorf("fetch assets: %w", err))
	}
	run.AssetsFetched = len(assets)
	log.Printf("migrate: fetched %d assets", len(assets))

	for _, asset := range assets {
		m.migrateAsset(asset, &run)
	}

	m.migrateRelations(ctx, &run)

	return m.finish(ctx, run, nil)
}

// drain deletes all vertices in batches until the store reports zero.
func (m *Migrator) drain() error {
	for {
		results, err := m.graph.RunRaw(gremlin.VertexCount())
		if err != nil {
			return err
		}
		remaining, err := countResult(results)
		if err != nil {
			return err
		}
		log.Printf("migrate: %d vertices remaining to drop", remaining)
		if remaining == 0 {
			return nil
		}
		if _, err := m.graph.RunRaw(gremlin.VertexDropBatch(m.dropBatchSize)); err != nil {
			return err
		}
	}
}

func (m *Migrator) migrateAsset(asset models.Asset, run *models.MigrationRun) {
	label := asset.ResourceType
	if label == "" {
		label = "Asset"
	}

	// Asset vertices are plain-created, not upserted: the drain step is
	// what keeps reruns duplicate-free. Nested sub-entities are shared
	// across assets and go through the upsert instead.
	if _, err := m.graph.CreateVertex(label, projectFields(asset.Fields, assetKeys)); err != nil {
		m.fail(run, fmt.Sprintf("asset %s: %v", asset.ID, err))
		return
	}
	run.VerticesCreated++

	for _, kind := range nestedKinds {
		m.migrateNested(asset, kind, run)
	}
}

func (m *Migrator) migrateNested(asset models.Asset, kind string, run *models.MigrationRun) {
	nested := asset.Nested(kind)
	if nested == nil {
		return
	}

	id, _ := nested["id"].(string)
	label, _ := nested["resourceType"].(string)
	if label == "" {
		label = defaultNestedLabel(kind)
	}

	vertex, err := m.graph.UpsertVertex(label, id, "id", id, projectFields(nested, nestedKeys))
	if err != nil {
		m.fail(run, fmt.Sprintf("asset %s %s: %v", asset.ID, kind, err))
		return
	}
	run.VerticesUpserted++

	vertexID := gremlin.RecordID(vertex)
	if vertexID == "" {
		vertexID = id
	}
	properties := map[string]any{"since": asset.CreatedOn()}
	if _, err := m.graph.CreateEdge(vertexID, asset.ID, "belongsTo_"+kind, properties); err != nil {
		m.fail(run, fmt.Sprintf("asset %s %s edge: %v", asset.ID, kind, err))
		return
	}
	run.EdgesCreated++
}

func (m *Migrator) migrateRelations(ctx context.Context, run *models.MigrationRun) {
	if m.rootAssetID == "" {
		return
	}

	relations, err := m.source.FetchRelations(ctx, m.rootAssetID)
	if err != nil {
		// Relations normalized before the failure still load.
		m.fail(run, fmt.Sprintf("fetch relations for %s: %v", m.rootAssetID, err))
	}

	for _, relation := range relations {
		properties := map[string]any{"relationTypeId": relation.RelationTypeID}
		if _, err := m.graph.CreateEdge(relation.SourceID, relation.TargetID, "relatedTo", properties); err != nil {
			m.fail(run, fmt.Sprintf("relation %s->%s: %v", relation.SourceID, relation.TargetID, err))
			continue
		}
		run.EdgesCreated++
	}
}

func (m *Migrator) finish(ctx context.Context, run models.MigrationRun, fatal error) (models.MigrationRun, error) {
	run.FinishedAt = time.Now().UTC()
	if fatal != nil {
		run.Status = models.RunStatusFailed
		run.Failures = append(run.Failures, fatal.Error())
	} else {
		run.Status = models.RunStatusCompleted
	}
	m.saveRun(ctx, run)
	return run, fatal
}

func (m *Migrator) fail(run *models.MigrationRun, msg string) {
	log.Printf("migrate: %s", msg)
	run.Failures = append(run.Failures, msg)
}

func (m *Migrator) saveRun(ctx context.Context, run models.MigrationRun) {
	if m.runs == nil {
		return
	}
	if err := m.runs.SetRun(ctx, run); err != nil {
		log.Printf("migrate: run store error: %v", err)
	}
}

// projectFields copies the allow-listed keys present on the record.
// Missing keys are simply not projected.
func projectFields(record map[string]any, keys []string) map[string]any {
	projected := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, ok := record[key]; ok {
			projected[key] = value
		}
	}
	return projected
}

// countResult reads the single numeric row of a count traversal.
func countResult(results []any) (int64, error) {
	if len(results) == 0 {
		return 0, errors.New("count returned no rows")
	}
	switch v := results[0].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", results[0])
	}
}

func defaultNestedLabel(kind string) string {
	if kind == "" {
		return ""
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
