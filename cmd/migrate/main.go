package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Badriprasad/knowledge-graph/internal/catalog"
	"github.com/Badriprasad/knowledge-graph/internal/config"
	"github.com/Badriprasad/knowledge-graph/internal/gremlin"
	"github.com/Badriprasad/knowledge-graph/internal/migrate"
	"github.com/Badriprasad/knowledge-graph/internal/models"
	"github.com/Badriprasad/knowledge-graph/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	source := catalog.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.Username,
		cfg.Catalog.Password,
		cfg.Catalog.PageLimit,
		cfg.Catalog.PageDelay,
	)

	graph := gremlin.NewClient(gremlin.Config{
		Hostname:          cfg.Graph.Hostname,
		Port:              cfg.Graph.Port,
		Database:          cfg.Graph.Database,
		Collection:        cfg.Graph.Collection,
		Password:          cfg.Graph.Password,
		TraversalSource:   cfg.Graph.TraversalSource,
		PartitionKeyField: cfg.Graph.PartitionKeyField,
	})

	var runs store.RunStore
	if cfg.Redis.Addr != "" {
		redisStore := store.NewRedisRunStore(cfg.Redis.Addr, cfg.Redis.Prefix, cfg.Redis.TTL)
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Printf("failed to close run store: %v", err)
			}
		}()
		runs = redisStore
	}

	if err := graph.Connect(); err != nil {
		return err
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Printf("failed to close graph client: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrator := migrate.New(source, graph, runs, cfg.Catalog.TypeID, cfg.Catalog.RootAssetID, cfg.Graph.DropBatchSize)

	report, err := migrator.Run(ctx)
	log.Print(summarize(report))
	return err
}

func summarize(run models.MigrationRun) string {
	return fmt.Sprintf("run %s %s: %d assets, %d vertices created, %d upserted, %d edges, %d failures",
		run.RunID, run.Status, run.AssetsFetched, run.VerticesCreated,
		run.VerticesUpserted, run.EdgesCreated, len(run.Failures))
}
