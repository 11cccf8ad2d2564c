package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Badriprasad/knowledge-graph/common"
)

// Config collects every setting the pipeline reads. It is built once in
// main and passed into each constructor; nothing reads the environment
// after Load returns.
type Config struct {
	Catalog CatalogConfig
	Graph   GraphConfig
	Redis   RedisConfig
}

// CatalogConfig describes the catalog REST API.
type CatalogConfig struct {
	BaseURL     string
	Username    string
	Password    string
	TypeID      string
	RootAssetID string
	PageLimit   int
	PageDelay   time.Duration
}

// GraphConfig describes the graph store endpoint.
type GraphConfig struct {
	Hostname          string
	Port              int
	Database          string
	Collection        string
	Password          string
	TraversalSource   string
	PartitionKeyField string
	DropBatchSize     int
}

// RedisConfig describes the optional run-status store. An empty Addr
// disables run tracking.
type RedisConfig struct {
	Addr   string
	Prefix string
	TTL    time.Duration
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file, using environment")
	}

	cfg := Config{
		Catalog: CatalogConfig{
			BaseURL:     common.GetEnv("CATALOG_URL", ""),
			Username:    common.GetEnv("CATALOG_USERNAME", ""),
			Password:    common.GetEnv("CATALOG_PASSWORD", ""),
			TypeID:      common.GetEnv("CATALOG_TYPE_ID", ""),
			RootAssetID: common.GetEnv("CATALOG_ROOT_ASSET_ID", ""),
			PageLimit:   common.ParseInt(common.GetEnv("CATALOG_PAGE_LIMIT", ""), 100),
			PageDelay:   common.ParseDuration(common.GetEnv("CATALOG_PAGE_DELAY", ""), 500*time.Millisecond),
		},
		Graph: GraphConfig{
			Hostname:          common.GetEnv("GRAPH_HOSTNAME", ""),
			Port:              common.ParseInt(common.GetEnv("GRAPH_PORT", ""), 443),
			Database:          common.GetEnv("GRAPH_DATABASE", ""),
			Collection:        common.GetEnv("GRAPH_COLLECTION", ""),
			Password:          common.GetEnv("GRAPH_PASSWORD", ""),
			TraversalSource:   common.GetEnv("GRAPH_TRAVERSAL_SOURCE", "g"),
			PartitionKeyField: common.GetEnv("GRAPH_PARTITION_KEY_FIELD", "resourceType"),
			DropBatchSize:     common.ParseInt(common.GetEnv("GRAPH_DROP_BATCH_SIZE", ""), 10),
		},
		Redis: RedisConfig{
			Addr:   common.GetEnv("REDIS_ADDR", ""),
			Prefix: common.GetEnv("RUN_STATUS_PREFIX", "migration:run:"),
			TTL:    common.ParseDuration(common.GetEnv("RUN_STATUS_TTL", ""), 24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings without which the pipeline cannot run.
func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("CATALOG_URL is required")
	}
	if c.Catalog.Username == "" || c.Catalog.Password == "" {
		return fmt.Errorf("CATALOG_USERNAME and CATALOG_PASSWORD are required")
	}
	if c.Graph.Hostname == "" {
		return fmt.Errorf("GRAPH_HOSTNAME is required")
	}
	if c.Graph.Database == "" || c.Graph.Collection == "" {
		return fmt.Errorf("GRAPH_DATABASE and GRAPH_COLLECTION are required")
	}
	if c.Graph.Password == "" {
		return fmt.Errorf("GRAPH_PASSWORD is required")
	}
	return nil
}
