package models

import "time"

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// MigrationRun tracks the state and outcome of one migration run.
type MigrationRun struct {
	RunID            string    `json:"run_id"`
	Status           string    `json:"status"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at,omitempty"`
	AssetsFetched    int       `json:"assets_fetched"`
	VerticesCreated  int       `json:"vertices_created"`
	VerticesUpserted int       `json:"vertices_upserted"`
	EdgesCreated     int       `json:"edges_created"`
	Failures         []string  `json:"failures,omitempty"`
}
