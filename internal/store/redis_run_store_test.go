package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Badriprasad/knowledge-graph/internal/models"
)

func TestRedisRunStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	s := NewRedisRunStore(mr.Addr(), "migration:run:", time.Hour)
	defer s.Close()

	run := models.MigrationRun{
		RunID:           "r1",
		Status:          models.RunStatusCompleted,
		StartedAt:       time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		AssetsFetched:   42,
		VerticesCreated: 42,
		EdgesCreated:    17,
		Failures:        []string{"asset A9: store timeout"},
	}
	if err := s.SetRun(context.Background(), run); err != nil {
		t.Fatalf("set error: %v", err)
	}

	got, found, err := s.GetRun(context.Background(), "r1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !found {
		t.Fatal("expected run to be found")
	}
	if got.Status != run.Status || got.AssetsFetched != 42 || len(got.Failures) != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}

	if ttl := mr.TTL("migration:run:r1"); ttl != time.Hour {
		t.Fatalf("unexpected ttl: %v", ttl)
	}
}

func TestRedisRunStoreMissing(t *testing.T) {
	mr := miniredis.RunT(t)

	s := NewRedisRunStore(mr.Addr(), "migration:run:", time.Hour)
	defer s.Close()

	_, found, err := s.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if found {
		t.Fatal("expected run to be absent")
	}
}
