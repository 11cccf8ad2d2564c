package gremlin

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/Badriprasad/knowledge-graph/mocks"
)

func testConfig() Config {
	return Config{
		Hostname:          "example.gremlin.cosmos.azure.com",
		Port:              443,
		Database:          "graphdb",
		Collection:        "assets",
		Password:          "secret",
		TraversalSource:   "g",
		PartitionKeyField: "resourceType",
	}
}

func newConnectedClient(t *testing.T, sub Submitter) *Client {
	t.Helper()
	client := NewClientWithDialer(testConfig(), func(Config) (Submitter, error) {
		return sub, nil
	})
	if err := client.Connect(); err != nil {
		t.Fatalf("connect error: %v", err)
	}
	return client
}

func TestConfigEndpointAndUsername(t *testing.T) {
	cfg := testConfig()
	if got := cfg.Endpoint(); got != "wss://example.gremlin.cosmos.azure.com:443/gremlin" {
		t.Fatalf("unexpected endpoint: %q", got)
	}
	if got := cfg.Username(); got != "/dbs/graphdb/colls/assets" {
		t.Fatalf("unexpected username: %q", got)
	}
}

func TestConnectTwiceDialsOnce(t *testing.T) {
	dials := 0
	client := NewClientWithDialer(testConfig(), func(Config) (Submitter, error) {
		dials++
		return stubSubmitter{}, nil
	})
	if err := client.Connect(); err != nil {
		t.Fatalf("connect error: %v", err)
	}
	if err := client.Connect(); err != nil {
		t.Fatalf("second connect error: %v", err)
	}
	if dials != 1 {
		t.Fatalf("dialed %d times, want 1", dials)
	}
}

func TestConnectDialError(t *testing.T) {
	client := NewClientWithDialer(testConfig(), func(Config) (Submitter, error) {
		return nil, errors.New("refused")
	})
	if err := client.Connect(); err == nil {
		t.Fatal("expected connect error")
	}
	if _, err := client.Execute("g.V()"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after failed dial, got %v", err)
	}
}

func TestExecuteNotConnected(t *testing.T) {
	client := NewClientWithDialer(testConfig(), func(Config) (Submitter, error) {
		return stubSubmitter{}, nil
	})

	if _, err := client.Execute("g.V().count()"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, err := client.CreateVertex("Table", nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, err := client.CreateEdge("a", "b", "rel", nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestCloseResetsConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().Close().Return(nil).Times(1)

	client := newConnectedClient(t, sub)
	if err := client.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
	// Second close is a no-op.
	if err := client.Close(); err != nil {
		t.Fatalf("second close error: %v", err)
	}
	if _, err := client.Execute("g.V()"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after close, got %v", err)
	}
}

func TestCreateVertexSubmitsStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().
		Submit("g.addV('Table').property('id', 'A1').property('name', 'orders')").
		Return([]any{map[string]any{"id": "A1", "label": "Table"}}, nil)

	client := newConnectedClient(t, sub)
	vertex, err := client.CreateVertex("Table", map[string]any{"id": "A1", "name": "orders"})
	if err != nil {
		t.Fatalf("create vertex error: %v", err)
	}
	if RecordID(vertex) != "A1" {
		t.Fatalf("unexpected vertex: %+v", vertex)
	}
}

func TestCreateEdgeSubmitsStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().
		Submit("g.V('D1').addE('belongsTo_domain').to(g.V('A1')).property('since', 'unknown')").
		Return([]any{map[string]any{"id": "e1", "label": "belongsTo_domain"}}, nil)

	client := newConnectedClient(t, sub)
	edge, err := client.CreateEdge("D1", "A1", "belongsTo_domain", map[string]any{"since": "unknown"})
	if err != nil {
		t.Fatalf("create edge error: %v", err)
	}
	if edge["label"] != "belongsTo_domain" {
		t.Fatalf("unexpected edge: %+v", edge)
	}
}

func TestCreateVertexNoResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().Submit(gomock.Any()).Return([]any{}, nil)

	client := newConnectedClient(t, sub)
	if _, err := client.CreateVertex("Table", nil); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestExecuteWrapsSubmitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().Submit("g.V().count()").Return(nil, errors.New("server unavailable"))

	client := newConnectedClient(t, sub)
	if _, err := client.RunRaw("g.V().count()"); err == nil {
		t.Fatal("expected execute error")
	}
}

func TestToRecordShapes(t *testing.T) {
	record, ok := toRecord(map[string]any{"id": "v1"})
	if !ok || record["id"] != "v1" {
		t.Fatalf("string map not converted: %+v", record)
	}

	record, ok = toRecord(map[any]any{"id": "v2"})
	if !ok || record["id"] != "v2" {
		t.Fatalf("any map not converted: %+v", record)
	}

	if _, ok = toRecord("scalar"); ok {
		t.Fatal("scalar should not convert to a record")
	}
}

type stubSubmitter struct{}

func (stubSubmitter) Submit(string) ([]any, error) { return nil, nil }
func (stubSubmitter) Close() error                 { return nil }
