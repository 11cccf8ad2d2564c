package gremlin

import (
	"errors"
	"fmt"
	"log"
	"sync"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"
)

// ErrNotConnected is returned by data operations issued before Connect or
// after Close.
var ErrNotConnected = errors.New("gremlin: not connected")

// Submitter executes textual traversal statements against the graph
// endpoint and returns the decoded results.
type Submitter interface {
	Submit(statement string) ([]any, error)
	Close() error
}

// Dialer opens a Submitter for the configured endpoint. Injectable so
// tests run against a mock instead of a live websocket.
type Dialer func(cfg Config) (Submitter, error)

// Config describes the graph store endpoint. Credentials follow the
// Cosmos DB convention: the username is derived from the database and
// collection names.
type Config struct {
	Hostname          string
	Port              int
	Database          string
	Collection        string
	Password          string
	TraversalSource   string
	PartitionKeyField string
}

// Endpoint returns the websocket URL of the traversal endpoint.
func (c Config) Endpoint() string {
	return fmt.Sprintf("wss://%s:%d/gremlin", c.Hostname, c.Port)
}

// Username returns the database/collection scoped username.
func (c Config) Username() string {
	return fmt.Sprintf("/dbs/%s/colls/%s", c.Database, c.Collection)
}

// Client owns the connection lifecycle to the graph store and executes
// built statements. All operations are serialized under one mutex so the
// lookup-then-write upsert cannot interleave with other writes on the
// same client.
type Client struct {
	cfg  Config
	dial Dialer

	mu   sync.Mutex
	conn Submitter
}

// NewClient builds a disconnected client using the TinkerPop dialer.
func NewClient(cfg Config) *Client {
	return NewClientWithDialer(cfg, DialTinkerpop)
}

// NewClientWithDialer builds a disconnected client with a custom dialer
// (tests).
func NewClientWithDialer(cfg Config, dial Dialer) *Client {
	return &Client{cfg: cfg, dial: dial}
}

// DialTinkerpop opens a websocket connection via the TinkerPop driver.
func DialTinkerpop(cfg Config) (Submitter, error) {
	client, err := gremlingo.NewClient(cfg.Endpoint(), func(settings *gremlingo.ClientSettings) {
		settings.TraversalSource = cfg.TraversalSource
		settings.AuthInfo = gremlingo.BasicAuthInfo(cfg.Username(), cfg.Password)
	})
	if err != nil {
		return nil, err
	}
	return &tinkerpopSubmitter{client: client}, nil
}

type tinkerpopSubmitter struct {
	client *gremlingo.Client
}

func (s *tinkerpopSubmitter) Submit(statement string) ([]any, error) {
	resultSet, err := s.client.Submit(statement)
	if err != nil {
		return nil, err
	}
	results, err := resultSet.All()
	if err != nil {
		return nil, err
	}
	decoded := make([]any, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		decoded = append(decoded, result.GetInterface())
	}
	return decoded, nil
}

func (s *tinkerpopSubmitter) Close() error {
	s.client.Close()
	return nil
}

// Connect establishes the connection. Connecting while connected is a
// logged no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		log.Printf("gremlin: already connected to %s", c.cfg.Endpoint())
		return nil
	}

	conn, err := c.dial(c.cfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.cfg.Endpoint(), err)
	}
	c.conn = conn
	return nil
}

// Close releases the connection. Safe to call when already closed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Execute runs a statement and returns the decoded results. Fails with
// ErrNotConnected when no connection is open.
func (c *Client) Execute(statement string) ([]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execute(statement)
}

// execute requires c.mu held.
func (c *Client) execute(statement string) ([]any, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	results, err := c.conn.Submit(statement)
	if err != nil {
		return nil, fmt.Errorf("execute %q: %w", statement, err)
	}
	return results, nil
}

// RunRaw executes an ad-hoc statement. Escape hatch for callers that
// build their own traversals (bulk deletes, counts).
func (c *Client) RunRaw(statement string) ([]any, error) {
	return c.Execute(statement)
}

// CreateVertex adds a vertex and returns the created record.
func (c *Client) CreateVertex(label string, properties map[string]any) (map[string]any, error) {
	results, err := c.Execute(VertexCreation(label, properties))
	if err != nil {
		return nil, err
	}
	return firstRecord(results, "create vertex")
}

// CreateEdge adds an edge between two existing vertices and returns the
// created record. Edges are append-only; repeated calls duplicate them.
func (c *Client) CreateEdge(fromID, toID, label string, properties map[string]any) (map[string]any, error) {
	results, err := c.Execute(EdgeCreation(fromID, toID, label, properties))
	if err != nil {
		return nil, err
	}
	return firstRecord(results, "create edge")
}

// RecordID extracts the id field of a result record, or "".
func RecordID(record map[string]any) string {
	switch v := record["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// firstRecord normalizes the first result into a string-keyed map. A
// mutation that produced nothing is an error: successful creations echo
// the created element.
func firstRecord(results []any, op string) (map[string]any, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: statement produced no result", op)
	}
	record, ok := toRecord(results[0])
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result shape %T", op, results[0])
	}
	return record, nil
}

// toRecord converts a decoded result into a string-keyed map. The driver
// yields maps for GraphSON responses and element structs for GraphBinary.
func toRecord(result any) (map[string]any, bool) {
	switch v := result.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		record := make(map[string]any, len(v))
		for key, value := range v {
			record[fmt.Sprintf("%v", key)] = value
		}
		return record, true
	case *gremlingo.Vertex:
		return map[string]any{"id": fmt.Sprintf("%v", v.Id), "label": v.Label}, true
	case *gremlingo.Edge:
		return map[string]any{"id": fmt.Sprintf("%v", v.Id), "label": v.Label}, true
	default:
		return nil, false
	}
}
