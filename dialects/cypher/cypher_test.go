//nolint:testpackage
package cypher

import (
	"os"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/rlch/ogm"
)

func TestDriver_ImplementsInterface(_ *testing.T) {
	var _ ogm.Driver = (*Driver)(nil)

	var _ ogm.Session = (*Session)(nil)

	var _ ogm.Transaction = (*Transaction)(nil)
}

func TestDriver_Registration(t *testing.T) {
	drivers := ogm.RegisteredDrivers()

	if !slices.Contains(drivers, "neo4j") {
		t.Error("neo4j driver not registered")
	}
}

// Integration tests - only run with a real Neo4j instance.
// Set OGM_NEO4J_URI, OGM_NEO4J_USER, OGM_NEO4J_PASS to run.

func TestSession_Run_Integration(t *testing.T) {
	d := setupIntegrationTest(t)

	ctx := t.Context()

	defer func() { _ = d.Close(ctx) }()

	s := d.NewSession(ctx, ogm.AccessModeWrite, "")

	defer func() { _ = s.Close(ctx) }()

	_, _ = s.Run(ctx, "MATCH (n:OgmTest) DELETE n", nil)

	_, err := s.Run(ctx, "CREATE (n:OgmTest {name: $name})", map[string]any{"name": "test-node"})
	if err != nil {
		t.Fatalf("failed to create test node: %v", err)
	}

	res, err := s.Run(ctx, "MATCH (n:OgmTest) RETURN n", nil)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}

	if diff := cmp.Diff([]string{"n"}, res.Keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	v, _ := res.Records[0].Get("n")

	node, ok := v.(dbtype.Node)
	if !ok {
		t.Fatalf("n = %T, want dbtype.Node", v)
	}

	if node.Props["name"] != "test-node" {
		t.Errorf("name = %v, want %v", node.Props["name"], "test-node")
	}

	_, _ = s.Run(ctx, "MATCH (n:OgmTest) DELETE n", nil)
}

func TestTransaction_Rollback_Integration(t *testing.T) {
	d := setupIntegrationTest(t)

	ctx := t.Context()

	defer func() { _ = d.Close(ctx) }()

	s := d.NewSession(ctx, ogm.AccessModeWrite, "")

	defer func() { _ = s.Close(ctx) }()

	tx, err := s.BeginTransaction(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	_, err = tx.Run(ctx, "CREATE (n:OgmTxTest {name: 'in-tx'})", nil)
	if err != nil {
		t.Fatalf("failed to create node in tx: %v", err)
	}

	err = tx.Rollback(ctx)
	if err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}

	res, err := s.Run(ctx, "MATCH (n:OgmTxTest) RETURN n", nil)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}

	if len(res.Records) != 0 {
		t.Error("node should not exist after rollback")
	}
}

func TestClient_Hydrate_Integration(t *testing.T) {
	d := setupIntegrationTest(t)

	ctx := t.Context()

	client := ogm.New(d)

	defer func() { _ = client.Close(ctx) }()

	_, err := client.Define("OgmPerson", ogm.Schema{Fields: map[string]ogm.Field{
		"person_id": {Type: ogm.TypeUUID, Primary: true},
		"name":      {Type: ogm.TypeString, Required: true},
	}})
	if err != nil {
		t.Fatal(err)
	}

	defer func() { _ = client.DeleteAll(ctx, "OgmPerson") }()

	created, err := client.Create(ctx, "OgmPerson", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := client.FindByID(ctx, "OgmPerson", created.ID())
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	if diff := cmp.Diff(created.Properties(), found.Properties()); diff != "" {
		t.Errorf("Properties mismatch (-created +found):\n%s", diff)
	}
}

func setupIntegrationTest(t *testing.T) *Driver {
	t.Helper()

	uri := os.Getenv("OGM_NEO4J_URI")
	if uri == "" {
		t.Skip("OGM_NEO4J_URI not set, skipping integration test")
	}

	cfg := ogm.ConnectionConfig{
		URI:      uri,
		Username: os.Getenv("OGM_NEO4J_USER"),
		Password: os.Getenv("OGM_NEO4J_PASS"),
	}

	driver, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	d, ok := driver.(*Driver)
	if !ok {
		t.Fatal("driver is not *Driver")
	}

	return d
}
