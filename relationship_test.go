package ogm //nolint:testpackage

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keanuActedIn(t *testing.T, d *mockDriver) *Relationship {
	t.Helper()

	_, n := hydrateKeanu(t, d)

	rels, ok := n.EagerRelationships("acted_in")
	require.True(t, ok)

	rel, ok := rels.First()
	require.True(t, ok)

	return rel
}

func TestRelationship_ToJSON(t *testing.T) {
	rel := keanuActedIn(t, &mockDriver{})

	got, err := rel.ToJSON(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "5:db:7", got["_id"])
	assert.Equal(t, "ACTED_IN", got["_type"])
	assert.Equal(t, "Neo", got["role"])
	assert.NotContains(t, got, "salary", "hidden properties are not projected")

	node, ok := got["node"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "The Matrix", node["title"])
}

func TestRelationship_Update(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return result("properties", map[string]any{"role": "Neo", "salary": 20.0}), nil
	}}
	rel := keanuActedIn(t, d)

	require.NoError(t, rel.Update(context.Background(), map[string]any{"salary": 20}))

	require.Len(t, d.executed, 1)
	assert.Contains(t, d.executed[0], "SET rel += $properties")
	assert.Equal(t, map[string]any{"role": "Neo", "salary": 20}, d.params[0]["properties"],
		"role is backfilled so the update passes required validation")

	v, _ := rel.Get("salary")
	assert.InDelta(t, 20.0, v, 1e-9)
}

func TestRelationship_UpdateMissingRequired(t *testing.T) {
	d := &mockDriver{}
	rel := keanuActedIn(t, d)
	delete(rel.properties, "role")

	err := rel.Update(context.Background(), map[string]any{"salary": 1})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, d.executed)
}

func TestRelationship_Delete(t *testing.T) {
	d := &mockDriver{}
	rel := keanuActedIn(t, d)

	require.NoError(t, rel.Delete(context.Background()))
	assert.True(t, rel.Deleted())
	assert.Equal(t, "5:db:7", d.params[0]["identity"])

	assert.ErrorIs(t, rel.Delete(context.Background()), ErrDeleted)
	assert.ErrorIs(t, rel.Update(context.Background(), nil), ErrDeleted)
	assert.Len(t, d.executed, 1)
}

func TestRelationship_OtherNodeByDirection(t *testing.T) {
	c := newTestClient(&mockDriver{})

	person, err := c.Model("Person")
	require.NoError(t, err)

	from := &Node{identity: "4:db:1"}
	to := &Node{identity: "4:db:2"}

	tests := []struct {
		direction Direction
		start     *Node
		other     *Node
	}{
		{DirectionOut, from, to},
		{DirectionIn, to, to},
		{DirectionBoth, from, to},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			rt, err := person.DefineRelationship("knows_"+string(tt.direction), Field{
				Type:         TypeRelationship,
				Relationship: "KNOWS",
				Direction:    tt.direction,
				Target:       "Person",
			})
			require.NoError(t, err)

			rel := c.factory.newRelationship(rt, dbtype.Relationship{ElementId: "5:db:1", Type: "KNOWS"}, from, to)

			assert.Same(t, tt.start, rel.StartNode())
			assert.Same(t, tt.other, rel.OtherNode())

			if tt.direction == DirectionBoth {
				assert.Same(t, rel.EndNode(), rel.OtherNode())
			}
		})
	}
}
