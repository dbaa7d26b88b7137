package ogm //nolint:testpackage

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieNode(id, title string) dbtype.Node {
	return dbtype.Node{ElementId: id, Labels: []string{"Movie"}, Props: map[string]any{"title": title}}
}

func TestClient_Create(t *testing.T) {
	d := &mockDriver{respond: func(_ string, params map[string]any) (*Result, error) {
		props, _ := params["properties"].(map[string]any)

		return result("this", dbtype.Node{ElementId: "4:db:5", Labels: []string{"Person"}, Props: props}), nil
	}}
	c := newTestClient(d)

	n, err := c.Create(context.Background(), "Person", map[string]any{"name": "Laurence Fishburne"})
	require.NoError(t, err)

	require.Len(t, d.executed, 1)
	assert.True(t, strings.HasPrefix(d.executed[0], "CREATE (this:Person)\nSET this += $properties\nRETURN this { .*"))
	assert.Equal(t, []AccessMode{AccessModeWrite}, d.modes)

	assert.Equal(t, "4:db:5", n.ID())
	assert.Equal(t, "Laurence Fishburne", n.Properties()["name"])
	assert.NotEmpty(t, n.Properties()["person_id"], "uuid primary key is generated")
}

func TestClient_CreateErrors(t *testing.T) {
	d := &mockDriver{}
	c := newTestClient(d)

	_, err := c.Create(context.Background(), "Genre", nil)
	assert.True(t, IsDefinitionNotFound(err))

	_, err = c.Create(context.Background(), "Person", map[string]any{})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, d.executed)
}

func TestClient_Merge(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return result("this", movieNode("4:db:2", "The Matrix")), nil
	}}
	c := newTestClient(d)

	n, err := c.Merge(context.Background(), "Movie", map[string]any{"title": "The Matrix", "year": 1999})
	require.NoError(t, err)
	assert.Equal(t, "4:db:2", n.ID())

	assert.True(t, strings.HasPrefix(d.executed[0], "MERGE (this:Movie { title: $match_0 })\nSET this += $properties\n"))
	assert.Equal(t, "The Matrix", d.params[0]["match_0"])
	assert.Equal(t, map[string]any{"title": "The Matrix", "year": int64(1999)}, d.params[0]["properties"])

	_, err = c.Merge(context.Background(), "Movie", map[string]any{"year": 1999})
	assert.ErrorIs(t, err, ErrValidation, "no merge fields supplied")
}

func TestClient_MergeGeneratedValuesOnCreate(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return result("this", dbtype.Node{ElementId: "4:db:1", Labels: []string{"Person"}}), nil
	}}
	c := newTestClient(d)

	_, err := c.Merge(context.Background(), "Person", map[string]any{"name": "Keanu Reeves"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(d.executed[0],
		"MERGE (this:Person { name: $match_0 })\nON CREATE SET this += $create\nSET this += $properties\n"))
	assert.Equal(t, map[string]any{"name": "Keanu Reeves"}, d.params[0]["properties"])

	create, ok := d.params[0]["create"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, create, "person_id", "generated keys must not change an existing node")
}

func TestClient_MergeOn(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return result("this", movieNode("4:db:2", "The Matrix")), nil
	}}
	c := newTestClient(d)

	_, err := c.MergeOn(context.Background(), "Movie",
		map[string]any{"title": "The Matrix", "year": 1999},
		map[string]any{"year": 1999.0})
	require.NoError(t, err)

	assert.Contains(t, d.executed[0], "MERGE (this:Movie { title: $match_0, year: $match_1 })")
	assert.Equal(t, map[string]any{"year": int64(1999)}, d.params[0]["properties"])
}

func TestClient_All(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return result("this", movieNode("1", "A"), movieNode("2", "B")), nil
	}}
	c := newTestClient(d)

	col, err := c.All(context.Background(), "Movie", Query{
		Where: map[string]any{"year": 1999, "title": "The Matrix"},
		Order: []Order{{Property: "title"}, {Property: "year", Descending: true}},
		Skip:  10,
		Limit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, col.Len())

	query := d.executed[0]
	assert.True(t, strings.HasPrefix(query, "MATCH (this:Movie)\nWHERE this.title = $where_0 AND this.year = $where_1\nRETURN "))
	assert.True(t, strings.HasSuffix(query, "\nORDER BY this.title, this.year DESC\nSKIP $skip\nLIMIT $limit"))
	assert.Equal(t, map[string]any{
		"where_0": "The Matrix",
		"where_1": 1999,
		"skip":    int64(10),
		"limit":   int64(5),
	}, d.params[0])
	assert.Equal(t, []AccessMode{AccessModeRead}, d.modes)
}

func TestClient_Find(t *testing.T) {
	d := &mockDriver{respond: func(string, map[string]any) (*Result, error) {
		return &Result{}, nil
	}}
	c := newTestClient(d)

	_, err := c.Find(context.Background(), "Person", "abc")
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Equal(t, map[string]any{"where_0": "abc", "limit": int64(1)}, d.params[0])
	assert.Contains(t, d.executed[0], "WHERE this.person_id = $where_0")

	_, err = c.FindByID(context.Background(), "Person", "4:db:1")
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Contains(t, d.executed[1], "WHERE elementId(this) = $id")
	assert.Equal(t, "4:db:1", d.params[1]["id"])
}

func TestClient_DeleteAll(t *testing.T) {
	d := &mockDriver{}
	c := newTestClient(d)

	require.NoError(t, c.DeleteAll(context.Background(), "Movie"))
	assert.Equal(t, []string{"MATCH (this:Movie) DETACH DELETE this"}, d.executed)
	assert.Equal(t, map[string]any{}, d.params[0])
}
