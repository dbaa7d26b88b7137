package ogm //nolint:testpackage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTestSyntax = errors.New("invalid input")
	errTestBegin  = errors.New("connection refused")
)

func TestClient_Batch(t *testing.T) {
	d := &mockDriver{respond: func(query string, _ map[string]any) (*Result, error) {
		return result("n", int64(len(query))), nil
	}}
	c := New(d)

	results, err := c.Batch(context.Background(), []Statement{
		Stmt("CREATE (a)"),
		{Query: "CREATE (b {name: $name})", Params: map[string]any{"name": "b"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	v, _ := results[1].Records[0].Get("n")
	assert.Equal(t, int64(len("CREATE (b {name: $name})")), v)

	assert.Equal(t, []string{"CREATE (a)", "CREATE (b {name: $name})"}, d.executed)
	assert.Equal(t, map[string]any{}, d.params[0], "nil params are sent as an empty map")
	assert.Equal(t, 1, d.commits)
	assert.Equal(t, 0, d.rollbacks)
	assert.Equal(t, 1, d.closed, "session closed after commit")
}

func TestClient_BatchFailure(t *testing.T) {
	d := &mockDriver{respond: failOn("statement 2", errTestSyntax)}
	c := New(d)

	results, err := c.Batch(context.Background(), []Statement{
		Stmt("RETURN 'statement 1'"),
		{Query: "RETURN 'statement 2'", Params: map[string]any{"x": 1}},
		Stmt("RETURN 'statement 3'"),
	})
	require.Error(t, err)
	assert.Nil(t, results)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	require.Len(t, txErr.Failures, 1)
	assert.Equal(t, "RETURN 'statement 2'", txErr.Failures[0].Statement)
	assert.Equal(t, map[string]any{"x": 1}, txErr.Failures[0].Params)
	assert.ErrorIs(t, err, errTestSyntax)
	assert.ErrorIs(t, err, ErrTransactionFailed)

	assert.Len(t, d.executed, 3, "statements after a failure still run")
	assert.Equal(t, 0, d.commits)
	assert.Equal(t, 1, d.rollbacks)
	assert.Equal(t, 1, d.closed)
}

func TestClient_BatchPanicRecovered(t *testing.T) {
	d := &mockDriver{respond: func(query string, _ map[string]any) (*Result, error) {
		if query == "boom" {
			panic("driver exploded")
		}

		return &Result{}, nil
	}}
	c := New(d)

	_, err := c.Batch(context.Background(), []Statement{Stmt("boom"), Stmt("RETURN 1")})
	require.Error(t, err)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	require.Len(t, txErr.Failures, 1)
	assert.ErrorIs(t, txErr.Failures[0].Err, errStatementPanicked)
	assert.Len(t, d.executed, 2)
	assert.Equal(t, 1, d.rollbacks)
}

func TestClient_BatchBeginFails(t *testing.T) {
	d := &mockDriver{beginErr: errTestBegin}
	c := New(d)

	_, err := c.Batch(context.Background(), []Statement{Stmt("RETURN 1")})

	assert.ErrorIs(t, err, errTestBegin)
	assert.Empty(t, d.executed)
	assert.Equal(t, 1, d.closed, "session closed when the transaction cannot begin")
}

func TestClient_CypherWrapsDriverErrors(t *testing.T) {
	d := &mockDriver{respond: failOn("", errTestSyntax)}
	c := New(d, WithDatabase("movies"))

	_, err := c.ReadCypher(context.Background(), "RETURN nope", map[string]any{"a": 1})

	var driverErr *DriverError
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, "RETURN nope", driverErr.Statement)
	assert.ErrorIs(t, err, errTestSyntax)
	assert.Equal(t, []AccessMode{AccessModeRead}, d.modes)
	assert.Equal(t, []string{"movies"}, d.databases)
	assert.Equal(t, 1, d.closed)
}

func TestClient_Define(t *testing.T) {
	c := New(&mockDriver{})

	_, err := c.Define("Broken", Schema{Fields: map[string]Field{
		"knows": {Type: TypeRelationship, Direction: DirectionOut},
	}})
	require.ErrorIs(t, err, ErrIncompleteRelationship)
	assert.False(t, c.Models().Has("Broken"))

	require.NoError(t, c.With(movieSchemas()))
	assert.Equal(t, []string{"Movie", "Person"}, c.Models().Keys())
}

func TestRegisterDriver(t *testing.T) {
	RegisterDriver("mock", func(ConnectionConfig) (Driver, error) { return &mockDriver{}, nil })

	assert.Contains(t, RegisteredDrivers(), "mock")

	d, err := OpenDriver("mock", ConnectionConfig{})
	require.NoError(t, err)
	assert.IsType(t, &mockDriver{}, d)

	_, err = OpenDriver("nope", ConnectionConfig{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
