package ogm //nolint:testpackage

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// mockDriver records every statement it runs. respond decides the outcome of
// each statement; without it every statement succeeds with an empty result.
type mockDriver struct {
	mu sync.Mutex

	respond func(query string, params map[string]any) (*Result, error)

	executed  []string
	params    []map[string]any
	modes     []AccessMode
	databases []string
	commits   int
	rollbacks int
	sessions  int
	closed    int
	beginErr  error
}

func (d *mockDriver) NewSession(_ context.Context, mode AccessMode, database string) Session { //nolint:ireturn
	d.mu.Lock()
	defer d.mu.Unlock()

	d.modes = append(d.modes, mode)
	d.databases = append(d.databases, database)

	return &mockSession{driver: d}
}

func (d *mockDriver) Close(context.Context) error { return nil }

func (d *mockDriver) run(query string, params map[string]any) (*Result, error) {
	d.mu.Lock()
	d.executed = append(d.executed, query)
	d.params = append(d.params, params)
	respond := d.respond
	d.mu.Unlock()

	if respond == nil {
		return &Result{}, nil
	}

	return respond(query, params)
}

type mockSession struct {
	driver *mockDriver
}

func (s *mockSession) Run(_ context.Context, query string, params map[string]any) (*Result, error) {
	return s.driver.run(query, params)
}

func (s *mockSession) BeginTransaction(context.Context) (Transaction, error) { //nolint:ireturn
	if s.driver.beginErr != nil {
		return nil, s.driver.beginErr
	}

	return &mockTransaction{driver: s.driver}, nil
}

func (s *mockSession) Close(context.Context) error {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()

	s.driver.closed++

	return nil
}

type mockTransaction struct {
	driver *mockDriver
}

func (t *mockTransaction) Run(_ context.Context, query string, params map[string]any) (*Result, error) {
	return t.driver.run(query, params)
}

func (t *mockTransaction) Commit(context.Context) error {
	t.driver.mu.Lock()
	defer t.driver.mu.Unlock()

	t.driver.commits++

	return nil
}

func (t *mockTransaction) Rollback(context.Context) error {
	t.driver.mu.Lock()
	defer t.driver.mu.Unlock()

	t.driver.rollbacks++

	return nil
}

// failOn makes statements containing substr fail with err.
func failOn(substr string, err error) func(string, map[string]any) (*Result, error) {
	return func(query string, _ map[string]any) (*Result, error) {
		if strings.Contains(query, substr) {
			return nil, err
		}

		return &Result{}, nil
	}
}

// result builds a single-column result.
func result(key string, values ...any) *Result {
	res := &Result{Keys: []string{key}}
	for _, v := range values {
		res.Records = append(res.Records, &neo4j.Record{Keys: []string{key}, Values: []any{v}})
	}

	return res
}

func ptr[T any](v T) *T { return &v }

// movieSchemas declares a small graph used across tests.
func movieSchemas() map[string]Schema {
	return map[string]Schema{
		"Person": {
			Fields: map[string]Field{
				"person_id": {Type: TypeUUID, Primary: true},
				"name":      {Type: TypeString, Required: true, Indexed: true},
				"password":  {Type: TypeString, Hidden: true},
				"acted_in": {
					Type:         TypeRelationships,
					Relationship: "ACTED_IN",
					Direction:    DirectionOut,
					Target:       "Movie",
					Eager:        true,
					Properties: map[string]Field{
						"role":   {Type: TypeString, Required: true},
						"salary": {Type: TypeNumber, Hidden: true},
					},
				},
			},
		},
		"Movie": {
			Fields: map[string]Field{
				"title": {Type: TypeString, Unique: true},
				"year":  {Type: TypeInt},
				"cast": {
					Type:         TypeRelationships,
					Relationship: "ACTED_IN",
					Direction:    DirectionIn,
					Target:       "Person",
					Alias:        "actor",
				},
			},
		},
	}
}

func newTestClient(d *mockDriver, opts ...Option) *Client {
	c := New(d, opts...)

	err := c.With(movieSchemas())
	if err != nil {
		panic(err)
	}

	return c
}
