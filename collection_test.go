package ogm //nolint:testpackage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestProjection = errors.New("projection failed")

type fakeEntity struct {
	id  string
	err error

	// after delays the projection until closed; done is closed once it ends.
	after <-chan struct{}
	done  chan struct{}
	order *completions
}

type completions struct {
	mu  sync.Mutex
	ids []string
}

func (e fakeEntity) ID() string { return e.id }

func (e fakeEntity) ToJSON(ctx context.Context) (map[string]any, error) {
	if e.after != nil {
		select {
		case <-e.after:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.order != nil {
		e.order.mu.Lock()
		e.order.ids = append(e.order.ids, e.id)
		e.order.mu.Unlock()
	}

	if e.done != nil {
		close(e.done)
	}

	if e.err != nil {
		return nil, e.err
	}

	return map[string]any{"_id": e.id}, nil
}

func TestCollection(t *testing.T) {
	values := []fakeEntity{{id: "a"}, {id: "b"}, {id: "c"}}
	c := NewCollection(values)

	values[0].id = "changed"

	assert.Equal(t, 3, c.Len())

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.ID(), "the input slice is copied")

	_, ok = c.Get(3)
	assert.False(t, ok)

	_, ok = c.Get(-1)
	assert.False(t, ok)

	found, ok := c.Find(func(e fakeEntity) bool { return e.id == "b" })
	require.True(t, ok)
	assert.Equal(t, "b", found.ID())

	filtered := c.Filter(func(e fakeEntity) bool { return e.id != "b" })
	assert.Equal(t, []string{"a", "c"}, Map(filtered, fakeEntity.ID))

	var seen []string

	c.Each(func(i int, e fakeEntity) { seen = append(seen, fmt.Sprintf("%d:%s", i, e.id)) })
	assert.Equal(t, []string{"0:a", "1:b", "2:c"}, seen)

	seen = nil
	for i, e := range c.All() {
		seen = append(seen, fmt.Sprintf("%d:%s", i, e.id))
	}

	assert.Equal(t, []string{"0:a", "1:b", "2:c"}, seen)
}

func TestCollection_ToJSONKeepsOrder(t *testing.T) {
	const n = 50

	order := &completions{}
	values := make([]fakeEntity, n)

	for i := range values {
		values[i] = fakeEntity{id: fmt.Sprint(i), done: make(chan struct{}), order: order}
	}

	// Each projection waits for the next one, so they finish last to first.
	for i := range n - 1 {
		values[i].after = values[i+1].done
	}

	got, err := NewCollection(values).ToJSON(context.Background())
	require.NoError(t, err)
	require.Len(t, got, n)

	for i, m := range got {
		assert.Equal(t, fmt.Sprint(i), m["_id"])
	}

	require.Len(t, order.ids, n)
	assert.Equal(t, fmt.Sprint(n-1), order.ids[0])
	assert.Equal(t, "0", order.ids[n-1])
}

func TestCollection_ToJSONError(t *testing.T) {
	c := NewCollection([]fakeEntity{{id: "a"}, {id: "b", err: errTestProjection}})

	_, err := c.ToJSON(context.Background())

	assert.ErrorIs(t, err, errTestProjection)
}

func TestClient_ToCollection(t *testing.T) {
	c := New(&mockDriver{})

	col := c.ToCollection([]*Node{{identity: "x"}})

	assert.Equal(t, []string{"x"}, Map(col, (*Node).ID))
}
