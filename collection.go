package ogm

import (
	"context"
	"iter"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Entity is a runtime instance hydrated from the graph.
type Entity interface {
	ID() string
	ToJSON(ctx context.Context) (map[string]any, error)
}

// Collection is an ordered, fixed-length sequence of entities produced by one
// hydration pass.
type Collection[T Entity] struct {
	values []T
}

// NewCollection wraps values. The slice is copied.
func NewCollection[T Entity](values []T) *Collection[T] {
	return &Collection[T]{values: slices.Clone(values)}
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int { return len(c.values) }

// Get returns the entity at index i.
func (c *Collection[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(c.values) {
		var zero T

		return zero, false
	}

	return c.values[i], true
}

// First returns the first entity.
func (c *Collection[T]) First() (T, bool) {
	return c.Get(0)
}

// All iterates over the entities with their index.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return slices.All(c.values)
}

// Values returns a copy of the underlying entities.
func (c *Collection[T]) Values() []T { return slices.Clone(c.values) }

// Each calls fn for every entity in order.
func (c *Collection[T]) Each(fn func(int, T)) {
	for i, v := range c.values {
		fn(i, v)
	}
}

// Find returns the first entity for which fn returns true.
func (c *Collection[T]) Find(fn func(T) bool) (T, bool) {
	i := slices.IndexFunc(c.values, fn)
	if i < 0 {
		var zero T

		return zero, false
	}

	return c.values[i], true
}

// Filter returns a new collection holding the entities for which fn returns true.
func (c *Collection[T]) Filter(fn func(T) bool) *Collection[T] {
	var out []T

	for _, v := range c.values {
		if fn(v) {
			out = append(out, v)
		}
	}

	return &Collection[T]{values: out}
}

// Map applies fn to every entity of c.
func Map[T Entity, K any](c *Collection[T], fn func(T) K) []K {
	out := make([]K, len(c.values))
	for i, v := range c.values {
		out[i] = fn(v)
	}

	return out
}

// ToJSON projects every entity concurrently and returns the projections in
// collection order.
func (c *Collection[T]) ToJSON(ctx context.Context) ([]map[string]any, error) {
	out := make([]map[string]any, len(c.values))

	g, ctx := errgroup.WithContext(ctx)

	for i, v := range c.values {
		g.Go(func() error {
			json, err := v.ToJSON(ctx)
			if err != nil {
				return err
			}

			out[i] = json

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Collection[T]) project(ctx context.Context) (any, error) {
	return c.ToJSON(ctx)
}
