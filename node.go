package ogm

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
)

// projector is implemented by everything that can be stored as an eager value.
type projector interface {
	project(ctx context.Context) (any, error)
}

// Node is a hydrated graph node bound to its Model.
type Node struct {
	client     *Client
	model      *Model
	identity   string
	labels     []string
	properties map[string]any
	eager      map[string]projector
	deleted    bool
}

func newNode(client *Client, model *Model, identity string, labels []string, properties map[string]any) *Node {
	return &Node{
		client:     client,
		model:      model,
		identity:   identity,
		labels:     labels,
		properties: properties,
		eager:      make(map[string]projector),
	}
}

// ID returns the driver-assigned element id.
func (n *Node) ID() string { return n.identity }

// Labels returns the node's labels as read from the graph.
func (n *Node) Labels() []string { return slices.Clone(n.labels) }

// Model returns the model the node was hydrated with.
func (n *Node) Model() *Model { return n.model }

// Properties returns a copy of the node's properties.
func (n *Node) Properties() map[string]any { return maps.Clone(n.properties) }

// Get returns a single property.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.properties[key]

	return v, ok
}

// Deleted reports whether the node has been deleted.
func (n *Node) Deleted() bool { return n.deleted }

func (n *Node) setEager(name string, value projector) {
	n.eager[name] = value
}

// Eager returns the eagerly loaded value for relationship name: a *Node,
// *Relationship, *Collection[*Node] or *Collection[*Relationship].
func (n *Node) Eager(name string) (any, bool) {
	v, ok := n.eager[name]

	return v, ok
}

// EagerRelationships returns the eagerly loaded relationships called name.
func (n *Node) EagerRelationships(name string) (*Collection[*Relationship], bool) {
	v, ok := n.eager[name].(*Collection[*Relationship])

	return v, ok
}

// EagerNodes returns the eagerly loaded nodes called name.
func (n *Node) EagerNodes(name string) (*Collection[*Node], bool) {
	v, ok := n.eager[name].(*Collection[*Node])

	return v, ok
}

// ToJSON projects the node to {_id, _labels, ...visible properties, ...eager values}.
// Eager values are projected concurrently.
func (n *Node) ToJSON(ctx context.Context) (map[string]any, error) {
	output := map[string]any{
		"_id":     n.identity,
		"_labels": slices.Clone(n.labels),
	}

	for _, p := range n.model.Properties() {
		if p.Hidden() {
			continue
		}

		if v, ok := n.properties[p.Name()]; ok {
			output[p.Name()] = valueToJSON(v)
		}
	}

	eager := n.model.Eager()
	values := make([]any, len(eager))
	g, ctx := errgroup.WithContext(ctx)

	for i, rel := range eager {
		value, ok := n.eager[rel.Name()]
		if !ok {
			continue
		}

		g.Go(func() error {
			v, err := value.project(ctx)
			if err != nil {
				return err
			}

			values[i] = v

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	for i, rel := range eager {
		if _, ok := n.eager[rel.Name()]; ok {
			output[rel.Name()] = values[i]
		}
	}

	return output, nil
}

func (n *Node) project(ctx context.Context) (any, error) {
	return n.ToJSON(ctx)
}

// Update validates properties, writes them and merges the stored result into
// the node. Required properties missing from properties keep their current value.
func (n *Node) Update(ctx context.Context, properties map[string]any) error {
	if n.deleted {
		return ErrDeleted
	}

	input := backfillRequired(n.model.Properties(), properties, n.properties)

	updated, err := n.client.updateNode(ctx, n.model, n.identity, input)
	if err != nil {
		return err
	}

	maps.Copy(n.properties, updated)

	return nil
}

// Delete removes the node, cascading according to its model's relationships.
func (n *Node) Delete(ctx context.Context) error {
	if n.deleted {
		return ErrDeleted
	}

	err := n.client.deleteNode(ctx, n.model, n.identity)
	if err != nil {
		return err
	}

	n.deleted = true

	return nil
}

// RelateTo connects n to other through the relationship called name on n's
// model. Unless forceCreate is set an existing relationship is merged.
func (n *Node) RelateTo(ctx context.Context, other *Node, name string, properties map[string]any, forceCreate bool) (*Relationship, error) {
	if n.deleted || other.deleted {
		return nil, ErrDeleted
	}

	rt, err := n.model.Relationship(name)
	if err != nil {
		return nil, err
	}

	return n.client.relate(ctx, n, other, rt, properties, forceCreate)
}
