package ogm

import (
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

var errUnexpectedValue = errors.New("unexpected value")

// Factory converts query results into Nodes and Relationships.
//
// Hydration never mutates the result and never goes back to the database:
// eager relationships must already be in the row, as produced by
// EagerProjection. Each row yields fresh instances, so a node that appears in
// several rows is hydrated into several value-equal Nodes that share no state.
type Factory struct {
	client *Client
}

// Hydrate converts the value in column alias of every record. Records whose
// value is null (e.g. from OPTIONAL MATCH) are skipped. When definition is nil
// the model is resolved from each node's labels.
func (f *Factory) Hydrate(res *Result, alias string, definition *Model) (*Collection[*Node], error) {
	if res == nil {
		return NewCollection[*Node](nil), nil
	}

	nodes := make([]*Node, 0, len(res.Records))

	for i, rec := range res.Records {
		n, err := f.hydrateRecord(rec, alias, definition)
		if err != nil {
			return nil, fmt.Errorf("hydrate record %d: %w", i, err)
		}

		if n != nil {
			nodes = append(nodes, n)
		}
	}

	return &Collection[*Node]{values: nodes}, nil
}

// HydrateFirst hydrates the first record only. It returns ErrNoRecords when
// there is nothing to hydrate.
func (f *Factory) HydrateFirst(res *Result, alias string, definition *Model) (*Node, error) {
	if res == nil || len(res.Records) == 0 {
		return nil, ErrNoRecords
	}

	n, err := f.hydrateRecord(res.Records[0], alias, definition)
	if err != nil {
		return nil, err
	}

	if n == nil {
		return nil, ErrNoRecords
	}

	return n, nil
}

func (f *Factory) hydrateRecord(rec *neo4j.Record, alias string, definition *Model) (*Node, error) {
	value, ok := rec.Get(alias)
	if !ok {
		return nil, fmt.Errorf("%w: no column %q", errUnexpectedValue, alias)
	}

	if value == nil {
		return nil, nil //nolint:nilnil
	}

	// Eager values may also come as separate columns named alias_relationship.
	column := func(name string) (any, bool) {
		return rec.Get(alias + "_" + name)
	}

	return f.hydrateNode(value, definition, column)
}

// hydrateNode builds a Node from a dbtype.Node or from an eager map projection.
func (f *Factory) hydrateNode(value any, definition *Model, column func(string) (any, bool)) (*Node, error) {
	var (
		identity string
		labels   []string
		props    map[string]any
		eager    map[string]any
	)

	switch v := value.(type) {
	case dbtype.Node:
		identity, labels, props = v.ElementId, v.Labels, v.Props
	case *dbtype.Node:
		identity, labels, props = v.ElementId, v.Labels, v.Props
	case map[string]any:
		identity = identityString(v[EagerID])
		labels = toStrings(v[EagerLabels])
		props, eager = v, v
	default:
		return nil, fmt.Errorf("%w: cannot hydrate node from %T", errUnexpectedValue, value)
	}

	model := definition
	if model == nil {
		var err error

		model, err = f.client.models.GetByLabels(labels...)
		if err != nil {
			return nil, err
		}
	}

	node := newNode(f.client, model, identity, labels, declared(model.Properties(), props))

	for _, rel := range model.Eager() {
		raw, ok := eager[rel.Name()]
		if !ok && column != nil {
			raw, ok = column(rel.Name())
		}

		if !ok || raw == nil {
			continue
		}

		err := f.hydrateEager(node, rel, toSlice(raw))
		if err != nil {
			return nil, fmt.Errorf("eager %q: %w", rel.Name(), err)
		}
	}

	return node, nil
}

func (f *Factory) hydrateEager(node *Node, rel *RelationshipType, items []any) error {
	target, err := f.target(rel)
	if err != nil {
		return err
	}

	if rel.NodesOnly() {
		nodes := make([]*Node, 0, len(items))

		for _, item := range items {
			n, err := f.hydrateNode(item, target, nil)
			if err != nil {
				return err
			}

			nodes = append(nodes, n)
		}

		if rel.Many() {
			node.setEager(rel.Name(), &Collection[*Node]{values: nodes})
		} else if len(nodes) > 0 {
			node.setEager(rel.Name(), nodes[0])
		}

		return nil
	}

	rels := make([]*Relationship, 0, len(items))

	for _, item := range items {
		r, err := f.hydrateRelationship(rel, target, item, node)
		if err != nil {
			return err
		}

		rels = append(rels, r)
	}

	if rel.Many() {
		node.setEager(rel.Name(), &Collection[*Relationship]{values: rels})
	} else if len(rels) > 0 {
		node.setEager(rel.Name(), rels[0])
	}

	return nil
}

// target resolves the target model of rel by name, or nil for untyped targets.
func (f *Factory) target(rel *RelationshipType) (*Model, error) {
	if rel.Target() == "" {
		return nil, nil //nolint:nilnil
	}

	return f.client.models.Get(rel.Target())
}

// hydrateRelationship builds a Relationship from an eager map projection. The
// other node sits under the definition's node alias. For incoming
// relationships the other node is the start node, otherwise the end node.
func (f *Factory) hydrateRelationship(rel *RelationshipType, target *Model, value any, subject *Node) (*Relationship, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: cannot hydrate relationship from %T", errUnexpectedValue, value)
	}

	other, err := f.hydrateNode(m[rel.NodeAlias()], target, nil)
	if err != nil {
		return nil, err
	}

	start, end := subject, other
	if rel.Direction() == DirectionIn {
		start, end = other, subject
	}

	relType, _ := m[EagerType].(string)
	if relType == "" {
		relType = rel.Relationship()
	}

	return &Relationship{
		client:     f.client,
		definition: rel,
		identity:   identityString(m[EagerID]),
		relType:    relType,
		properties: declared(rel.Properties(), m),
		start:      start,
		end:        end,
	}, nil
}

// newRelationship builds a Relationship from a driver relationship that
// connects from and to through rt, as returned by write statements.
func (f *Factory) newRelationship(rt *RelationshipType, r dbtype.Relationship, from, to *Node) *Relationship {
	start, end := from, to
	if rt.Direction() == DirectionIn {
		start, end = to, from
	}

	return &Relationship{
		client:     f.client,
		definition: rt,
		identity:   r.ElementId,
		relType:    r.Type,
		properties: declared(rt.Properties(), r.Props),
		start:      start,
		end:        end,
	}
}
