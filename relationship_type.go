package ogm

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultNodeAlias is the key the related node is projected under when a
// relationship declares no alias.
const DefaultNodeAlias = "node"

// RelationshipType describes a named traversal from one model to another.
//
// The target model is held by name and resolved through the ModelMap when it is
// needed, so definitions may refer to models declared later or to themselves.
type RelationshipType struct {
	name         string
	kind         FieldType
	relationship string
	direction    Direction
	target       string
	properties   []*Property
	eager        bool
	cascade      Cascade
	nodeAlias    string
}

// NewRelationshipType builds a RelationshipType from its declaration.
// The relationship label and direction are required.
func NewRelationshipType(name string, f Field) (*RelationshipType, error) {
	if !f.Type.IsRelationship() {
		return nil, fmt.Errorf("%w: %q is not a relationship type", ErrUnknownPropertyType, f.Type)
	}

	if f.Relationship == "" {
		return nil, fmt.Errorf("%w: %q has no relationship label", ErrIncompleteRelationship, name)
	}

	if f.Direction == "" {
		return nil, fmt.Errorf("%w: %q has no direction", ErrIncompleteRelationship, name)
	}

	direction, err := ParseDirection(string(f.Direction))
	if err != nil {
		return nil, fmt.Errorf("relationship %q: %w", name, err)
	}

	cascade := Cascade(strings.ToLower(string(f.Cascade)))
	switch cascade {
	case CascadeNone, CascadeDetach, CascadeDelete:
	case "none":
		cascade = CascadeNone
	default:
		return nil, fmt.Errorf("relationship %q: unknown cascade policy %q", name, f.Cascade)
	}

	alias := f.Alias
	if alias == "" {
		alias = DefaultNodeAlias
	}

	rt := &RelationshipType{
		name:         name,
		kind:         f.Type,
		relationship: f.Relationship,
		direction:    direction,
		target:       f.Target,
		eager:        f.Eager,
		cascade:      cascade,
		nodeAlias:    alias,
	}

	keys := make([]string, 0, len(f.Properties))
	for key := range f.Properties {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		p, err := NewProperty(key, f.Properties[key])
		if err != nil {
			return nil, fmt.Errorf("relationship %q: %w", name, err)
		}

		rt.properties = append(rt.properties, p)
	}

	return rt, nil
}

func (r *RelationshipType) Name() string { return r.name }

// Type is one of relationship, relationships, node or nodes.
func (r *RelationshipType) Type() FieldType { return r.kind }

// Relationship is the graph relationship label, e.g. ACTED_IN.
func (r *RelationshipType) Relationship() string { return r.relationship }

func (r *RelationshipType) Direction() Direction { return r.direction }

// Target is the name of the target model, or "" for any node.
func (r *RelationshipType) Target() string { return r.target }

// Properties returns the properties attached to the relationship, ordered by name.
func (r *RelationshipType) Properties() []*Property { return r.properties }

// Property returns the attached property called name.
func (r *RelationshipType) Property(name string) (*Property, bool) {
	for _, p := range r.properties {
		if p.name == name {
			return p, true
		}
	}

	return nil, false
}

func (r *RelationshipType) Eager() bool { return r.eager }

func (r *RelationshipType) Cascade() Cascade { return r.cascade }

// NodeAlias is the key under which the other node is projected.
func (r *RelationshipType) NodeAlias() string { return r.nodeAlias }

// Many reports whether the relationship is a collection.
func (r *RelationshipType) Many() bool {
	return r.kind == TypeRelationships || r.kind == TypeNodes
}

// NodesOnly reports whether hydration yields the related nodes instead of
// Relationship instances.
func (r *RelationshipType) NodesOnly() bool {
	return r.kind == TypeNode || r.kind == TypeNodes
}

// pattern renders the relationship pattern between two node patterns,
// e.g. (a)-[r:KNOWS]->(b).
func (r *RelationshipType) pattern(from, rel, to string) string {
	arrow := "-[" + rel + ":" + quoteIdent(r.relationship) + "]-"

	switch r.direction {
	case DirectionIn:
		return from + "<" + arrow + to
	case DirectionOut:
		return from + arrow + ">" + to
	default:
		return from + arrow + to
	}
}
