package ogm

import (
	"context"
	"maps"
)

// Relationship is a hydrated graph relationship. It references its start and
// end nodes but does not own them.
type Relationship struct {
	client     *Client
	definition *RelationshipType
	identity   string
	relType    string
	properties map[string]any
	start      *Node
	end        *Node
	deleted    bool
}

// ID returns the driver-assigned element id.
func (r *Relationship) ID() string { return r.identity }

// Type returns the graph relationship type, e.g. ACTED_IN.
func (r *Relationship) Type() string { return r.relType }

// Definition returns the RelationshipType the instance is bound to.
func (r *Relationship) Definition() *RelationshipType { return r.definition }

// Properties returns a copy of the relationship's properties.
func (r *Relationship) Properties() map[string]any { return maps.Clone(r.properties) }

// Get returns a single property.
func (r *Relationship) Get(key string) (any, bool) {
	v, ok := r.properties[key]

	return v, ok
}

func (r *Relationship) StartNode() *Node { return r.start }

func (r *Relationship) EndNode() *Node { return r.end }

// Deleted reports whether the relationship has been deleted.
func (r *Relationship) Deleted() bool { return r.deleted }

// OtherNode returns the node facing away from the subject the relationship was
// loaded from: the start node for incoming relationships, the end node otherwise.
func (r *Relationship) OtherNode() *Node {
	if r.definition.Direction() == DirectionIn {
		return r.start
	}

	return r.end
}

// ToJSON projects the relationship to {_id, _type, ...visible properties} with
// the other node attached under the definition's node alias.
func (r *Relationship) ToJSON(ctx context.Context) (map[string]any, error) {
	output := map[string]any{
		"_id":   r.identity,
		"_type": r.relType,
	}

	for _, p := range r.definition.Properties() {
		if p.Hidden() {
			continue
		}

		if v, ok := r.properties[p.Name()]; ok {
			output[p.Name()] = valueToJSON(v)
		}
	}

	other := r.OtherNode()
	if other == nil {
		return output, nil
	}

	node, err := other.ToJSON(ctx)
	if err != nil {
		return nil, err
	}

	output[r.definition.NodeAlias()] = node

	return output, nil
}

func (r *Relationship) project(ctx context.Context) (any, error) {
	return r.ToJSON(ctx)
}

// Update writes properties to the relationship. Required properties missing
// from properties are filled from the current values so a partial update
// passes validation. The stored result is merged into the relationship.
func (r *Relationship) Update(ctx context.Context, properties map[string]any) error {
	if r.deleted {
		return ErrDeleted
	}

	input := backfillRequired(r.definition.Properties(), properties, r.properties)

	updated, err := r.client.updateRelationship(ctx, r.definition, r.identity, input)
	if err != nil {
		return err
	}

	maps.Copy(r.properties, updated)

	return nil
}

// Delete removes the relationship from the graph.
func (r *Relationship) Delete(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}

	err := r.client.deleteRelationship(ctx, r.identity)
	if err != nil {
		return err
	}

	r.deleted = true

	return nil
}

// backfillRequired copies input and fills every required property it omits
// from current.
func backfillRequired(props []*Property, input, current map[string]any) map[string]any {
	out := maps.Clone(input)
	if out == nil {
		out = make(map[string]any)
	}

	for _, p := range props {
		if _, ok := out[p.Name()]; ok || !p.Required() {
			continue
		}

		if v, ok := current[p.Name()]; ok {
			out[p.Name()] = v
		}
	}

	return out
}
