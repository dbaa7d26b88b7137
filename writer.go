package ogm

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

// MaxCascadeDepth bounds how far cascade deletes follow relationships.
const MaxCascadeDepth = 10

// updateNode validates and writes properties to the node with the given id and
// returns the properties stored afterwards.
func (c *Client) updateNode(ctx context.Context, model *Model, id string, properties map[string]any) (map[string]any, error) {
	set, err := Validate(model.Properties(), properties, ModeStrictUpdate)
	if err != nil {
		return nil, err
	}

	query := `MATCH (node) WHERE elementId(node) = $identity SET node += $properties RETURN properties(node) AS properties`

	res, err := c.WriteCypher(ctx, query, map[string]any{"identity": id, "properties": set})
	if err != nil {
		return nil, err
	}

	return declared(model.Properties(), firstProperties(res)), nil
}

// deleteNode detach-deletes the node and, following relationships whose
// cascade policy is delete, the nodes it owns. Relationships with the detach
// policy are removed by the detach delete itself.
func (c *Client) deleteNode(ctx context.Context, model *Model, id string) error {
	query := deleteNodeCypher(c.models, model)

	c.logger.Debug("deleting node", zap.String("model", model.Name()), zap.String("id", id))

	_, err := c.WriteCypher(ctx, query, map[string]any{"identity": id})

	return err
}

func deleteNodeCypher(models *ModelMap, model *Model) string {
	const alias = "this"

	var (
		matches []string
		deletes []string
	)

	var cascade func(from string, m *Model, depth int)
	cascade = func(from string, m *Model, depth int) {
		if depth > MaxCascadeDepth {
			return
		}

		for _, rel := range m.Relationships() {
			if rel.Cascade() != CascadeDelete {
				continue
			}

			to := from + "_" + nonIdent.ReplaceAllString(rel.Name(), "_") + "_node"

			var target *Model
			labels := ""

			if rel.Target() != "" {
				if t, err := models.Get(rel.Target()); err == nil {
					target = t
					labels = labelPattern(t.Labels())
				}
			}

			matches = append(matches, "OPTIONAL MATCH "+rel.pattern("("+from+")", "", "("+to+labels+")"))

			if target != nil {
				cascade(to, target, depth+1)
			}

			deletes = append(deletes, to)
		}
	}

	cascade(alias, model, 1)

	deletes = append(deletes, alias)

	var b strings.Builder

	fmt.Fprintf(&b, "MATCH (%s%s) WHERE elementId(%s) = $identity", alias, labelPattern(model.Labels()), alias)

	for _, m := range matches {
		b.WriteString("\n")
		b.WriteString(m)
	}

	b.WriteString("\nDETACH DELETE ")
	b.WriteString(strings.Join(deletes, ", "))

	return b.String()
}

// updateRelationship validates and writes properties to the relationship with
// the given id and returns the properties stored afterwards.
func (c *Client) updateRelationship(ctx context.Context, rt *RelationshipType, id string, properties map[string]any) (map[string]any, error) {
	set, err := Validate(rt.Properties(), properties, ModeStrictUpdate)
	if err != nil {
		return nil, err
	}

	query := `MATCH ()-[rel]->() WHERE elementId(rel) = $identity SET rel += $properties RETURN properties(rel) AS properties`

	res, err := c.WriteCypher(ctx, query, map[string]any{"identity": id, "properties": set})
	if err != nil {
		return nil, err
	}

	return declared(rt.Properties(), firstProperties(res)), nil
}

// deleteRelationship deletes the relationship with the given id.
func (c *Client) deleteRelationship(ctx context.Context, id string) error {
	query := `MATCH ()-[rel]->() WHERE elementId(rel) = $identity DELETE rel`

	_, err := c.WriteCypher(ctx, query, map[string]any{"identity": id})

	return err
}

// relate creates or merges a relationship of type rt between from and to.
func (c *Client) relate(ctx context.Context, from, to *Node, rt *RelationshipType, properties map[string]any, forceCreate bool) (*Relationship, error) {
	if rt.Direction() == DirectionBoth {
		return nil, fmt.Errorf("%w: %s", ErrBidirectionalWrite, rt.Name())
	}

	set, err := Validate(rt.Properties(), properties, ModeCreate)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"from":       from.identity,
		"to":         to.identity,
		"properties": set,
	}

	var b strings.Builder

	b.WriteString("MATCH (from), (to) WHERE elementId(from) = $from AND elementId(to) = $to\n")

	if forceCreate {
		fmt.Fprintf(&b, "CREATE %s\n", rt.pattern("(from)", "rel", "(to)"))
	} else {
		// Defaults such as generated keys must not replace those of an
		// existing relationship.
		supplied, defaults := splitSupplied(set, properties)
		params["properties"] = supplied

		fmt.Fprintf(&b, "MERGE %s\n", rt.pattern("(from)", "rel", "(to)"))

		if len(defaults) > 0 {
			b.WriteString("ON CREATE SET rel += $create\n")

			params["create"] = defaults
		}
	}

	b.WriteString("SET rel += $properties\nRETURN rel")

	res, err := c.WriteCypher(ctx, b.String(), params)
	if err != nil {
		return nil, err
	}

	if len(res.Records) == 0 {
		return nil, ErrNoRecords
	}

	value, _ := res.Records[0].Get("rel")

	rel, ok := value.(dbtype.Relationship)
	if !ok {
		return nil, fmt.Errorf("%w: expected relationship, got %T", errUnexpectedValue, value)
	}

	return c.factory.newRelationship(rt, rel, from, to), nil
}

func firstProperties(res *Result) map[string]any {
	if res == nil || len(res.Records) == 0 {
		return map[string]any{}
	}

	v, _ := res.Records[0].Get("properties")

	props, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	return props
}

// declared keeps the entries of values that props declare.
func declared(props []*Property, values map[string]any) map[string]any {
	out := make(map[string]any)

	for _, p := range props {
		if v, ok := values[p.Name()]; ok {
			out[p.Name()] = v
		}
	}

	return out
}
