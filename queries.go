package ogm

import (
	"context"
	"fmt"
	"strings"
)

const thisAlias = "this"

// returnThis renders the RETURN clause projecting the node bound to "this".
func (c *Client) returnThis(model *Model) string {
	return "RETURN " + EagerProjection(c.models, model, thisAlias) + " AS " + thisAlias
}

// Create validates properties in create mode and creates a node of model.
func (c *Client) Create(ctx context.Context, model string, properties map[string]any) (*Node, error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	set, err := Validate(m.Properties(), properties, ModeCreate)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("CREATE (%s%s)\nSET %s += $properties\n%s",
		thisAlias, labelPattern(m.Labels()), thisAlias, c.returnThis(m))

	res, err := c.WriteCypher(ctx, query, map[string]any{"properties": set})
	if err != nil {
		return nil, err
	}

	return c.HydrateFirst(res, thisAlias, m)
}

// Merge validates properties in create mode and merges a node of model on the
// merge fields (unique and indexed properties) the caller supplied. Values
// filled in from defaults are only written when the node is created.
func (c *Client) Merge(ctx context.Context, model string, properties map[string]any) (*Node, error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	values, err := Validate(m.Properties(), properties, ModeCreate)
	if err != nil {
		return nil, err
	}

	set, onCreate := splitSupplied(values, properties)
	match := make(map[string]any)

	for _, f := range m.MergeFields() {
		if v, ok := set[f]; ok {
			match[f] = v
		}
	}

	if len(match) == 0 {
		return nil, &ValidationError{
			Details: []Violation{{
				Field:   m.PrimaryKey(),
				Rule:    "merge",
				Message: fmt.Sprintf("no merge fields of %q were supplied", model),
			}},
			Input: properties,
		}
	}

	return c.mergeOn(ctx, m, match, onCreate, set)
}

// splitSupplied separates validated values the caller supplied in input from
// those filled in from defaults.
func splitSupplied(values, input map[string]any) (supplied, defaults map[string]any) {
	supplied = make(map[string]any)
	defaults = make(map[string]any)

	for k, v := range values {
		if in, ok := input[k]; ok && in != nil {
			supplied[k] = v
		} else {
			defaults[k] = v
		}
	}

	return supplied, defaults
}

// MergeOn merges a node of model matching match exactly and sets set on it.
func (c *Client) MergeOn(ctx context.Context, model string, match, set map[string]any) (*Node, error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	values, err := Validate(m.Properties(), set, ModeUpdate)
	if err != nil {
		return nil, err
	}

	return c.mergeOn(ctx, m, match, nil, values)
}

func (c *Client) mergeOn(ctx context.Context, m *Model, match, onCreate, set map[string]any) (*Node, error) {
	params := map[string]any{"properties": set}
	keys := sortedKeys(match)
	fields := make([]string, len(keys))

	for i, k := range keys {
		param := fmt.Sprintf("match_%d", i)
		fields[i] = fmt.Sprintf("%s: $%s", quoteIdent(k), param)
		params[param] = match[k]
	}

	var b strings.Builder

	fmt.Fprintf(&b, "MERGE (%s%s { %s })\n", thisAlias, labelPattern(m.Labels()), strings.Join(fields, ", "))

	if len(onCreate) > 0 {
		fmt.Fprintf(&b, "ON CREATE SET %s += $create\n", thisAlias)

		params["create"] = onCreate
	}

	fmt.Fprintf(&b, "SET %s += $properties\n%s", thisAlias, c.returnThis(m))

	res, err := c.WriteCypher(ctx, b.String(), params)
	if err != nil {
		return nil, err
	}

	return c.HydrateFirst(res, thisAlias, m)
}

// Find returns the node of model whose primary key equals id.
func (c *Client) Find(ctx context.Context, model string, id any) (*Node, error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	return c.First(ctx, model, map[string]any{m.PrimaryKey(): id})
}

// FindByID returns the node of model with the given element id.
func (c *Client) FindByID(ctx context.Context, model string, id string) (*Node, error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("MATCH (%s%s) WHERE elementId(%s) = $id\n%s\nLIMIT 1",
		thisAlias, labelPattern(m.Labels()), thisAlias, c.returnThis(m))

	res, err := c.ReadCypher(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	return c.HydrateFirst(res, thisAlias, m)
}

// First returns the first node of model whose properties equal where.
func (c *Client) First(ctx context.Context, model string, where map[string]any) (*Node, error) {
	col, err := c.All(ctx, model, Query{Where: where, Limit: 1})
	if err != nil {
		return nil, err
	}

	n, ok := col.First()
	if !ok {
		return nil, ErrNoRecords
	}

	return n, nil
}

// Order is a sort key for All.
type Order struct {
	Property   string
	Descending bool
}

// Query filters, sorts and pages All.
type Query struct {
	Where map[string]any
	Order []Order
	Limit int
	Skip  int
}

// All returns the nodes of model matching q.
func (c *Client) All(ctx context.Context, model string, q Query) (*Collection[*Node], error) {
	m, err := c.Model(model)
	if err != nil {
		return nil, err
	}

	query, params := c.allCypher(m, q)

	res, err := c.ReadCypher(ctx, query, params)
	if err != nil {
		return nil, err
	}

	return c.Hydrate(res, thisAlias, m)
}

func (c *Client) allCypher(m *Model, q Query) (string, map[string]any) {
	var b strings.Builder

	params := make(map[string]any)

	fmt.Fprintf(&b, "MATCH (%s%s)", thisAlias, labelPattern(m.Labels()))

	if len(q.Where) > 0 {
		keys := sortedKeys(q.Where)
		conds := make([]string, len(keys))

		for i, k := range keys {
			param := fmt.Sprintf("where_%d", i)
			conds[i] = fmt.Sprintf("%s.%s = $%s", thisAlias, quoteIdent(k), param)
			params[param] = q.Where[k]
		}

		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	b.WriteString("\n")
	b.WriteString(c.returnThis(m))

	if len(q.Order) > 0 {
		orders := make([]string, len(q.Order))

		for i, o := range q.Order {
			orders[i] = thisAlias + "." + quoteIdent(o.Property)
			if o.Descending {
				orders[i] += " DESC"
			}
		}

		b.WriteString("\nORDER BY ")
		b.WriteString(strings.Join(orders, ", "))
	}

	if q.Skip > 0 {
		b.WriteString("\nSKIP $skip")

		params["skip"] = int64(q.Skip)
	}

	if q.Limit > 0 {
		b.WriteString("\nLIMIT $limit")

		params["limit"] = int64(q.Limit)
	}

	return b.String(), params
}

// DeleteAll detach-deletes every node of model.
func (c *Client) DeleteAll(ctx context.Context, model string) error {
	m, err := c.Model(model)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("MATCH (%s%s) DETACH DELETE %s", thisAlias, labelPattern(m.Labels()), thisAlias)

	_, err = c.WriteCypher(ctx, query, nil)

	return err
}

// Relate connects from to to through from's relationship called name.
func (c *Client) Relate(ctx context.Context, from, to *Node, name string, properties map[string]any, forceCreate bool) (*Relationship, error) {
	return from.RelateTo(ctx, to, name, properties, forceCreate)
}
