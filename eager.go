package ogm

import (
	"regexp"
	"strings"
)

// Keys added to map projections so nodes and relationships can be hydrated
// without their driver types.
const (
	EagerID     = "__EAGER_ID"
	EagerLabels = "__EAGER_LABELS"
	EagerType   = "__EAGER_TYPE"
)

// MaxEagerDepth bounds how many levels of eager relationships are projected.
// Self-referencing and circular eager relationships stop here.
const MaxEagerDepth = 3

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// EagerProjection renders the map projection of alias for model, including a
// pattern comprehension for every eager relationship. Target models are
// resolved by name through models at render time. A nil model projects the
// node's own properties only.
//
//	MATCH (this:Person) RETURN <EagerProjection(models, person, "this")> AS this
func EagerProjection(models *ModelMap, model *Model, alias string) string {
	return eagerProjection(models, model, alias, 0)
}

func eagerProjection(models *ModelMap, model *Model, alias string, depth int) string {
	fields := []string{
		".*",
		EagerID + ": elementId(" + alias + ")",
		EagerLabels + ": labels(" + alias + ")",
	}

	if model != nil && depth < MaxEagerDepth {
		for _, rel := range model.Eager() {
			fields = append(fields, quoteIdent(rel.Name())+": "+eagerComprehension(models, rel, alias, depth+1))
		}
	}

	return alias + " { " + strings.Join(fields, ", ") + " }"
}

func eagerComprehension(models *ModelMap, rel *RelationshipType, alias string, depth int) string {
	base := alias + "_" + nonIdent.ReplaceAllString(rel.Name(), "_")
	relAlias := base + "_rel"
	nodeAlias := base + "_node"

	var (
		target *Model
		labels string
	)

	if rel.Target() != "" {
		if t, err := models.Get(rel.Target()); err == nil {
			target = t
			labels = labelPattern(t.Labels())
		}
	}

	pattern := rel.pattern("("+alias+")", relAlias, "("+nodeAlias+labels+")")
	node := eagerProjection(models, target, nodeAlias, depth)

	if rel.NodesOnly() {
		return "[ " + pattern + " | " + node + " ]"
	}

	projection := relAlias + " { .*, " +
		EagerID + ": elementId(" + relAlias + "), " +
		EagerType + ": type(" + relAlias + "), " +
		quoteIdent(rel.NodeAlias()) + ": " + node + " }"

	return "[ " + pattern + " | " + projection + " ]"
}
