package ogm

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Model is the schema of one graph label: its labels, properties and relationships.
type Model struct {
	name   string
	schema Schema
	labels []string

	properties    []*Property
	seq           map[string]int // declaration sequence per property
	nextSeq       int
	relationships []*RelationshipType

	primaryKey string
	unique     []string
	indexed    []string
	hidden     []string
	readonly   []string
}

// NewModel partitions a schema declaration into labels, relationships and
// properties. Fields are processed in name order.
func NewModel(name string, schema Schema) (*Model, error) {
	schema = Schema{}.merge(schema)

	m := &Model{
		name:   name,
		schema: schema,
		labels: []string{name},
		seq:    make(map[string]int),
	}
	m.derive()

	if len(schema.Labels) > 0 {
		m.SetLabels(schema.Labels...)
	}

	keys := slices.Sorted(maps.Keys(schema.Fields))

	for _, key := range keys {
		f := schema.Fields[key]

		var err error
		if f.Type.IsRelationship() {
			_, err = m.DefineRelationship(key, f)
		} else {
			err = m.AddProperty(key, f)
		}

		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
	}

	return m, nil
}

func (m *Model) Name() string { return m.name }

// Schema returns a copy of the model's declaration, including fields added
// after construction.
func (m *Model) Schema() Schema { return Schema{}.merge(m.schema) }

// SetLabels replaces the model's labels. Labels are kept sorted and unique.
func (m *Model) SetLabels(labels ...string) *Model {
	out := slices.Clone(labels)
	slices.Sort(out)
	m.labels = slices.Compact(out)

	return m
}

// Labels returns the sorted label set.
func (m *Model) Labels() []string { return slices.Clone(m.labels) }

// Properties returns the model's properties in declaration order.
func (m *Model) Properties() []*Property { return m.properties }

// Property returns the property called name.
func (m *Model) Property(name string) (*Property, bool) {
	i := m.propertyIndex(name)
	if i < 0 {
		return nil, false
	}

	return m.properties[i], true
}

func (m *Model) propertyIndex(name string) int {
	return slices.IndexFunc(m.properties, func(p *Property) bool { return p.name == name })
}

// AddProperty adds or replaces a property definition. When several properties
// claim to be primary, the one declared last wins.
func (m *Model) AddProperty(name string, f Field) error {
	p, err := NewProperty(name, f)
	if err != nil {
		return err
	}

	if i := m.propertyIndex(name); i >= 0 {
		m.properties[i] = p
	} else {
		m.properties = append(m.properties, p)
	}

	m.schema.Fields[name] = f
	m.seq[name] = m.nextSeq
	m.nextSeq++

	m.derive()

	return nil
}

// derive recomputes the primary key and the derived field sets.
func (m *Model) derive() {
	m.primaryKey = strings.ToLower(m.name) + "_id"
	m.unique, m.indexed, m.hidden, m.readonly = nil, nil, nil, nil

	latest := -1

	for _, p := range m.properties {
		if p.Primary() && m.seq[p.name] > latest {
			latest = m.seq[p.name]
			m.primaryKey = p.name
		}

		if p.Unique() {
			m.unique = append(m.unique, p.name)
		}

		if p.Indexed() {
			m.indexed = append(m.indexed, p.name)
		}

		if p.Hidden() {
			m.hidden = append(m.hidden, p.name)
		}

		if p.Readonly() {
			m.readonly = append(m.readonly, p.name)
		}
	}
}

// DefineRelationship registers a relationship, replacing any previous definition
// with the same name. It fails if the declaration is incomplete.
func (m *Model) DefineRelationship(name string, f Field) (*RelationshipType, error) {
	rt, err := NewRelationshipType(name, f)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(m.relationships, func(r *RelationshipType) bool { return r.name == name })
	if i >= 0 {
		m.relationships[i] = rt
	} else {
		m.relationships = append(m.relationships, rt)
	}

	m.schema.Fields[name] = f

	return rt, nil
}

// Relationship returns the relationship called name.
func (m *Model) Relationship(name string) (*RelationshipType, error) {
	for _, r := range m.relationships {
		if r.name == name {
			return r, nil
		}
	}

	return nil, &DefinitionNotFoundError{Kind: "relationship", Name: m.name + "." + name}
}

// Relationships returns every relationship defined on the model.
func (m *Model) Relationships() []*RelationshipType { return m.relationships }

// Eager returns the relationships that are loaded together with the node.
func (m *Model) Eager() []*RelationshipType {
	var out []*RelationshipType

	for _, r := range m.relationships {
		if r.eager {
			out = append(out, r)
		}
	}

	return out
}

// PrimaryKey returns the primary key property name. Without a primary
// property it is the lowercased model name followed by "_id".
func (m *Model) PrimaryKey() string { return m.primaryKey }

func (m *Model) UniqueFields() []string { return slices.Clone(m.unique) }

func (m *Model) IndexedFields() []string { return slices.Clone(m.indexed) }

func (m *Model) HiddenFields() []string { return slices.Clone(m.hidden) }

func (m *Model) ReadonlyFields() []string { return slices.Clone(m.readonly) }

// MergeFields are the unique and indexed fields, used to build MERGE statements.
func (m *Model) MergeFields() []string {
	out := slices.Clone(m.unique)
	for _, f := range m.indexed {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}

	return out
}
