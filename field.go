package ogm

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType is the declared type of a schema field.
type FieldType string

// Scalar property types.
const (
	TypeString    FieldType = "string"
	TypeUUID      FieldType = "uuid"
	TypeNumber    FieldType = "number"
	TypeInt       FieldType = "int"
	TypeInteger   FieldType = "integer"
	TypeFloat     FieldType = "float"
	TypeBoolean   FieldType = "boolean"
	TypeDateTime  FieldType = "datetime"
	TypeDate      FieldType = "date"
	TypeTime      FieldType = "time"
	TypeLocalDate FieldType = "localdate"
	TypeLocalTime FieldType = "localtime"
	TypeDuration  FieldType = "duration"
	TypePoint     FieldType = "point"
)

// Relationship field types. A field of one of these types declares a RelationshipType
// rather than a Property.
const (
	TypeRelationship  FieldType = "relationship"
	TypeRelationships FieldType = "relationships"
	TypeNode          FieldType = "node"
	TypeNodes         FieldType = "nodes"
)

var propertyTypes = []FieldType{
	TypeString, TypeUUID, TypeNumber, TypeInt, TypeInteger, TypeFloat, TypeBoolean,
	TypeDateTime, TypeDate, TypeTime, TypeLocalDate, TypeLocalTime, TypeDuration, TypePoint,
}

var relationshipTypes = []FieldType{TypeRelationship, TypeRelationships, TypeNode, TypeNodes}

// IsRelationship reports whether fields of this type declare relationships.
func (t FieldType) IsRelationship() bool {
	return slices.Contains(relationshipTypes, t)
}

func (t FieldType) numeric() bool {
	return t == TypeNumber || t == TypeInt || t == TypeInteger || t == TypeFloat
}

// Field is the declaration of a single model field. Property options and
// relationship options share the struct; which ones apply depends on Type.
type Field struct {
	Type FieldType `yaml:"type"`

	Primary   bool `yaml:"primary,omitempty"`
	Unique    bool `yaml:"unique,omitempty"`
	Required  bool `yaml:"required,omitempty"`
	Indexed   bool `yaml:"indexed,omitempty"`
	Hidden    bool `yaml:"hidden,omitempty"`
	Readonly  bool `yaml:"readonly,omitempty"`
	Protected bool `yaml:"protected,omitempty"`
	Default   any  `yaml:"default,omitempty"`

	// Numeric constraints
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Integer   bool     `yaml:"integer,omitempty"`
	Positive  bool     `yaml:"positive,omitempty"`
	Negative  bool     `yaml:"negative,omitempty"`
	Multiple  *float64 `yaml:"multiple,omitempty"`
	Precision *int     `yaml:"precision,omitempty"`

	// String constraints
	Regex string `yaml:"regex,omitempty"`
	Email bool   `yaml:"email,omitempty"`

	// Check is a boolean expr-lang expression over `value` and `properties`.
	Check string `yaml:"check,omitempty"`

	// Relationship options
	Relationship string           `yaml:"relationship,omitempty"`
	Direction    Direction        `yaml:"direction,omitempty"`
	Target       string           `yaml:"target,omitempty"`
	Properties   map[string]Field `yaml:"properties,omitempty"`
	Eager        bool             `yaml:"eager,omitempty"`
	Cascade      Cascade          `yaml:"cascade,omitempty"`
	Alias        string           `yaml:"alias,omitempty"`
}

// F declares a field of type t with no options.
func F(t FieldType) Field {
	return Field{Type: t}
}

var fieldKeys = []string{
	"type", "primary", "unique", "required", "indexed", "hidden", "readonly", "protected",
	"default", "min", "max", "integer", "positive", "negative", "multiple", "precision",
	"regex", "email", "check", "relationship", "direction", "target", "properties", "eager",
	"cascade", "alias",
}

// UnmarshalYAML accepts either a bare type (`name: string`) or a mapping of options.
// Unknown option keys are rejected.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = Field{Type: FieldType(strings.ToLower(node.Value))}

		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: field must be a type name or a mapping", node.Line)
	}

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(fieldKeys, key.Value) {
			return fmt.Errorf("line %d: unknown field option %q", key.Line, key.Value)
		}
	}

	type plain Field

	var p plain

	err := node.Decode(&p)
	if err != nil {
		return err
	}

	p.Type = FieldType(strings.ToLower(string(p.Type)))
	*f = Field(p)

	return nil
}

// Schema is the declaration of a model: extra labels and its fields.
type Schema struct {
	Labels []string         `yaml:"labels,omitempty"`
	Fields map[string]Field `yaml:"fields"`
}

// merge returns a shallow merge of s and overrides: override fields replace fields of the
// same name, all other fields of s are kept. Labels of overrides win when set.
func (s Schema) merge(overrides Schema) Schema {
	out := Schema{
		Labels: slices.Clone(s.Labels),
		Fields: maps.Clone(s.Fields),
	}
	if out.Fields == nil {
		out.Fields = make(map[string]Field, len(overrides.Fields))
	}

	maps.Copy(out.Fields, overrides.Fields)

	if len(overrides.Labels) > 0 {
		out.Labels = slices.Clone(overrides.Labels)
	}

	return out
}

// Direction of a relationship, seen from the model that declares it.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// ParseDirection accepts in/out/both and the direction_ prefixed forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "direction_") {
	case "in":
		return DirectionIn, nil
	case "out":
		return DirectionOut, nil
	case "both":
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrIncompleteRelationship, s)
	}
}

// Cascade is the policy applied to related nodes when the owning node is deleted.
type Cascade string

const (
	CascadeNone   Cascade = ""
	CascadeDetach Cascade = "detach"
	CascadeDelete Cascade = "delete"
)
