package ogm

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Property is the definition of a single scalar field of a model or relationship.
// Properties are built once while declaring models and are read-only afterwards.
type Property struct {
	name      string
	typ       FieldType
	primary   bool
	unique    bool
	required  bool
	indexed   bool
	hidden    bool
	readonly  bool
	protected bool
	def       any

	min       *float64
	max       *float64
	integer   bool
	positive  bool
	negative  bool
	multiple  *float64
	precision *int

	regex *regexp.Regexp
	email bool

	check        string
	checkProgram *vm.Program
}

// NewProperty builds a Property from its declaration.
func NewProperty(name string, f Field) (*Property, error) {
	if f.Type == "" {
		f.Type = TypeString
	}

	if !slices.Contains(propertyTypes, f.Type) {
		return nil, fmt.Errorf("%w: %q for property %q", ErrUnknownPropertyType, f.Type, name)
	}

	p := &Property{
		name:      name,
		typ:       f.Type,
		primary:   f.Primary,
		unique:    f.Unique,
		required:  f.Required,
		indexed:   f.Indexed,
		hidden:    f.Hidden,
		readonly:  f.Readonly,
		protected: f.Protected,
		def:       f.Default,
		min:       f.Min,
		max:       f.Max,
		integer:   f.Integer,
		positive:  f.Positive,
		negative:  f.Negative,
		multiple:  f.Multiple,
		precision: f.Precision,
		email:     f.Email,
		check:     f.Check,
	}

	if f.Regex != "" {
		re, err := regexp.Compile(f.Regex)
		if err != nil {
			return nil, fmt.Errorf("property %q: regex: %w", name, err)
		}

		p.regex = re
	}

	if f.Check != "" {
		env := map[string]any{"value": nil, "properties": map[string]any{}}

		program, err := expr.Compile(f.Check, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("property %q: compile check %q: %w", name, f.Check, err)
		}

		p.checkProgram = program
	}

	return p, nil
}

func (p *Property) Name() string { return p.name }

func (p *Property) Type() FieldType { return p.typ }

func (p *Property) Primary() bool { return p.primary }

// Unique is true for unique and primary properties.
func (p *Property) Unique() bool { return p.unique || p.primary }

func (p *Property) Required() bool { return p.required }

func (p *Property) Indexed() bool { return p.indexed }

// Protected properties cannot be overwritten by client updates once set.
// Primary keys are always protected.
func (p *Property) Protected() bool { return p.protected || p.primary }

// Hidden properties are excluded from JSON projections.
func (p *Property) Hidden() bool { return p.hidden }

// Readonly properties are read from the graph but never written to it.
func (p *Property) Readonly() bool { return p.readonly }

// Default returns the declared default value, or nil.
func (p *Property) Default() any { return p.def }

// ConvertToInteger reports whether values should be stored as integers.
func (p *Property) ConvertToInteger() bool {
	return p.typ == TypeInt || p.typ == TypeInteger
}
