package ogm

import (
	"fmt"
	"math"
	"net/mail"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ValidationMode selects which rules apply to a write.
type ValidationMode int

const (
	// ModeCreate applies defaults, generates uuids and enforces required properties.
	ModeCreate ValidationMode = iota
	// ModeUpdate checks only the supplied properties and drops protected ones.
	ModeUpdate
	// ModeStrictUpdate is ModeUpdate that also enforces required properties.
	ModeStrictUpdate
)

// Validate checks input against props and returns the properties to write.
// Keys without a property definition are dropped, as are readonly properties
// and, when updating, protected ones. Every violation is collected into a
// single *ValidationError.
func Validate(props []*Property, input map[string]any, mode ValidationMode) (map[string]any, error) {
	out := make(map[string]any)

	var details []Violation

	for _, p := range props {
		if p.Readonly() || (mode != ModeCreate && p.Protected()) {
			continue
		}

		value, ok := input[p.Name()]
		if (!ok || value == nil) && mode == ModeCreate {
			value = p.defaultValue()
		}

		if value == nil {
			if p.Required() && mode != ModeUpdate {
				details = append(details, Violation{
					Field:   p.Name(),
					Rule:    "required",
					Message: fmt.Sprintf("%q is required", p.Name()),
				})
			}

			continue
		}

		value, violations := p.validate(value, input)
		if len(violations) > 0 {
			details = append(details, violations...)

			continue
		}

		out[p.Name()] = value
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details, Input: input}
	}

	return out, nil
}

// defaultValue returns the declared default, calling it when it is a
// func() any. Properties of type uuid without a default get a random UUID.
func (p *Property) defaultValue() any {
	switch d := p.def.(type) {
	case nil:
		if p.typ == TypeUUID {
			return uuid.NewString()
		}

		return nil
	case func() any:
		return d()
	default:
		return d
	}
}

func (p *Property) violation(rule, format string, args ...any) Violation {
	return Violation{
		Field:   p.name,
		Rule:    rule,
		Message: fmt.Sprintf("%q ", p.name) + fmt.Sprintf(format, args...),
	}
}

// validate checks and normalizes a single non-nil value.
func (p *Property) validate(value any, input map[string]any) (any, []Violation) {
	value, v := p.coerce(value)
	if v != nil {
		return nil, []Violation{*v}
	}

	var out []Violation

	if p.typ.numeric() {
		out = append(out, p.validateNumber(value)...)
	}

	if s, ok := value.(string); ok {
		if p.regex != nil && !p.regex.MatchString(s) {
			out = append(out, p.violation("regex", "must match %s", p.regex))
		}

		if p.email {
			if _, err := mail.ParseAddress(s); err != nil {
				out = append(out, p.violation("email", "must be a valid email address"))
			}
		}
	}

	if p.checkProgram != nil {
		res, err := expr.Run(p.checkProgram, map[string]any{"value": value, "properties": input})
		if err != nil {
			out = append(out, p.violation("check", "check %q failed: %v", p.check, err))
		} else if ok, _ := res.(bool); !ok {
			out = append(out, p.violation("check", "must satisfy %q", p.check))
		}
	}

	return value, out
}

// coerce checks the value against the declared type and converts it to the
// form written to the graph.
func (p *Property) coerce(value any) (any, *Violation) {
	bad := func() (any, *Violation) {
		v := p.violation("type", "must be of type %s, got %T", p.typ, value)

		return nil, &v
	}

	switch p.typ {
	case TypeString:
		if _, ok := value.(string); !ok {
			return bad()
		}
	case TypeUUID:
		s, ok := value.(string)
		if !ok {
			return bad()
		}

		if _, err := uuid.Parse(s); err != nil {
			v := p.violation("uuid", "must be a valid uuid")

			return nil, &v
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return bad()
		}
	case TypeNumber, TypeFloat:
		f, ok := toFloat(value)
		if !ok {
			return bad()
		}

		if p.precision != nil {
			scale := math.Pow(10, float64(*p.precision))

			return math.Round(f*scale) / scale, nil
		}
	case TypeInt, TypeInteger:
		i, ok := toInt64(value)
		if !ok {
			return bad()
		}

		return i, nil
	case TypeDateTime:
		switch x := value.(type) {
		case time.Time, dbtype.LocalDateTime:
		case string:
			t, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return bad()
			}

			return t, nil
		default:
			return bad()
		}
	case TypeDate, TypeLocalDate:
		switch x := value.(type) {
		case dbtype.Date:
		case time.Time:
			return dbtype.Date(x), nil
		case string:
			t, err := time.Parse(time.DateOnly, x)
			if err != nil {
				return bad()
			}

			return dbtype.Date(t), nil
		default:
			return bad()
		}
	case TypeTime, TypeLocalTime:
		switch value.(type) {
		case dbtype.Time, dbtype.LocalTime:
		default:
			return bad()
		}
	case TypeDuration:
		switch x := value.(type) {
		case dbtype.Duration:
		case time.Duration:
			return dbtype.Duration{Seconds: int64(x / time.Second), Nanos: int(x % time.Second)}, nil
		default:
			return bad()
		}
	case TypePoint:
		switch x := value.(type) {
		case dbtype.Point2D, dbtype.Point3D:
		case map[string]any:
			px, okx := toFloat(x["x"])
			py, oky := toFloat(x["y"])
			if !okx || !oky {
				return bad()
			}

			return dbtype.Point2D{X: px, Y: py, SpatialRefId: 7203}, nil
		default:
			return bad()
		}
	}

	return value, nil
}

func (p *Property) validateNumber(value any) []Violation {
	if i, ok := exactInt(value); ok {
		return p.validateInt(i)
	}

	f, _ := toFloat(value)

	var out []Violation

	if p.min != nil && f < *p.min {
		out = append(out, p.violation("min", "must be at least %v", *p.min))
	}

	if p.max != nil && f > *p.max {
		out = append(out, p.violation("max", "must be at most %v", *p.max))
	}

	if p.integer && f != math.Trunc(f) {
		out = append(out, p.violation("integer", "must be an integer"))
	}

	if p.positive && f <= 0 {
		out = append(out, p.violation("positive", "must be positive"))
	}

	if p.negative && f >= 0 {
		out = append(out, p.violation("negative", "must be negative"))
	}

	if p.multiple != nil && *p.multiple != 0 && math.Mod(f, *p.multiple) != 0 {
		out = append(out, p.violation("multiple", "must be a multiple of %v", *p.multiple))
	}

	return out
}

// validateInt applies the numeric rules to an integer without widening it to
// float64, which would round values beyond 2^53.
func (p *Property) validateInt(i int64) []Violation {
	var out []Violation

	if p.min != nil && compareInt(i, *p.min) < 0 {
		out = append(out, p.violation("min", "must be at least %v", *p.min))
	}

	if p.max != nil && compareInt(i, *p.max) > 0 {
		out = append(out, p.violation("max", "must be at most %v", *p.max))
	}

	if p.positive && i <= 0 {
		out = append(out, p.violation("positive", "must be positive"))
	}

	if p.negative && i >= 0 {
		out = append(out, p.violation("negative", "must be negative"))
	}

	if p.multiple != nil && *p.multiple != 0 {
		var rem bool
		if m, ok := toInt64(*p.multiple); ok {
			rem = i%m != 0
		} else {
			rem = math.Mod(float64(i), *p.multiple) != 0
		}

		if rem {
			out = append(out, p.violation("multiple", "must be a multiple of %v", *p.multiple))
		}
	}

	return out
}

// compareInt orders i against f exactly, returning -1, 0 or 1.
func compareInt(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 0x1p63:
		return -1
	case f < -0x1p63:
		return 1
	}

	t := math.Trunc(f)

	switch ti := int64(t); {
	case i < ti:
		return -1
	case i > ti:
		return 1
	case f > t:
		return -1
	case f < t:
		return 1
	default:
		return 0
	}
}

// exactInt reports values of an integer kind that fit in an int64.
func exactInt(v any) (int64, bool) {
	switch v.(type) {
	case float32, float64:
		return 0, false
	}

	return toInt64(v)
}

// toInt64 converts integer kinds and integral floats to int64, rejecting
// fractions and values outside the int64 range.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}

		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}

		return int64(x), true
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -0x1p63 || f >= 0x1p63 {
		return 0, false
	}

	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
