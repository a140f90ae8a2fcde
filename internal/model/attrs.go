package model

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Attrs maps attribute names to values.
type Attrs map[string]any

// AttrKind constrains the values an attribute may hold.
type AttrKind int

const (
	// AttrAny accepts any value.
	AttrAny AttrKind = iota
	// AttrString accepts strings.
	AttrString
	// AttrInt accepts integers. Integral floats are converted.
	AttrInt
	// AttrBool accepts booleans.
	AttrBool
	// AttrFloat accepts numbers.
	AttrFloat
)

// String returns the kind name used in schema files.
func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrInt:
		return "int"
	case AttrBool:
		return "bool"
	case AttrFloat:
		return "float"
	default:
		return "any"
	}
}

// ParseAttrKind parses a kind name. Unknown names map to AttrAny.
func ParseAttrKind(s string) AttrKind {
	switch s {
	case "string":
		return AttrString
	case "int", "integer":
		return AttrInt
	case "bool", "boolean":
		return AttrBool
	case "float", "number":
		return AttrFloat
	default:
		return AttrAny
	}
}

// AttributeSpec declares one attribute of a node or mark type.
type AttributeSpec struct {
	// Default is used when the attribute is not given. Only consulted when
	// HasDefault is set, so nil is a valid default.
	Default    any
	HasDefault bool

	// Kind constrains values. Nil is accepted for any kind when the
	// default is nil.
	Kind AttrKind

	// Validate, when set, checks every non-nil value after coercion,
	// defaults included.
	Validate func(v any) error
}

// Validated returns a copy of a that checks values with fn.
func (a AttributeSpec) Validated(fn func(v any) error) AttributeSpec {
	a.Validate = fn
	return a
}

// IntBetween accepts integers in [lo, hi].
func IntBetween(lo, hi int) func(any) error {
	return func(v any) error {
		if n, ok := v.(int); !ok || n < lo || n > hi {
			return fmt.Errorf("%v is not between %d and %d", v, lo, hi)
		}
		return nil
	}
}

// Default declares an optional attribute. The kind is inferred from the
// default value.
func Default(value any) AttributeSpec {
	spec := AttributeSpec{Default: value, HasDefault: true}
	switch value.(type) {
	case string:
		spec.Kind = AttrString
	case int, int32, int64:
		spec.Kind = AttrInt
		spec.Default = toInt(value)
	case bool:
		spec.Kind = AttrBool
	case float32, float64:
		spec.Kind = AttrFloat
	}
	return spec
}

// DefaultOf declares an optional attribute with an explicit kind.
func DefaultOf(kind AttrKind, value any) AttributeSpec {
	return AttributeSpec{Default: value, HasDefault: true, Kind: kind}
}

// Required declares an attribute that must be given on creation.
func Required(kind AttrKind) AttributeSpec {
	return AttributeSpec{Kind: kind}
}

// Coerce converts v to the attribute's kind and validates it.
func (a AttributeSpec) Coerce(v any) (any, error) {
	return a.check(a.coerce(v))
}

func (a AttributeSpec) check(v any, err error) (any, error) {
	if err != nil || v == nil || a.Validate == nil {
		return v, err
	}
	if err := a.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (a AttributeSpec) coerce(v any) (any, error) {
	if v == nil {
		if a.HasDefault && a.Default == nil {
			return nil, nil
		}
		if a.Kind == AttrAny {
			return nil, nil
		}
		return nil, fmt.Errorf("nil is not a valid %s", a.Kind)
	}
	switch a.Kind {
	case AttrString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case AttrInt:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return toInt(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int(n), nil
			}
		case float32:
			if float64(n) == math.Trunc(float64(n)) {
				return int(n), nil
			}
		}
	case AttrBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case AttrFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int, int32, int64:
			return float64(toInt(n)), nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("%v (%T) is not a valid %s", v, v, a.Kind)
}

// CoerceString converts a textual value (e.g. a markup attribute) to the
// attribute's kind and validates it.
func (a AttributeSpec) CoerceString(s string) (any, error) {
	return a.check(a.coerceString(s))
}

func (a AttributeSpec) coerceString(s string) (any, error) {
	switch a.Kind {
	case AttrInt:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid int", s)
		}
		return n, nil
	case AttrBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid bool", s)
		}
		return b, nil
	case AttrFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid float", s)
		}
		return f, nil
	default:
		return s, nil
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	}
	return 0
}

// Get returns the attribute value, or nil.
func (a Attrs) Get(name string) any {
	if a == nil {
		return nil
	}
	return a[name]
}

// Int returns an integer attribute, or 0.
func (a Attrs) Int(name string) int {
	switch n := a.Get(name).(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// String returns a string attribute, or "".
func (a Attrs) String(name string) string {
	s, _ := a.Get(name).(string)
	return s
}

// Eq reports whether two attribute maps hold equal values.
func (a Attrs) Eq(other Attrs) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || !attrValueEq(v, ov) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// With returns a copy with name set to value.
func (a Attrs) With(name string, value any) Attrs {
	out := a.Clone()
	if out == nil {
		out = Attrs{}
	}
	out[name] = value
	return out
}

// Keys returns the attribute names sorted.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func attrValueEq(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// attrSet is the compiled attribute declaration of a type.
type attrSet struct {
	names []string
	specs map[string]AttributeSpec
}

func newAttrSet(typeName string, specs map[string]AttributeSpec) (attrSet, error) {
	set := attrSet{specs: make(map[string]AttributeSpec, len(specs))}
	for name, spec := range specs {
		if spec.HasDefault && spec.Default != nil {
			v, err := spec.Coerce(spec.Default)
			if err != nil {
				return attrSet{}, schemaErrorf(typeName, "default for attribute %q: %v", name, err)
			}
			spec.Default = v
		}
		set.specs[name] = spec
		set.names = append(set.names, name)
	}
	sort.Strings(set.names)
	return set, nil
}

func (s attrSet) hasRequired() bool {
	for _, spec := range s.specs {
		if !spec.HasDefault {
			return true
		}
	}
	return false
}

// defaults returns the default attribute map, or nil when some attribute
// is required.
func (s attrSet) defaults() Attrs {
	if s.hasRequired() {
		return nil
	}
	out := make(Attrs, len(s.specs))
	for name, spec := range s.specs {
		out[name] = spec.Default
	}
	return out
}

// compute fills defaults in, validates kinds and rejects unknown names.
func (s attrSet) compute(typeName string, given Attrs) (Attrs, error) {
	out := make(Attrs, len(s.specs))
	for _, name := range s.names {
		spec := s.specs[name]
		v, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				return nil, violationf("no value supplied for attribute %q of %s", name, typeName)
			}
			out[name] = spec.Default
			continue
		}
		cv, err := spec.Coerce(v)
		if err != nil {
			return nil, violationf("attribute %q of %s: %v", name, typeName, err)
		}
		out[name] = cv
	}
	for name := range given {
		if _, ok := s.specs[name]; !ok {
			return nil, violationf("unknown attribute %q for %s", name, typeName)
		}
	}
	return out, nil
}
