package flatconfig

// Kind is the declared value shape of a settings leaf.
type Kind int

// Value kinds understood by the marshaler.
const (
	KindOther Kind = iota
	KindBool
	KindNumber
	KindMap
	kindNested
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindMap:
		return "map"
	case kindNested:
		return "nested"
	default:
		return "other"
	}
}

// Settings is implemented by every settings type. Fields returns a fixed
// table describing each field's external key, kind and current value.
type Settings interface {
	Fields() []Field
}

// Field is one row of a settings schema table.
// Build fields with Bool, Number, Map, Value and Nested.
type Field struct {
	Key    string
	Kind   Kind
	Value  any
	nested Settings
}

// IsNull reports whether the field carries no value and must be skipped.
func (f Field) IsNull() bool {
	if f.Kind == kindNested {
		return f.nested == nil
	}
	return isNil(f.Value)
}

// Bool declares a boolean leaf. A nil pointer is a null leaf.
func Bool(key string, v *bool) Field {
	f := Field{Key: key, Kind: KindBool}
	if v != nil {
		f.Value = *v
	}
	return f
}

// Number declares a floating point leaf. A nil pointer is a null leaf.
func Number(key string, v *float64) Field {
	f := Field{Key: key, Kind: KindNumber}
	if v != nil {
		f.Value = *v
	}
	return f
}

// Map declares an ordered key/value leaf. A nil map is a null leaf.
func Map(key string, m OrderedMap) Field {
	f := Field{Key: key, Kind: KindMap}
	if m != nil {
		f.Value = m
	}
	return f
}

// Value declares a leaf marshaled through its default string form.
// Pointers are dereferenced; a nil pointer is a null leaf.
func Value(key string, v any) Field {
	return Field{Key: key, Kind: KindOther, Value: v}
}

// Nested declares a nested settings object walked with the same rules.
// Pass nil (untyped, or a typed nil pointer) to skip the subtree.
func Nested(s Settings) Field {
	if isNil(s) {
		s = nil
	}
	return Field{Kind: kindNested, nested: s}
}

// Pair is one entry of an OrderedMap. A nil Key or Value marks the pair
// as null; null pairs are never emitted.
type Pair struct {
	Key   *string
	Value *string
}

// Entry builds a non-null pair.
func Entry(key, value string) Pair {
	return Pair{Key: &key, Value: &value}
}

// OrderedMap keeps key/value pairs in insertion order.
type OrderedMap []Pair

// Add appends a non-null pair and returns the extended map.
func (m OrderedMap) Add(key, value string) OrderedMap {
	return append(m, Entry(key, value))
}

// Get returns the value of the first non-null pair with the given key.
func (m OrderedMap) Get(key string) (string, bool) {
	for _, p := range m {
		if p.Key != nil && p.Value != nil && *p.Key == key {
			return *p.Value, true
		}
	}
	return "", false
}
