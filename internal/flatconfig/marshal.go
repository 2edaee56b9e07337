package flatconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedValue indicates a leaf whose value does not fit one of the
// four documented shapes.
var ErrUnsupportedValue = errors.New("unsupported settings value")

// Error describes a leaf the marshaler could not encode.
type Error struct {
	Key   string
	Kind  Kind
	Value any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: key %q declared %s, got %T", ErrUnsupportedValue, e.Key, e.Kind, e.Value)
}

func (e *Error) Unwrap() error {
	return ErrUnsupportedValue
}

// appendSuffix is appended to a map key to request a new list slot.
const appendSuffix = ".append"

// Setting is one flat configuration entry, in emission order.
type Setting struct {
	Key    string
	Value  string
	Append bool // Append directive: adds a slot to the list under Key
}

// BackendKey returns the key handed to the backend.
func (s Setting) BackendKey() string {
	if s.Append {
		return s.Key + appendSuffix
	}
	return s.Key
}

func (s Setting) String() string {
	if s.Append {
		return s.BackendKey()
	}
	return s.Key + "=" + strconv.Quote(s.Value)
}

// Marshal flattens a settings tree into an ordered sequence of settings.
// A nil tree yields an empty sequence.
func Marshal(s Settings) ([]Setting, error) {
	return AppendTo(nil, s)
}

// AppendTo flattens s into dst and returns the extended slice.
// On error dst is returned with whatever was emitted before the failing leaf.
func AppendTo(dst []Setting, s Settings) ([]Setting, error) {
	if isNil(s) {
		return dst, nil
	}

	for _, f := range s.Fields() {
		if f.IsNull() {
			continue
		}

		var err error
		switch f.Kind {
		case kindNested:
			dst, err = AppendTo(dst, f.nested)
		case KindBool:
			dst, err = appendBool(dst, f)
		case KindNumber:
			dst, err = appendNumber(dst, f)
		case KindMap:
			dst, err = appendMap(dst, f)
		default:
			dst, err = appendOther(dst, f)
		}
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func appendBool(dst []Setting, f Field) ([]Setting, error) {
	b, ok := f.Value.(bool)
	if !ok {
		return dst, &Error{Key: f.Key, Kind: f.Kind, Value: f.Value}
	}
	return append(dst, Setting{Key: f.Key, Value: strconv.FormatBool(b)}), nil
}

func appendNumber(dst []Setting, f Field) ([]Setting, error) {
	var v float64
	switch n := f.Value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	default:
		return dst, &Error{Key: f.Key, Kind: f.Kind, Value: f.Value}
	}
	return append(dst, Setting{Key: f.Key, Value: FormatNumber(v)}), nil
}

func appendMap(dst []Setting, f Field) ([]Setting, error) {
	m, ok := f.Value.(OrderedMap)
	if !ok {
		return dst, &Error{Key: f.Key, Kind: f.Kind, Value: f.Value}
	}

	index := 0
	for _, p := range m {
		if p.Key == nil || p.Value == nil {
			continue
		}
		dst = append(dst,
			Setting{Key: f.Key, Append: true},
			Setting{Key: fmt.Sprintf("%s[%d]", f.Key, index), Value: *p.Key + "\n" + *p.Value},
		)
		index++
	}
	return dst, nil
}

func appendOther(dst []Setting, f Field) ([]Setting, error) {
	s, ok := defaultString(f.Value)
	if !ok {
		return dst, &Error{Key: f.Key, Kind: f.Kind, Value: f.Value}
	}
	return append(dst, Setting{Key: f.Key, Value: s}), nil
}

// FormatNumber renders v in fixed notation with at most two fractional
// digits and no trailing zeros. v is first taken to 15 significant
// digits, then rounded half away from zero, so 0.125 gives "0.13" and
// 1.005 gives "1.01". Output never depends on the host locale.
func FormatNumber(v float64) string {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'g', 15, 64))
	if err != nil {
		// NaN and infinities
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return d.Round(2).String()
}

// defaultString returns the default string form of a leaf value.
func defaultString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false
		}
		return defaultString(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	}
	return "", false
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
