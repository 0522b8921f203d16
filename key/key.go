// Package key defines derivation keys.
//
// A key is a small ordered record of named scalar fields summarizing the value of a derivation.
// Keys are compared by their canonical representation; they are used to deduplicate derivations
// and to check grammatical agreement between rule slots without looking at the values themselves.
package key

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ValueField is the field name used by FromValue.
const ValueField = "value"

// Value is a key field value: nil, bool, string, integer or floating point number.
// Other types are allowed and compared by their %T:%v representation.
type Value = any

// Field is a single named key field.
type Field struct {
	Name  string
	Value Value
}

// Key is an immutable record of fields sorted by name.
// Zero Key is a valid empty key.
type Key struct {
	fields []Field
	repr   string
}

// New creates a key from a map of fields.
func New(fields map[string]Value) Key {
	fs := make([]Field, 0, len(fields))
	for name, value := range fields {
		fs = append(fs, Field{name, value})
	}
	return fromFields(fs)
}

// Of creates a key from name/value pairs; a trailing name without value gets nil value.
func Of(pairs ...any) Key {
	fs := make([]Field, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		name := fmt.Sprint(pairs[i])
		var value Value
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		fs = append(fs, Field{name, value})
	}
	return fromFields(fs)
}

// FromValue creates a single-field key holding canonical representation of v.
// This is the default key function of rules that do not define one.
func FromValue(v any) Key {
	return fromFields([]Field{{ValueField, Canonical(v)}})
}

func fromFields(fs []Field) Key {
	sort.SliceStable(fs, func(i, j int) bool {
		return fs[i].Name < fs[j].Name
	})
	j := 0
	for i := range fs {
		if j > 0 && fs[j-1].Name == fs[i].Name {
			fs[j-1] = fs[i]
			continue
		}
		fs[j] = fs[i]
		j++
	}
	fs = fs[:j]

	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(f.Name))
		sb.WriteByte(':')
		sb.WriteString(Canonical(f.Value))
	}
	sb.WriteByte('}')
	return Key{fs, sb.String()}
}

// Get returns field value and a flag telling whether the field is present.
func (k Key) Get(name string) (Value, bool) {
	i := sort.Search(len(k.fields), func(i int) bool {
		return k.fields[i].Name >= name
	})
	if i < len(k.fields) && k.fields[i].Name == name {
		return k.fields[i].Value, true
	}
	return nil, false
}

// Len returns the number of fields.
func (k Key) Len() int {
	return len(k.fields)
}

// Fields returns a copy of key fields sorted by name.
func (k Key) Fields() []Field {
	result := make([]Field, len(k.fields))
	copy(result, k.fields)
	return result
}

func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// String returns canonical representation; equal keys have equal representations.
func (k Key) String() string {
	if k.repr == "" {
		return "{}"
	}
	return k.repr
}

// FieldEqual reports whether named field is present in both keys and has equal values.
func FieldEqual(a Key, aField string, b Key, bField string) bool {
	av, ahas := a.Get(aField)
	bv, bhas := b.Get(bField)
	return ahas && bhas && ValuesEqual(av, bv)
}

// ValuesEqual compares two field values by canonical representation,
// so that int 1 and float64 1.0 are equal.
func ValuesEqual(a, b Value) bool {
	return Canonical(a) == Canonical(b)
}

// Canonical returns canonical string representation of a value.
func Canonical(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return canonicalFloat(float64(x))
	case float64:
		return canonicalFloat(x)
	case fmt.Stringer:
		return fmt.Sprintf("%T:%s", v, x.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func canonicalFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
