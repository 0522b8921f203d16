package key

import (
	"testing"

	. "github.com/ava12/sentgen/internal/test"
)

func TestCanonical(t *testing.T) {
	samples := []struct {
		value    Value
		expected string
	}{
		{nil, "null"},
		{"foo", `"foo"`},
		{true, "true"},
		{42, "42"},
		{int8(-3), "-3"},
		{uint16(7), "7"},
		{1.0, "1"},
		{float32(2), "2"},
		{0.5, "0.5"},
		{[]int{1, 2}, "[]int:[1 2]"},
	}

	for i, s := range samples {
		got := Canonical(s.value)
		Assert(t, got == s.expected, "sample #%d: expecting %q, got %q", i, s.expected, got)
	}
}

func TestFieldOrder(t *testing.T) {
	k1 := Of("number", "one", "gender", "m")
	k2 := New(map[string]Value{"gender": "m", "number": "one"})
	ExpectString(t, `{"gender":"m","number":"one"}`, k1.String())
	Assert(t, k1.Equal(k2), "%s != %s", k1, k2)
	ExpectInt(t, 2, k1.Len())
	ExpectString(t, "gender", k1.Fields()[0].Name)
}

func TestDuplicateFields(t *testing.T) {
	k := Of("a", 1, "a", 2, "b")
	v, has := k.Get("a")
	ExpectBool(t, true, has)
	Expect(t, v == 2, 2, v)
	v, has = k.Get("b")
	ExpectBool(t, true, has)
	Expect(t, v == nil, nil, v)
	_, has = k.Get("c")
	ExpectBool(t, false, has)
}

func TestEmpty(t *testing.T) {
	var zero Key
	ExpectString(t, "{}", zero.String())
	Assert(t, zero.Equal(New(nil)), "zero key differs from empty key")
	ExpectInt(t, 0, zero.Len())
}

func TestFromValue(t *testing.T) {
	Assert(t, FromValue(1).Equal(FromValue(1.0)), "1 and 1.0 must have equal keys")
	Assert(t, !FromValue(1).Equal(FromValue("1")), "1 and \"1\" must have different keys")
	v, _ := FromValue("x").Get(ValueField)
	Expect(t, v == `"x"`, `"x"`, v)
}

func TestFieldEqual(t *testing.T) {
	a := Of("number", "one", "count", 3)
	b := Of("plural", "one", "n", 3.0)

	ExpectBool(t, true, FieldEqual(a, "number", b, "plural"))
	ExpectBool(t, true, FieldEqual(a, "count", b, "n"))
	ExpectBool(t, false, FieldEqual(a, "number", b, "n"))
	ExpectBool(t, false, FieldEqual(a, "missing", b, "plural"))
}
