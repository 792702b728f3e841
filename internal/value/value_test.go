package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("s")
	var _ Value = Array{Int(1)}
	var _ Value = Object{"k": String("v")}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`false`, Bool(false)},
		{`42`, Int(42)},
		{`-7`, Int(-7)},
		{`9223372036854775807`, Int(9223372036854775807)},
		{`1.5`, Float(1.5)},
		{`1e3`, Float(1000)},
		{`"hello"`, String("hello")},
	}
	for _, tt := range tests {
		v, err := Parse([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, v, tt.in)
	}
}

func TestParseStructured(t *testing.T) {
	v, err := Parse([]byte(`{"a":[1,null,{"b":true}]}`))
	require.NoError(t, err)

	want := Object{"a": Array{Int(1), Null{}, Object{"b": Bool(true)}}}
	assert.Equal(t, want, v)
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{``, `{`, `[1,]`, `"unterminated`, `{"a":}`, `1 2`} {
		_, err := Parse([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseArray(t *testing.T) {
	vals, err := ParseArray([]byte(`[5,"x",null]`))
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(5), String("x"), Null{}}, vals)

	_, err = ParseArray([]byte(`{"not":"array"}`))
	assert.ErrorContains(t, err, "expected a JSON array")
}

func TestSortedKeysUTF16Order(t *testing.T) {
	obj := Object{
		"a": Int(1), "A": Int(2), "aa": Int(3), "AA": Int(4),
	}
	assert.Equal(t, []string{"A", "AA", "a", "aa"}, obj.SortedKeys())
}

func TestMarshalRoundTrip(t *testing.T) {
	in := `{"arr":[1,2.5,null,true],"s":"he\"llo"}`
	v, err := Parse([]byte(in))
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	v, err := Parse([]byte(`{"zebra":1,"apple":2}`))
	require.NoError(t, err)

	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"zebra":1}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(out))
}

func TestMarshalCanonicalControlChars(t *testing.T) {
	out, err := MarshalCanonical(String("a\nb\x01c"))
	require.NoError(t, err)
	assert.Equal(t, `"a\nb\u0001c"`, string(out))
}

func TestMarshalNonFiniteFloat(t *testing.T) {
	_, err := Marshal(Float(math.NaN()))
	assert.Error(t, err)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", TypeName(Null{}))
	assert.Equal(t, "number", TypeName(Int(1)))
	assert.Equal(t, "number", TypeName(Float(1)))
	assert.Equal(t, "array", TypeName(Array{}))
	assert.Equal(t, "object", TypeName(Object{}))
}
